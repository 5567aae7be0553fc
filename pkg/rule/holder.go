package rule

import (
	"context"
	"sync/atomic"
)

// Holder holds the active [Set]. The Set can be swapped while other
// goroutines evaluate lines; each call uses exactly one Set.
type Holder struct {
	set atomic.Pointer[Set]
}

// NewHolder creates a [Holder] with an initial [Set].
func NewHolder(s *Set) *Holder {
	h := &Holder{}
	h.Store(s)

	return h
}

func (h *Holder) Load() *Set {
	return h.set.Load()
}

func (h *Holder) Store(s *Set) {
	h.set.Store(s)
}

// Evaluate calls [Set.Evaluate] on the active [Set].
func (h *Holder) Evaluate(ctx context.Context, line string) (string, bool) {
	s := h.Load()
	if s == nil {
		return "", false
	}

	return s.Evaluate(ctx, line)
}
