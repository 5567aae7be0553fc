// Package regex provides the regular expression engines a compiled pattern
// can run on, behind a single [Matcher] interface.
//
// Two engines are available:
//   - [EngineRE2]: Go's [regexp] package. Linear time, no backtracking.
//   - [EnginePCRE]: [github.com/dlclark/regexp2]. Backtracking, with support
//     for lookaround and backreferences, and an optional match timeout.
package regex

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Engine names a regular expression engine.
type Engine string

const (
	EngineRE2  Engine = "re2"
	EnginePCRE Engine = "pcre"
)

var (
	// ErrUnknownEngine is returned for an engine name that is not supported.
	ErrUnknownEngine = errors.New("unknown regex engine")

	AllEngines = []string{
		string(EngineRE2),
		string(EnginePCRE),
	}
)

// GetEngine parses an engine name. An empty name selects [EngineRE2].
func GetEngine(name string) (Engine, error) {
	if name == "" {
		return EngineRE2, nil
	}

	e := Engine(strings.ToLower(name))
	if slices.Contains(AllEngines, string(e)) {
		return e, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownEngine, name)
}

// GroupSyntax returns the token the engine uses to open a named group.
func (e Engine) GroupSyntax() string {
	if e == EnginePCRE {
		return "(?<"
	}

	return "(?P<"
}

// Match is the result of a successful search.
type Match struct {
	// Groups holds the named groups that participated in the match.
	Groups map[string]string
	// Start and End are byte offsets of the whole match in the subject.
	Start int
	End   int
}

// Matcher searches a subject for the leftmost match.
type Matcher interface {
	// Match returns nil (and no error) when the subject does not match.
	Match(subject string) (*Match, error)
	// Names returns the named groups of the expression.
	Names() []string
	String() string
}

// Opt configures [Compile].
type Opt func(*options)

type options struct {
	timeout time.Duration
}

// WithMatchTimeout bounds the time a single match may take. Only
// [EnginePCRE] supports it; zero disables the timeout.
func WithMatchTimeout(d time.Duration) Opt {
	return func(o *options) {
		o.timeout = d
	}
}

// Compile compiles expr for the given engine.
//
//nolint:ireturn // Engines are selected at runtime.
func Compile(engine Engine, expr string, opts ...Opt) (Matcher, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	var (
		m   Matcher
		err error
	)

	switch engine {
	case EngineRE2, "":
		m, err = compileRE2(expr)
	case EnginePCRE:
		m, err = compilePCRE(expr, o.timeout)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, engine)
	}

	if err != nil {
		return nil, err
	}

	return m, nil
}
