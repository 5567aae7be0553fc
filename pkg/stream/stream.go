// Package stream runs rules over a stream of lines.
package stream

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/macropower/patsub/pkg/log"
)

// Evaluator renders the output for a line. It returns false when the line
// should produce no output.
type Evaluator interface {
	Evaluate(ctx context.Context, line string) (string, bool)
}

// Stats counts the lines seen by [Processor.Run].
type Stats struct {
	Lines    uint64
	Matched  uint64
	Skipped  uint64
	Bytes    uint64
	Duration time.Duration
}

func (s Stats) String() string {
	return fmt.Sprintf("%s lines (%s matched, %s skipped, %s) in %s",
		humanize.Comma(int64(s.Lines)),   //nolint:gosec // Line counts fit.
		humanize.Comma(int64(s.Matched)), //nolint:gosec // Line counts fit.
		humanize.Comma(int64(s.Skipped)), //nolint:gosec // Line counts fit.
		humanize.Bytes(s.Bytes),
		s.Duration.Round(time.Millisecond),
	)
}

// LogValue implements [slog.LogValuer].
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("lines", s.Lines),
		slog.Uint64("matched", s.Matched),
		slog.Uint64("skipped", s.Skipped),
		slog.String("read", humanize.Bytes(s.Bytes)),
		slog.Duration("duration", s.Duration),
	)
}

// Processor reads lines, evaluates them, and writes the output lines.
type Processor struct {
	eval     Evaluator
	buffered bool
}

// Opt configures a [Processor].
type Opt func(*Processor)

// WithBuffered disables flushing after every output line. Output is flushed
// when the input ends.
func WithBuffered(buffered bool) Opt {
	return func(p *Processor) {
		p.buffered = buffered
	}
}

// NewProcessor creates a new [Processor].
func NewProcessor(eval Evaluator, opts ...Opt) *Processor {
	p := &Processor{eval: eval}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Run processes r until EOF or until ctx is done. Line terminators ("\n" or
// "\r\n") are stripped before evaluation, and "\n" is appended to every
// output line.
func (p *Processor) Run(ctx context.Context, r io.Reader, w io.Writer) (Stats, error) {
	start := time.Now()

	bw := bufio.NewWriter(w)
	stats, err := p.run(ctx, bufio.NewReader(r), bw)
	stats.Duration = time.Since(start)

	ferr := bw.Flush()
	if err != nil {
		return stats, err
	}

	if ferr != nil {
		return stats, fmt.Errorf("flush output: %w", ferr)
	}

	return stats, nil
}

func (p *Processor) run(ctx context.Context, br *bufio.Reader, bw *bufio.Writer) (Stats, error) {
	var stats Stats

	logger := log.WithContext(ctx)

	for {
		if err := ctx.Err(); err != nil {
			return stats, err //nolint:wrapcheck // Context errors are returned as-is.
		}

		raw, readErr := br.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return stats, fmt.Errorf("read input: %w", readErr)
		}

		if raw == "" && readErr != nil {
			return stats, nil
		}

		stats.Lines++
		stats.Bytes += uint64(len(raw))

		out, ok := p.eval.Evaluate(ctx, trimEOL(raw))
		if ok {
			stats.Matched++

			if _, err := bw.WriteString(out + "\n"); err != nil {
				return stats, fmt.Errorf("write output: %w", err)
			}

			if !p.buffered {
				if err := bw.Flush(); err != nil {
					return stats, fmt.Errorf("flush output: %w", err)
				}
			}
		} else {
			stats.Skipped++
			logger.DebugContext(ctx, "no rule matched", slog.Uint64("line", stats.Lines))
		}

		if readErr != nil {
			return stats, nil
		}
	}
}

func trimEOL(s string) string {
	s, ok := strings.CutSuffix(s, "\n")
	if ok {
		s = strings.TrimSuffix(s, "\r")
	}

	return s
}
