package rule

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sahilm/fuzzy"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/macropower/patsub/pkg/expr"
	"github.com/macropower/patsub/pkg/log"
)

var tracer = otel.Tracer("rule")

// SpecError reports which [Spec] of a list failed to compile.
type SpecError struct {
	Err   error
	Index int
}

func (e *SpecError) Error() string {
	return fmt.Sprintf("rule %d: %v", e.Index, e.Err)
}

func (e *SpecError) Unwrap() error {
	return e.Err
}

// Set is an ordered, immutable list of rules. Insertion order is evaluation
// order.
type Set struct {
	rules []*Rule
}

// NewSet creates a [Set] from already compiled rules.
func NewSet(rules ...*Rule) *Set {
	return &Set{rules: rules}
}

// Compile compiles specs into a [Set]. All errors are fatal and are returned
// as a [*SpecError].
func Compile(ctx context.Context, specs []Spec, opts ...Opt) (*Set, error) {
	ctx, span := tracer.Start(ctx, "compile", trace.WithAttributes(
		attribute.Int("rules", len(specs)),
	))
	defer span.End()

	o := newOptions(opts)
	if o.env == nil {
		env, err := expr.NewEnvironment()
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("create CEL environment: %w", err)
		}

		o.env = env
	}

	l := log.WithContext(ctx)

	rules := make([]*Rule, 0, len(specs))
	for i, spec := range specs {
		r, err := newRule(spec, o)
		if err != nil {
			span.RecordError(err)
			return nil, &SpecError{Index: i, Err: err}
		}

		l.DebugContext(ctx, "compiled rule",
			slog.Int("index", i),
			slog.String("pattern", spec.Pattern),
			slog.String("regex", r.Regex()),
		)

		warnUnknownPlaceholders(ctx, l, r)

		rules = append(rules, r)
	}

	return NewSet(rules...), nil
}

func warnUnknownPlaceholders(ctx context.Context, l *slog.Logger, r *Rule) {
	groups := r.Groups()
	for _, p := range r.UnknownPlaceholders() {
		attrs := []any{
			slog.String("rule", r.Spec().Pattern),
			slog.String("placeholder", p),
		}
		if matches := fuzzy.Find(p, groups); len(matches) > 0 {
			attrs = append(attrs, slog.String("suggestion", matches[0].Str))
		}

		l.WarnContext(ctx, "template placeholder has no matching group", attrs...)
	}
}

// Evaluate runs the rules in order against line, and renders the template of
// the first rule that matches. It returns false when no rule matches.
//
// Match errors (e.g. a timeout) are logged and treated as no match.
func (s *Set) Evaluate(ctx context.Context, line string) (string, bool) {
	for _, r := range s.rules {
		if out, ok := r.evaluate(ctx, line); ok {
			return out, true
		}
	}

	return "", false
}

// Regexes returns the compiled regular expression of each rule, in order.
func (s *Set) Regexes() []string {
	out := make([]string, 0, len(s.rules))
	for _, r := range s.rules {
		out = append(out, r.Regex())
	}

	return out
}

// Rules returns a copy of the rules.
func (s *Set) Rules() []*Rule {
	return append([]*Rule(nil), s.rules...)
}

func (s *Set) Len() int {
	return len(s.rules)
}
