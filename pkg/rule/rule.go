package rule

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/cel-go/cel"

	"github.com/macropower/patsub/pkg/expr"
	"github.com/macropower/patsub/pkg/log"
	"github.com/macropower/patsub/pkg/pattern"
	"github.com/macropower/patsub/pkg/regex"
	"github.com/macropower/patsub/pkg/template"
)

var (
	// ErrEmptyPattern is returned for a rule without a pattern.
	ErrEmptyPattern = errors.New("empty pattern")
	// ErrInvalidGuard is returned when a rule's when expression does not
	// compile.
	ErrInvalidGuard = errors.New("invalid guard")
)

// Spec is the uncompiled form of a rule.
type Spec struct {
	// Pattern is a brace-grammar pattern, e.g. "{y:[0-9]{4}}-{m:[0-9]{2}}".
	Pattern string `json:"pattern" jsonschema:"title=Pattern,minLength=1"`
	// Template is rendered for each matching line. When omitted, the whole
	// line is reproduced unchanged.
	Template *string `json:"template,omitempty" jsonschema:"title=Template"`
	// When is an optional CEL expression. The rule only applies to a
	// matching line when the expression returns true.
	When string `json:"when,omitempty" jsonschema:"title=Guard Expression"`
}

// NewSpec returns a [Spec] for a pattern and template.
func NewSpec(pattern, tmpl string) Spec {
	return Spec{Pattern: pattern, Template: &tmpl}
}

// TemplateOrDefault returns the template, or [template.Default] when none
// was given.
func (s Spec) TemplateOrDefault() string {
	if s.Template == nil {
		return template.Default
	}

	return *s.Template
}

// Rule is a compiled [Spec]. It is immutable after creation.
type Rule struct {
	matcher regex.Matcher
	tmpl    *template.Template
	guard   cel.Program
	spec    Spec
	regex   string
}

// Opt configures [New] and [Compile].
type Opt func(*options)

type options struct {
	env          *expr.Environment
	engine       regex.Engine
	defaultRegex string
	timeout      time.Duration
}

// WithEngine selects the regex engine. Defaults to [regex.EngineRE2].
func WithEngine(e regex.Engine) Opt {
	return func(o *options) {
		o.engine = e
	}
}

// WithDefaultRegex overrides the regex inferred for alphabetic group names.
func WithDefaultRegex(rx string) Opt {
	return func(o *options) {
		o.defaultRegex = rx
	}
}

// WithMatchTimeout bounds a single match. Only supported by
// [regex.EnginePCRE].
func WithMatchTimeout(d time.Duration) Opt {
	return func(o *options) {
		o.timeout = d
	}
}

// WithEnvironment sets the CEL environment used to compile guards. When
// unset, an environment is created on demand.
func WithEnvironment(env *expr.Environment) Opt {
	return func(o *options) {
		o.env = env
	}
}

func newOptions(opts []Opt) *options {
	o := &options{engine: regex.EngineRE2}
	for _, opt := range opts {
		opt(o)
	}

	return o
}

// New compiles a [Spec] into a [Rule].
func New(spec Spec, opts ...Opt) (*Rule, error) {
	return newRule(spec, newOptions(opts))
}

// MustNew creates a new rule and panics if there's an error.
func MustNew(spec Spec, opts ...Opt) *Rule {
	r, err := New(spec, opts...)
	if err != nil {
		panic(err)
	}

	return r
}

func newRule(spec Spec, o *options) (*Rule, error) {
	if spec.Pattern == "" {
		return nil, ErrEmptyPattern
	}

	rx, err := pattern.Compile(spec.Pattern,
		pattern.WithDefaultRegex(o.defaultRegex),
		pattern.WithGroupSyntax(o.engine.GroupSyntax()),
	)
	if err != nil {
		return nil, err //nolint:wrapcheck // Already carries the pattern.
	}

	m, err := regex.Compile(o.engine, rx, regex.WithMatchTimeout(o.timeout))
	if err != nil {
		return nil, fmt.Errorf("%w: pattern %q: %w", pattern.ErrConfig, spec.Pattern, err)
	}

	r := &Rule{
		spec:    spec,
		regex:   rx,
		matcher: m,
		tmpl:    template.Compile(spec.TemplateOrDefault()),
	}

	if spec.When != "" {
		env := o.env
		if env == nil {
			env, err = expr.NewEnvironment()
			if err != nil {
				return nil, fmt.Errorf("create CEL environment: %w", err)
			}
		}

		r.guard, err = env.Compile(spec.When)
		if err != nil {
			return nil, fmt.Errorf("%w: %w %q: %w", pattern.ErrConfig, ErrInvalidGuard, spec.When, err)
		}
	}

	return r, nil
}

// Spec returns the spec the rule was compiled from.
func (r *Rule) Spec() Spec {
	return r.spec
}

// Regex returns the compiled regular expression source.
func (r *Rule) Regex() string {
	return r.regex
}

// Template returns the compiled template.
func (r *Rule) Template() *template.Template {
	return r.tmpl
}

// Groups returns the rule's group names, without the group prefix.
func (r *Rule) Groups() []string {
	names := r.matcher.Names()
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, strings.TrimPrefix(name, pattern.GroupPrefix))
	}

	return out
}

// UnknownPlaceholders returns template placeholders that name neither a
// group of the pattern nor a pseudo-variable. They always render empty.
func (r *Rule) UnknownPlaceholders() []string {
	known := map[string]bool{}
	for _, g := range r.Groups() {
		known[g] = true
	}

	var unknown []string
	for _, p := range r.tmpl.Placeholders() {
		if known[p] || IsPseudo(p) {
			continue
		}

		unknown = append(unknown, p)
	}

	return unknown
}

// Apply runs the rule against a line. It reports whether the rule matched,
// and returns the rendered template when it did.
func (r *Rule) Apply(line string) (string, bool, error) {
	m, err := r.matcher.Match(line)
	if err != nil {
		return "", false, fmt.Errorf("match %q: %w", r.spec.Pattern, err)
	}

	if m == nil {
		return "", false, nil
	}

	mc := MatchContext{Line: line, Match: m}

	if r.guard != nil {
		ok, err := expr.EvalBool(r.guard, mc.activation())
		if err != nil {
			return "", false, fmt.Errorf("when %q: %w", r.spec.When, err)
		}

		if !ok {
			return "", false, nil
		}
	}

	return r.tmpl.Render(mc.Lookup), true, nil
}

func (r *Rule) String() string {
	return fmt.Sprintf("%s -> %s", r.spec.Pattern, r.tmpl)
}

// evaluate is [Rule.Apply] with errors logged and treated as no match.
func (r *Rule) evaluate(ctx context.Context, line string) (string, bool) {
	out, ok, err := r.Apply(line)
	if err != nil {
		log.WithContext(ctx).WarnContext(ctx, "skipping rule",
			"rule", r.spec.Pattern,
			"error", err,
		)

		return "", false
	}

	return out, ok
}
