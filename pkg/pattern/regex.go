package pattern

import (
	"regexp"
	"strings"
)

// Repetition counts such as {4} or {2,5}, when written inside an explicit
// group regex.
var quantifierRe = regexp.MustCompile(`^[0-9]+(,[0-9]*)?$`)

// Opt configures [ToRegex] and [Compile].
type Opt func(*options)

type options struct {
	defaultRegex string
	groupOpen    string
}

// WithDefaultRegex replaces the regex inferred for groups whose name starts
// with a letter. An empty string keeps [DefaultRegex].
func WithDefaultRegex(rx string) Opt {
	return func(o *options) {
		if rx != "" {
			o.defaultRegex = rx
		}
	}
}

// WithGroupSyntax sets the token that opens a named group. The default is
// "(?P<"; engines that only understand .NET style names use "(?<".
func WithGroupSyntax(open string) Opt {
	return func(o *options) {
		if open != "" {
			o.groupOpen = open
		}
	}
}

// Compile parses a pattern and compiles it to a regular expression.
func Compile(pattern string, opts ...Opt) (string, error) {
	nodes, err := Parse(pattern)
	if err != nil {
		return "", err
	}

	rx, err := ToRegex(nodes, opts...)
	if err != nil {
		return "", withPattern(err, pattern)
	}

	return rx, nil
}

// ToRegex compiles parsed nodes to regular expression source. Literals are
// emitted verbatim; each [Group] becomes a named capture group that wraps its
// regex followed by its children.
//
// Group names must be unique within one pattern; a duplicate returns a
// [*ConfigError].
func ToRegex(nodes []Node, opts ...Opt) (string, error) {
	c := &regexCompiler{
		options: options{
			defaultRegex: DefaultRegex,
			groupOpen:    "(?P<",
		},
		seen: map[string]struct{}{},
	}
	for _, opt := range opts {
		opt(&c.options)
	}

	err := c.writeNodes(nodes)
	if err != nil {
		return "", err
	}

	return c.b.String(), nil
}

type regexCompiler struct {
	seen map[string]struct{}
	b    strings.Builder
	options
}

func (c *regexCompiler) writeNodes(nodes []Node) error {
	for _, n := range nodes {
		switch n := n.(type) {
		case Literal:
			c.b.WriteString(n.Text)

		case Group:
			err := c.writeGroup(n)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

func (c *regexCompiler) writeGroup(g Group) error {
	id := g.ID()
	if _, ok := c.seen[id]; ok {
		return &ConfigError{
			Group:  g.Name,
			Reason: "duplicate group name " + id,
		}
	}

	c.seen[id] = struct{}{}

	rx := g.resolveRegex(c.defaultRegex)

	c.b.WriteString(c.groupOpen)
	c.b.WriteString(id)
	c.b.WriteString(">")
	c.b.WriteString(rx)

	// Inside an explicit regex, {4} after an atom is a repetition count,
	// not a nested numeric group.
	atom := g.Explicit && rx != ""

	for _, child := range g.Children {
		switch child := child.(type) {
		case Literal:
			c.b.WriteString(child.Text)
			atom = g.Explicit && (atom || child.Text != "")

		case Group:
			if atom && isQuantifier(child) {
				c.b.WriteString("{" + child.Name + "}")
				atom = false

				continue
			}

			err := c.writeGroup(child)
			if err != nil {
				return err
			}

			atom = g.Explicit
		}
	}

	c.b.WriteString(")")

	return nil
}

func isQuantifier(g Group) bool {
	return !g.Explicit && len(g.Children) == 0 && quantifierRe.MatchString(g.Name)
}
