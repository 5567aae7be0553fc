package pattern

import (
	"strings"
	"unicode"
)

const (
	// GroupPrefix is prepended to every emitted group name.
	GroupPrefix = "P"
	// AnonymousName is the name given to a group written as {}.
	AnonymousName = "EEE"

	// AnonymousRegex is matched by a group written as {}.
	AnonymousRegex = "[a-zA-Z0-9]+"
	// NumericRegex is matched by a group whose name starts with a digit.
	NumericRegex = "[0-9]+"
	// DefaultRegex is matched by a group whose name starts with a letter,
	// unless overridden with [WithDefaultRegex].
	DefaultRegex = "[^/]+"
)

// Node is one element of a parsed pattern: either a [Literal] or a [Group].
type Node interface {
	node()
}

// Literal is pattern text outside of braces. Text is regular expression
// source: escapes have already been rewritten into their regex form.
type Literal struct {
	Text string
}

// Group is one brace region of a pattern.
type Group struct {
	// Name is the header text before the first ':'.
	Name string
	// Regex is the header text after the first ':'. Only meaningful when
	// Explicit is set.
	Regex string
	// Children are the nodes nested inside the group, after the header.
	Children []Node
	// Explicit is set when the header contains a ':'.
	Explicit bool
}

func (Literal) node() {}

func (Group) node() {}

// newGroup splits a group header into its name and explicit regex and checks
// the name.
func newGroup(header string, children []Node) (Group, error) {
	g := Group{Children: children}

	name, rx, found := strings.Cut(header, ":")
	g.Name = name
	if found {
		g.Regex = rx
		g.Explicit = true
	}

	if g.Name != "" {
		first := []rune(g.Name)[0]
		if !unicode.IsLetter(first) && !unicode.IsNumber(first) {
			return Group{}, &ConfigError{
				Group:  g.Name,
				Reason: "group name must be alphanumeric",
			}
		}
	}

	return g, nil
}

// ID returns the capture group name emitted for g.
func (g Group) ID() string {
	if g.Name == "" && !g.Explicit {
		return GroupPrefix + AnonymousName
	}

	return GroupPrefix + g.Name
}

// resolveRegex returns the explicit regex, or the regex inferred from the
// group name.
func (g Group) resolveRegex(defaultRegex string) string {
	if g.Explicit {
		return g.Regex
	}
	if g.Name == "" {
		return AnonymousRegex
	}
	if unicode.IsNumber([]rune(g.Name)[0]) {
		return NumericRegex
	}

	return defaultRegex
}
