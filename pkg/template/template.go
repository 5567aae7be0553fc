// Package template renders output lines from {placeholder} templates.
package template

import (
	"regexp"
	"strings"
)

const (
	// KeyPrefix is prepended to a placeholder name when it is looked up, so
	// that {name} resolves the capture group emitted for {name} in a pattern.
	KeyPrefix = "P"

	// Default is used when a rule has no template. It reproduces the whole
	// input line.
	Default = "{@}"
)

// Placeholders are single-level: the name cannot contain braces.
var placeholderRe = regexp.MustCompile(`\{([^{}]*)\}`)

// Lookup resolves a placeholder key (name with [KeyPrefix]) to its value.
type Lookup func(key string) (string, bool)

// Template is a compiled template: k placeholders interleaved with k+1
// literal fragments.
type Template struct {
	source       string
	literals     []string
	placeholders []string
}

// Compile splits s into literal fragments and placeholder names. Literal text
// is kept verbatim; there is no escaping.
func Compile(s string) *Template {
	t := &Template{source: s}

	last := 0
	for _, loc := range placeholderRe.FindAllStringSubmatchIndex(s, -1) {
		t.literals = append(t.literals, s[last:loc[0]])
		t.placeholders = append(t.placeholders, s[loc[2]:loc[3]])
		last = loc[1]
	}

	t.literals = append(t.literals, s[last:])

	return t
}

// Render concatenates the literal fragments with the looked up placeholder
// values. A placeholder that lookup cannot resolve renders as "".
func (t *Template) Render(lookup Lookup) string {
	var b strings.Builder

	for i, name := range t.placeholders {
		b.WriteString(t.literals[i])

		if v, ok := lookup(KeyPrefix + name); ok {
			b.WriteString(v)
		}
	}

	b.WriteString(t.literals[len(t.literals)-1])

	return b.String()
}

// Placeholders returns the placeholder names in order of appearance, without
// the [KeyPrefix].
func (t *Template) Placeholders() []string {
	out := make([]string, len(t.placeholders))
	copy(out, t.placeholders)

	return out
}

// Literals returns the literal fragments. There is always one more fragment
// than there are placeholders.
func (t *Template) Literals() []string {
	out := make([]string, len(t.literals))
	copy(out, t.literals)

	return out
}

func (t *Template) String() string {
	return t.source
}
