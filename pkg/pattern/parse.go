package pattern

import (
	"errors"
	"strings"
)

// Parse turns a pattern into its nodes, in source order. Empty literal runs
// are omitted.
//
// An unbalanced brace returns a [*ParseError]; a group whose name does not
// start with a letter or digit returns a [*ConfigError].
func Parse(pattern string) ([]Node, error) {
	p := &parser{src: []rune(pattern)}

	nodes, _, err := p.parse(0, 0, -1)
	if err != nil {
		return nil, withPattern(err, pattern)
	}

	return nodes, nil
}

type parser struct {
	src []rune
}

// parse reads nodes starting at pos. At depth 0 it runs to the end of input;
// deeper levels stop at the closing brace and return its position. open is
// the position of the brace that started this level.
//
// The first returned node is always the literal preceding the first group
// (possibly empty), so that callers can take it as a group header.
func (p *parser) parse(pos, depth, open int) ([]Node, int, error) {
	var (
		nodes []Node
		buf   strings.Builder
	)

	flush := func() {
		nodes = append(nodes, Literal{Text: buf.String()})
		buf.Reset()
	}

	for pos < len(p.src) {
		c := p.src[pos]

		switch c {
		case '\\':
			if pos == len(p.src)-1 {
				// Trailing backslash.
				buf.WriteString(`\\`)
				pos++

				continue
			}

			// Escaped braces and backslashes stay escaped so they match
			// literally; other escapes are regex escapes and pass through.
			buf.WriteRune('\\')
			buf.WriteRune(p.src[pos+1])
			pos += 2

		case '{':
			flush()

			children, end, err := p.parse(pos+1, depth+1, pos)
			if err != nil {
				return nil, 0, err
			}

			header := children[0].(Literal).Text //nolint:forcetypeassert // Always a Literal.

			g, err := newGroup(header, compact(children[1:]))
			if err != nil {
				return nil, 0, err
			}

			nodes = append(nodes, g)
			pos = end + 1

		case '}':
			if depth == 0 {
				return nil, 0, &ParseError{
					Reason: "closing brace with no matching open",
					Offset: pos,
				}
			}

			flush()

			return nodes, pos, nil

		default:
			buf.WriteRune(c)
			pos++
		}
	}

	if depth > 0 {
		return nil, 0, &ParseError{
			Reason: "unclosed opening brace",
			Offset: open,
		}
	}

	flush()

	return compact(nodes), pos, nil
}

// compact drops empty literals.
func compact(nodes []Node) []Node {
	var out []Node
	for _, n := range nodes {
		if l, ok := n.(Literal); ok && l.Text == "" {
			continue
		}

		out = append(out, n)
	}

	return out
}

func withPattern(err error, pattern string) error {
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		parseErr.Pattern = pattern
		return parseErr
	}

	var configErr *ConfigError
	if errors.As(err, &configErr) {
		configErr.Pattern = pattern
		return configErr
	}

	return err
}
