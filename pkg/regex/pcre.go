package regex

import (
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// PCRE is a [Matcher] backed by [regexp2.Regexp].
type PCRE struct {
	re    *regexp2.Regexp
	names []string
}

func compilePCRE(expr string, timeout time.Duration) (*PCRE, error) {
	re, err := regexp2.Compile(expr, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("compile regex: %w", err)
	}

	if timeout > 0 {
		re.MatchTimeout = timeout
	}

	m := &PCRE{re: re}
	for _, name := range re.GetGroupNames() {
		// Unnamed groups are reported by number.
		if _, err := strconv.Atoi(name); err == nil {
			continue
		}

		m.names = append(m.names, name)
	}

	return m, nil
}

func (m *PCRE) Match(subject string) (*Match, error) {
	res, err := m.re.FindStringMatch(subject)
	if err != nil {
		return nil, fmt.Errorf("match: %w", err)
	}
	if res == nil {
		return nil, nil //nolint:nilnil // No match is not an error.
	}

	// regexp2 reports rune offsets.
	offsets := runeOffsets(subject)

	match := &Match{
		Start:  offsets[res.Index],
		End:    offsets[res.Index+res.Length],
		Groups: make(map[string]string, len(m.names)),
	}

	for _, name := range m.names {
		g := res.GroupByName(name)
		if g == nil || len(g.Captures) == 0 {
			continue
		}

		match.Groups[name] = subject[offsets[g.Index]:offsets[g.Index+g.Length]]
	}

	return match, nil
}

// runeOffsets returns the byte offset of every rune in s, followed by len(s).
// Each invalid byte counts as one rune, as it does when s is converted to
// []rune.
func runeOffsets(s string) []int {
	offsets := make([]int, 0, len(s)+1)
	for i := 0; i < len(s); {
		offsets = append(offsets, i)
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}

	return append(offsets, len(s))
}

func (m *PCRE) Names() []string {
	return m.names
}

func (m *PCRE) String() string {
	return m.re.String()
}
