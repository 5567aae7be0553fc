package regex

import (
	"fmt"
	"regexp"
)

// RE2 is a [Matcher] backed by [regexp.Regexp].
type RE2 struct {
	re    *regexp.Regexp
	names []string
}

func compileRE2(expr string) (*RE2, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile regex: %w", err)
	}

	m := &RE2{re: re}
	for _, name := range re.SubexpNames() {
		if name != "" {
			m.names = append(m.names, name)
		}
	}

	return m, nil
}

func (m *RE2) Match(subject string) (*Match, error) {
	loc := m.re.FindStringSubmatchIndex(subject)
	if loc == nil {
		return nil, nil //nolint:nilnil // No match is not an error.
	}

	match := &Match{
		Start:  loc[0],
		End:    loc[1],
		Groups: make(map[string]string, len(m.names)),
	}

	for i, name := range m.re.SubexpNames() {
		if name == "" || loc[2*i] < 0 {
			continue
		}

		match.Groups[name] = subject[loc[2*i]:loc[2*i+1]]
	}

	return match, nil
}

func (m *RE2) Names() []string {
	return m.names
}

func (m *RE2) String() string {
	return m.re.String()
}
