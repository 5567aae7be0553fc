package rule

import (
	"strings"

	"github.com/macropower/patsub/pkg/expr"
	"github.com/macropower/patsub/pkg/pattern"
	"github.com/macropower/patsub/pkg/regex"
	"github.com/macropower/patsub/pkg/template"
)

// Pseudo-variables available to every template.
const (
	PseudoBefore = "^"
	PseudoMatch  = "%"
	PseudoAfter  = "$"
	PseudoLine   = "@"
)

// IsPseudo reports whether name is a pseudo-variable.
func IsPseudo(name string) bool {
	switch name {
	case PseudoBefore, PseudoMatch, PseudoAfter, PseudoLine:
		return true
	}

	return false
}

// MatchContext holds the values available to a template after a successful
// match.
type MatchContext struct {
	Match *regex.Match
	Line  string
}

// Lookup resolves a prefixed placeholder key. Groups that did not
// participate in the match are reported as missing.
func (mc MatchContext) Lookup(key string) (string, bool) {
	name, ok := strings.CutPrefix(key, template.KeyPrefix)
	if !ok {
		return "", false
	}

	switch name {
	case PseudoBefore:
		return mc.Line[:mc.Match.Start], true
	case PseudoMatch:
		return mc.Line[mc.Match.Start:mc.Match.End], true
	case PseudoAfter:
		return mc.Line[mc.Match.End:], true
	case PseudoLine:
		return mc.Line, true
	}

	v, ok := mc.Match.Groups[key]

	return v, ok
}

// Vars returns the captured groups keyed by their unprefixed names.
func (mc MatchContext) Vars() map[string]string {
	vars := make(map[string]string, len(mc.Match.Groups))
	for k, v := range mc.Match.Groups {
		vars[strings.TrimPrefix(k, pattern.GroupPrefix)] = v
	}

	return vars
}

func (mc MatchContext) activation() expr.Activation {
	return expr.Activation{
		Vars:   mc.Vars(),
		Line:   mc.Line,
		Match:  mc.Line[mc.Match.Start:mc.Match.End],
		Before: mc.Line[:mc.Match.Start],
		After:  mc.Line[mc.Match.End:],
	}
}
