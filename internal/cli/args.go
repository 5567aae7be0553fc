package cli

import (
	"errors"
	"fmt"

	"github.com/mattn/go-shellwords"

	"github.com/macropower/patsub/pkg/rule"
)

var ErrInvalidRule = errors.New("invalid rule")

// pairArgs groups positional arguments into PATTERN TEMPLATE pairs. A trailing
// pattern without a template uses the default template.
func pairArgs(args []string) []rule.Spec {
	specs := make([]rule.Spec, 0, (len(args)+1)/2)

	for i := 0; i < len(args); i += 2 {
		if i+1 == len(args) {
			specs = append(specs, rule.Spec{Pattern: args[i]})
			break
		}

		specs = append(specs, rule.NewSpec(args[i], args[i+1]))
	}

	return specs
}

// parseRuleFlag splits a --rule value into a pattern and optional template
// using shell quoting rules. Backslashes are only kept inside single quotes.
func parseRuleFlag(s string) (rule.Spec, error) {
	words, err := shellwords.Parse(s)
	if err != nil {
		return rule.Spec{}, fmt.Errorf("%w %q: %w", ErrInvalidRule, s, err)
	}

	switch len(words) {
	case 1:
		return rule.Spec{Pattern: words[0]}, nil
	case 2:
		return rule.NewSpec(words[0], words[1]), nil
	default:
		return rule.Spec{}, fmt.Errorf("%w %q: want PATTERN [TEMPLATE], got %d words",
			ErrInvalidRule, s, len(words))
	}
}

// ruleSpecs returns the rules given by --rule flags followed by those given
// as positional arguments.
func (ra *RunArgs) ruleSpecs() ([]rule.Spec, error) {
	specs := make([]rule.Spec, 0, len(ra.Rules)+len(ra.Pairs))

	for _, r := range ra.Rules {
		spec, err := parseRuleFlag(r)
		if err != nil {
			return nil, err
		}

		specs = append(specs, spec)
	}

	return append(specs, pairArgs(ra.Pairs)...), nil
}
