package config

import (
	"context"
	"errors"

	"github.com/macropower/patsub/pkg/rule"
	"github.com/macropower/patsub/pkg/yaml"
)

// BuildSet compiles the config's rules, followed by any extra rules, into a
// [rule.Set].
//
// Errors in rules from the config file are returned as a [*yaml.Error]
// pointing at the rule.
func (c *Config) BuildSet(ctx context.Context, extra ...rule.Spec) (*rule.Set, error) {
	opts, err := c.RuleOptions()
	if err != nil {
		return nil, err
	}

	specs := make([]rule.Spec, 0, len(c.Rules)+len(extra))
	specs = append(specs, c.Rules...)
	specs = append(specs, extra...)

	set, err := rule.Compile(ctx, specs, opts...)
	if err != nil {
		var specErr *rule.SpecError
		if errors.As(err, &specErr) && specErr.Index < len(c.Rules) {
			field := "pattern"
			if errors.Is(err, rule.ErrInvalidGuard) {
				field = "when"
			}

			path := yaml.NewPathBuilder().Root().
				Child("rules").Index(uint(specErr.Index)).
				Child(field).Build()

			return nil, c.wrap(specErr.Err, path)
		}

		return nil, err //nolint:wrapcheck // Already describes the rule.
	}

	return set, nil
}
