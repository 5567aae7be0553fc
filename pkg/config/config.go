package config

import (
	"errors"
	"fmt"
	"time"

	goyaml "github.com/goccy/go-yaml"
	"github.com/invopop/jsonschema"

	"github.com/macropower/patsub/pkg/regex"
	"github.com/macropower/patsub/pkg/rule"
	"github.com/macropower/patsub/pkg/yaml"
)

const (
	APIVersion = "patsub.jacobcolvin.com/v1beta1"
	Kind       = "Configuration"
)

var (
	ErrInvalidMatchTimeout = errors.New("invalid match timeout")

	ValidAPIVersions = []string{
		APIVersion,
	}
	ValidKinds = []string{
		Kind,
	}
)

//nolint:recvcheck // Must satisfy the jsonschema interface.
type Config struct {
	// APIVersion specifies the API version for this configuration.
	APIVersion string `json:"apiVersion" jsonschema:"title=API Version"`
	// Kind defines the type of configuration.
	Kind string `json:"kind" jsonschema:"title=Kind"`
	// Engine selects the regular expression engine.
	Engine string `json:"engine,omitempty" jsonschema:"title=Regex Engine,enum=re2,enum=pcre"`
	// DefaultRegex replaces the regex inferred for alphabetic group names.
	DefaultRegex string `json:"defaultRegex,omitempty" jsonschema:"title=Default Regex"`
	// MatchTimeout bounds a single match, e.g. "100ms". Only supported by
	// the pcre engine.
	MatchTimeout string `json:"matchTimeout,omitempty" jsonschema:"title=Match Timeout"`
	// Rules are tried in order against each line. The first matching rule
	// renders the output line.
	Rules []rule.Spec `json:"rules,omitempty" jsonschema:"title=Rules"`
	// Buffered disables flushing after each output line.
	Buffered bool `json:"buffered,omitempty" jsonschema:"title=Buffered"`

	// Source the config was loaded from, used to annotate errors.
	source []byte
}

// NewConfig creates a new [Config] with default values.
func NewConfig() *Config {
	c := &Config{
		APIVersion: APIVersion,
		Kind:       Kind,
	}
	c.EnsureDefaults()

	return c
}

// EnsureDefaults initializes empty fields to their default values.
func (c *Config) EnsureDefaults() {
	if c.APIVersion == "" {
		c.APIVersion = APIVersion
	}
	if c.Kind == "" {
		c.Kind = Kind
	}
	if c.Engine == "" {
		c.Engine = string(regex.EngineRE2)
	}
}

func (c Config) JSONSchemaExtend(jss *jsonschema.Schema) {
	extendSchemaWithEnums(jss, ValidAPIVersions, ValidKinds)
}

// MarshalYAML serializes the config to YAML.
func (c Config) MarshalYAML() ([]byte, error) {
	type alias Config

	b, err := yaml.Marshal(alias(c))
	if err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}

	return b, nil
}

// RuleOptions returns the [rule.Opt]s described by the config.
func (c *Config) RuleOptions() ([]rule.Opt, error) {
	engine, err := regex.GetEngine(c.Engine)
	if err != nil {
		return nil, c.wrap(err, yaml.NewPathBuilder().Root().Child("engine").Build())
	}

	opts := []rule.Opt{
		rule.WithEngine(engine),
		rule.WithDefaultRegex(c.DefaultRegex),
	}

	if c.MatchTimeout != "" {
		d, err := time.ParseDuration(c.MatchTimeout)
		if err != nil || d < 0 {
			return nil, c.wrap(
				fmt.Errorf("%w: %q", ErrInvalidMatchTimeout, c.MatchTimeout),
				yaml.NewPathBuilder().Root().Child("matchTimeout").Build(),
			)
		}

		opts = append(opts, rule.WithMatchTimeout(d))
	}

	return opts, nil
}

func (c *Config) wrap(err error, path *goyaml.Path) error {
	return yaml.NewError(err, yaml.WithPath(path), yaml.WithSource(c.source))
}
