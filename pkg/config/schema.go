package config

//go:generate go run ../../internal/schemagen -o config.v1beta1.json

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/macropower/patsub/pkg/yaml"
)

// SchemaURL identifies the generated schema.
const SchemaURL = "https://raw.githubusercontent.com/macropower/patsub/refs/heads/main/pkg/config/config.v1beta1.json"

// DefaultValidator validates configuration against the JSON schema.
var DefaultValidator = yaml.MustNewValidator(SchemaURL, MustSchema())

// Schema generates the JSON schema for [Config].
func Schema() ([]byte, error) {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}

	s := r.Reflect(&Config{})
	s.ID = SchemaURL

	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	return b, nil
}

// MustSchema is like [Schema], but panics on error.
func MustSchema() []byte {
	b, err := Schema()
	if err != nil {
		panic(err)
	}

	return b
}

func extendSchemaWithEnums(jss *jsonschema.Schema, apiVersions, kinds []string) {
	apiVersion, ok := jss.Properties.Get("apiVersion")
	if !ok {
		panic("apiVersion property not found in schema")
	}

	for _, version := range apiVersions {
		apiVersion.OneOf = append(apiVersion.OneOf, &jsonschema.Schema{
			Type:  "string",
			Const: version,
			Title: "API Version",
		})
	}

	_, _ = jss.Properties.Set("apiVersion", apiVersion)

	kind, ok := jss.Properties.Get("kind")
	if !ok {
		panic("kind property not found in schema")
	}

	for _, kindValue := range kinds {
		kind.OneOf = append(kind.OneOf, &jsonschema.Schema{
			Type:  "string",
			Const: kindValue,
			Title: "Kind",
		})
	}

	_, _ = jss.Properties.Set("kind", kind)
}
