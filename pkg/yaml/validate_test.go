package yaml_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/patsub/pkg/yaml"
)

var rulesSchema = []byte(`{
	"type": "object",
	"properties": {
		"kind": {"type": "string", "const": "Configuration"},
		"engine": {"type": "string", "enum": ["re2", "pcre"]},
		"buffered": {"type": "boolean"},
		"rules": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"pattern": {"type": "string", "minLength": 1},
					"template": {"type": "string"},
					"when": {"type": "string"}
				},
				"required": ["pattern"],
				"additionalProperties": false
			}
		}
	},
	"required": ["kind"]
}`)

func TestNewValidator(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		errMsg     string
		schemaData []byte
		wantErr    bool
	}{
		"valid schema": {
			schemaData: rulesSchema,
		},
		"invalid json": {
			schemaData: []byte(`{"invalid": json}`),
			wantErr:    true,
			errMsg:     "unmarshal schema",
		},
		"invalid schema": {
			schemaData: []byte(`{"type": "invalid_type"}`),
			wantErr:    true,
			errMsg:     "compile schema",
		},
		"empty schema": {
			schemaData: []byte(`{}`),
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			validator, err := yaml.NewValidator("test", tc.schemaData)

			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errMsg)
				assert.Nil(t, validator)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, validator)
			}
		})
	}
}

func TestValidator_Validate(t *testing.T) {
	t.Parallel()

	validator := yaml.MustNewValidator("test", rulesSchema)

	tcs := map[string]struct {
		data         any
		expectedPath string
		wantErr      bool
	}{
		"valid": {
			data: map[string]any{
				"kind":   "Configuration",
				"engine": "pcre",
				"rules": []any{
					map[string]any{"pattern": "{a}", "template": "{a}"},
					map[string]any{"pattern": "{b}", "when": `vars.b == "x"`},
				},
			},
		},
		"missing kind": {
			data:         map[string]any{},
			wantErr:      true,
			expectedPath: "$",
		},
		"wrong kind": {
			data:         map[string]any{"kind": "Other"},
			wantErr:      true,
			expectedPath: "$.kind",
		},
		"unknown engine": {
			data:         map[string]any{"kind": "Configuration", "engine": "perl"},
			wantErr:      true,
			expectedPath: "$.engine",
		},
		"wrong type": {
			data:         map[string]any{"kind": "Configuration", "buffered": "yes"},
			wantErr:      true,
			expectedPath: "$.buffered",
		},
		"missing pattern in second rule": {
			data: map[string]any{
				"kind": "Configuration",
				"rules": []any{
					map[string]any{"pattern": "{a}"},
					map[string]any{"template": "{a}"},
				},
			},
			wantErr:      true,
			expectedPath: "$.rules[1]",
		},
		"empty pattern": {
			data: map[string]any{
				"kind":  "Configuration",
				"rules": []any{map[string]any{"pattern": ""}},
			},
			wantErr:      true,
			expectedPath: "$.rules[0].pattern",
		},
		"non-string template": {
			data: map[string]any{
				"kind": "Configuration",
				"rules": []any{
					map[string]any{"pattern": "{a}"},
					map[string]any{"pattern": "{a}"},
					map[string]any{"pattern": "{a}", "template": true},
				},
			},
			wantErr:      true,
			expectedPath: "$.rules[2].template",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := validator.Validate(tc.data)

			if tc.wantErr {
				require.Error(t, err)

				var validationErr *yaml.Error
				require.ErrorAs(t, err, &validationErr)
				require.NotNil(t, validationErr.Path)
				assert.Equal(t, tc.expectedPath, validationErr.Path.String())
				require.ErrorIs(t, err, yaml.ErrSchema)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidator_ValidateMessage(t *testing.T) {
	t.Parallel()

	validator := yaml.MustNewValidator("test", rulesSchema)

	err := validator.Validate(map[string]any{
		"kind":  "Configuration",
		"rules": []any{map[string]any{"template": "{a}"}},
	})
	require.ErrorIs(t, err, yaml.ErrSchema)
	assert.Contains(t, err.Error(), "error at $.rules[0]")
	assert.Contains(t, err.Error(), "pattern")
}
