package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/patsub/pkg/config"
	"github.com/macropower/patsub/pkg/yaml"
)

func createTempFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestNewLoaderFromFile(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		setupFile func(t *testing.T) string
		wantErr   bool
	}{
		"valid file": {
			setupFile: func(t *testing.T) string {
				t.Helper()

				return createTempFile(t, "apiVersion: patsub.jacobcolvin.com/v1beta1\nkind: Configuration\n")
			},
		},
		"non-existent file": {
			setupFile: func(t *testing.T) string {
				t.Helper()

				return "/non/existent/file.yaml"
			},
			wantErr: true,
		},
		"directory instead of file": {
			setupFile: func(t *testing.T) string {
				t.Helper()

				return t.TempDir()
			},
			wantErr: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := config.NewLoaderFromFile(tc.setupFile(t))

			if tc.wantErr {
				require.Error(t, err)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, got)
			}
		})
	}
}

func TestLoader_Validate(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input    string
		wantPath string
		wantErr  bool
	}{
		"valid": {
			input: `apiVersion: patsub.jacobcolvin.com/v1beta1
kind: Configuration
engine: pcre
matchTimeout: 100ms
defaultRegex: "[a-z]+"
buffered: true
rules:
  - pattern: "{y:[0-9]{4}}-{m:[0-9]{2}}-{d:[0-9]{2}} {lvl}"
    template: "{d}/{m}/{y}: {lvl}"
  - pattern: "{n}"
    when: 'vars.n != ""'
`,
		},
		"wrong api version": {
			input:    "apiVersion: v1\nkind: Configuration\n",
			wantErr:  true,
			wantPath: "$.apiVersion",
		},
		"wrong kind": {
			input:    "apiVersion: patsub.jacobcolvin.com/v1beta1\nkind: Policy\n",
			wantErr:  true,
			wantPath: "$.kind",
		},
		"unknown engine": {
			input:    "apiVersion: patsub.jacobcolvin.com/v1beta1\nkind: Configuration\nengine: sed\n",
			wantErr:  true,
			wantPath: "$.engine",
		},
		"rule without pattern": {
			input: `apiVersion: patsub.jacobcolvin.com/v1beta1
kind: Configuration
rules:
  - pattern: "{a}"
  - template: "{a}"
`,
			wantErr:  true,
			wantPath: "$.rules[1]",
		},
		"unknown rule field": {
			input: `apiVersion: patsub.jacobcolvin.com/v1beta1
kind: Configuration
rules:
  - pattern: "{a}"
    tmpl: "{a}"
`,
			wantErr:  true,
			wantPath: "$.rules[0]",
		},
		"invalid yaml": {
			input:   "kind: [\n",
			wantErr: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := config.NewLoaderFromBytes([]byte(tc.input)).Validate()
			if !tc.wantErr {
				require.NoError(t, err)

				return
			}

			require.Error(t, err)

			var yamlErr *yaml.Error
			require.ErrorAs(t, err, &yamlErr)
			assert.Equal(t, []byte(tc.input), yamlErr.Source)

			if tc.wantPath != "" {
				require.NotNil(t, yamlErr.Path)
				assert.Equal(t, tc.wantPath, yamlErr.Path.String())
			}
		})
	}
}

func TestLoader_Load(t *testing.T) {
	t.Parallel()

	input := `apiVersion: patsub.jacobcolvin.com/v1beta1
kind: Configuration
buffered: true
rules:
  - pattern: "{a}"
    template: "<{a}>"
  - pattern: "{b}"
`

	c, err := config.NewLoaderFromBytes([]byte(input)).Load()
	require.NoError(t, err)

	assert.True(t, c.Buffered)
	assert.Equal(t, "re2", c.Engine)
	require.Len(t, c.Rules, 2)
	assert.Equal(t, "{a}", c.Rules[0].Pattern)
	require.NotNil(t, c.Rules[0].Template)
	assert.Equal(t, "<{a}>", *c.Rules[0].Template)
	assert.Nil(t, c.Rules[1].Template)
	assert.Equal(t, "{@}", c.Rules[1].TemplateOrDefault())
}

func TestLoader_LoadUnknownField(t *testing.T) {
	t.Parallel()

	_, err := config.NewLoaderFromBytes([]byte("kind: Configuration\nrulez: []\n")).Load()
	require.Error(t, err)

	var yamlErr *yaml.Error
	require.ErrorAs(t, err, &yamlErr)
	assert.NotNil(t, yamlErr.Token)
}

type rejectAll struct{}

func (rejectAll) Validate(any) error {
	return yaml.NewError(errors.New("rejected"))
}

func TestLoader_WithValidator(t *testing.T) {
	t.Parallel()

	input := []byte("apiVersion: patsub.jacobcolvin.com/v1beta1\nkind: Configuration\n")

	err := config.NewLoaderFromBytes(input, config.WithValidator(rejectAll{})).Validate()
	require.ErrorContains(t, err, "rejected")

	err = config.NewLoaderFromBytes(input, config.WithValidator(nil)).Validate()
	require.NoError(t, err)
}
