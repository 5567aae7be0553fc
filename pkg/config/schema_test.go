package config_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/patsub/pkg/config"
)

func TestSchema(t *testing.T) {
	t.Parallel()

	b, err := config.Schema()
	require.NoError(t, err)

	var s struct {
		Properties map[string]json.RawMessage `json:"properties"`
		ID         string                     `json:"$id"`
		Required   []string                   `json:"required"`
	}
	require.NoError(t, json.Unmarshal(b, &s))

	assert.Equal(t, config.SchemaURL, s.ID)
	assert.ElementsMatch(t, []string{"apiVersion", "kind"}, s.Required)

	for _, key := range []string{"apiVersion", "kind", "engine", "defaultRegex", "matchTimeout", "rules", "buffered"} {
		assert.Contains(t, s.Properties, key)
	}

	assert.Contains(t, string(s.Properties["engine"]), `"pcre"`)
	assert.Contains(t, string(s.Properties["apiVersion"]), config.APIVersion)
}

func TestDefaultConfigIsValid(t *testing.T) {
	t.Parallel()

	b, err := config.NewConfig().MarshalYAML()
	require.NoError(t, err)

	require.NoError(t, config.NewLoaderFromBytes(b).Validate())
}
