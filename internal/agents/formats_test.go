package agents

import (
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestSecondaryContent_Aider(t *testing.T) {
	def, ok := Lookup("aider")
	require.True(t, ok)

	data, err := def.SecondaryContent()
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, map[string]any{
		"model":       "gpt-4",
		"edit-format": "diff",
		"show-diffs":  true,
	}, got)
}

func TestSecondaryContent_OpenHands(t *testing.T) {
	def, ok := Lookup("openhands")
	require.True(t, ok)

	data, err := def.SecondaryContent()
	require.NoError(t, err)
	assert.Contains(t, string(data), `runtime = "eventstream"`)

	var got OpenHandsConfig
	_, err = toml.Decode(string(data), &got)
	require.NoError(t, err)
	assert.Equal(t, OpenHandsConfig{Runtime: "eventstream", MaxIterations: 50, MaxChars: 10000}, got)
}

func TestSecondaryContent_Unsupported(t *testing.T) {
	def, ok := Lookup("claude")
	require.True(t, ok)

	_, err := def.SecondaryContent()
	assert.Error(t, err)
}

func TestSecondaryContent_EmptyDefaults(t *testing.T) {
	def := Definition{Name: "custom", SupportsConfig: true, ConfigFormat: JSON}

	data, err := def.SecondaryContent()
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(data))
}

func TestFormatNames(t *testing.T) {
	assert.Equal(t, "yaml", YAML.Name())
	assert.Equal(t, "toml", TOML.Name())
	assert.Equal(t, "json", JSON.Name())
}
