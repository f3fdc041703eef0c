package agents

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format encodes an agent's secondary configuration document.
type Format interface {
	Name() string
	Encode(v any) ([]byte, error)
}

var (
	YAML Format = yamlFormat{}
	TOML Format = tomlFormat{}
	JSON Format = jsonFormat{}
)

type yamlFormat struct{}

func (yamlFormat) Name() string { return "yaml" }

func (yamlFormat) Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

type tomlFormat struct{}

func (tomlFormat) Name() string { return "toml" }

func (tomlFormat) Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("encode toml: %w", err)
	}
	return buf.Bytes(), nil
}

type jsonFormat struct{}

func (jsonFormat) Name() string { return "json" }

func (jsonFormat) Encode(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return append(data, '\n'), nil
}

// AiderConfig is the subset of .aider.conf.yml ruler seeds.
type AiderConfig struct {
	Model      string `yaml:"model"`
	EditFormat string `yaml:"edit-format"`
	ShowDiffs  bool   `yaml:"show-diffs"`
}

// OpenHandsConfig is the subset of .openhands/config.toml ruler seeds.
type OpenHandsConfig struct {
	Runtime       string `toml:"runtime"`
	MaxIterations int    `toml:"max_iterations"`
	MaxChars      int    `toml:"max_chars"`
}
