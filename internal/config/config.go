package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"ruler/internal/agents"
	"ruler/internal/logging"

	"github.com/BurntSushi/toml"
)

const (
	RulesDirName   = ".ruler"
	ConfigFileName = "ruler.toml"
	MCPFileName    = "mcp.json"
)

// ErrInvalidConfig marks a project configuration that could not be used.
var ErrInvalidConfig = errors.New("invalid configuration")

type MergeStrategy string

const (
	MergeStrategyMerge     MergeStrategy = "merge"
	MergeStrategyOverwrite MergeStrategy = "overwrite"
)

func (s MergeStrategy) valid() bool {
	return s == "" || s == MergeStrategyMerge || s == MergeStrategyOverwrite
}

// MCPSettings controls tool-server propagation. Nil and empty fields are unset.
type MCPSettings struct {
	Enabled       *bool         `toml:"enabled"`
	MergeStrategy MergeStrategy `toml:"merge_strategy"`
}

type GitignoreSettings struct {
	Enabled *bool `toml:"enabled"`
}

// AgentOverride is the [agents.<name>] table of ruler.toml.
type AgentOverride struct {
	Enabled                *bool        `toml:"enabled"`
	OutputPath             string       `toml:"output_path"`
	OutputPathInstructions string       `toml:"output_path_instructions"`
	OutputPathConfig       string       `toml:"output_path_config"`
	MCP                    *MCPSettings `toml:"mcp"`
}

// ProjectConfig is the decoded .ruler/ruler.toml.
type ProjectConfig struct {
	// DefaultAgents is the resolved default target list. When the file omits
	// default_agents it holds the built-in defaults; an explicit empty list
	// expands to every supported agent.
	DefaultAgents []string                 `toml:"default_agents"`
	MCP           MCPSettings              `toml:"mcp"`
	Gitignore     GitignoreSettings        `toml:"gitignore"`
	Agents        map[string]AgentOverride `toml:"agents"`
}

// BuiltinDefaultAgents are targeted when neither the command line nor the
// project configuration names any agents.
func BuiltinDefaultAgents() []string {
	return []string{"copilot", "claude", "aider"}
}

// Default returns the configuration used when ruler.toml does not exist.
func Default() *ProjectConfig {
	enabled := true
	gitignore := true
	return &ProjectConfig{
		DefaultAgents: BuiltinDefaultAgents(),
		MCP: MCPSettings{
			Enabled:       &enabled,
			MergeStrategy: MergeStrategyMerge,
		},
		Gitignore: GitignoreSettings{Enabled: &gitignore},
		Agents:    map[string]AgentOverride{},
	}
}

// RulesDir returns the .ruler directory of a project.
func RulesDir(projectRoot string) string {
	return filepath.Join(projectRoot, RulesDirName)
}

// DefaultConfigPath returns .ruler/ruler.toml under projectRoot.
func DefaultConfigPath(projectRoot string) string {
	return filepath.Join(RulesDir(projectRoot), ConfigFileName)
}

// CanonicalMCPPath returns .ruler/mcp.json under projectRoot.
func CanonicalMCPPath(projectRoot string) string {
	return filepath.Join(RulesDir(projectRoot), MCPFileName)
}

// Load reads the project configuration at path. A missing file yields
// Default(); anything unparsable or semantically invalid is ErrInvalidConfig.
func Load(path string, logger *logging.AppLogger) (*ProjectConfig, error) {
	if logger == nil {
		logger = logging.GetDefault()
	}

	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Debug("No project configuration, using defaults", "path", path)
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: cannot access %s: %w", ErrInvalidConfig, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrInvalidConfig, path)
	}

	var cfg ProjectConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrInvalidConfig, path, err)
	}
	for _, key := range md.Undecoded() {
		logger.Warn("Ignoring unknown configuration key", "key", key.String(), "file", path)
	}

	if !md.IsDefined("default_agents") {
		cfg.DefaultAgents = BuiltinDefaultAgents()
	} else if len(cfg.DefaultAgents) == 0 {
		cfg.DefaultAgents = agents.Names()
	}

	if err := cfg.normalize(logger); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}

	logger.Debug("Loaded project configuration",
		"path", path,
		"default_agents", strings.Join(cfg.DefaultAgents, ","),
		"overrides", len(cfg.Agents),
	)
	return &cfg, nil
}

// normalize lowercases override keys and validates merge strategies.
func (c *ProjectConfig) normalize(logger *logging.AppLogger) error {
	if !c.MCP.MergeStrategy.valid() {
		return fmt.Errorf("mcp.merge_strategy %q must be %q or %q",
			c.MCP.MergeStrategy, MergeStrategyMerge, MergeStrategyOverwrite)
	}

	known := agents.Names()
	normalized := make(map[string]AgentOverride, len(c.Agents))
	for name, override := range c.Agents {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, dup := normalized[key]; dup {
			return fmt.Errorf("agent %q is configured more than once", key)
		}
		if override.MCP != nil && !override.MCP.MergeStrategy.valid() {
			return fmt.Errorf("agents.%s.mcp.merge_strategy %q must be %q or %q",
				name, override.MCP.MergeStrategy, MergeStrategyMerge, MergeStrategyOverwrite)
		}
		if !slices.Contains(known, key) {
			logger.Warn("Configuration for unknown agent is ignored", "agent", name)
		}
		normalized[key] = override
	}
	c.Agents = normalized
	return nil
}

// Override returns the [agents.<name>] table, or a zero value.
func (c *ProjectConfig) Override(name string) AgentOverride {
	if c == nil || c.Agents == nil {
		return AgentOverride{}
	}
	return c.Agents[strings.ToLower(name)]
}
