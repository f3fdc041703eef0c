package agents

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownAgents is returned by Resolve when a requested name matches no agent.
var ErrUnknownAgents = errors.New("unknown agents")

// Definition describes where an agent reads its instructions and optional
// secondary files. Paths are relative to the project root.
type Definition struct {
	// Name is the lowercase identifier used on the command line and in ruler.toml
	Name string

	// DisplayName is the human readable product name
	DisplayName string

	// OutputPath is the agent's primary instructions file
	OutputPath string

	// InstructionsPath overrides OutputPath when the agent separates
	// instructions from other outputs. Empty when unused.
	InstructionsPath string

	// ConfigPath is the secondary configuration file, if the agent has one
	ConfigPath string

	SupportsMCP    bool
	SupportsConfig bool

	// ConfigFormat encodes the secondary configuration. Nil when SupportsConfig is false.
	ConfigFormat Format

	// MCPPath is the agent's native tool-server document. Empty when SupportsMCP is false.
	MCPPath string

	defaults any
}

// DefaultInstructionsPath is InstructionsPath when set, otherwise OutputPath.
func (d Definition) DefaultInstructionsPath() string {
	if d.InstructionsPath != "" {
		return d.InstructionsPath
	}
	return d.OutputPath
}

// SecondaryContent encodes the agent's built-in secondary configuration.
func (d Definition) SecondaryContent() ([]byte, error) {
	if !d.SupportsConfig || d.ConfigFormat == nil {
		return nil, fmt.Errorf("agent %s has no secondary configuration", d.Name)
	}
	defaults := d.defaults
	if defaults == nil {
		defaults = map[string]any{}
	}
	data, err := d.ConfigFormat.Encode(defaults)
	if err != nil {
		return nil, fmt.Errorf("agent %s: %w", d.Name, err)
	}
	return data, nil
}

var catalog = []Definition{
	{
		Name:        "copilot",
		DisplayName: "GitHub Copilot",
		OutputPath:  ".github/copilot-instructions.md",
		SupportsMCP: true,
		MCPPath:     ".github/copilot-mcp.json",
	},
	{
		Name:        "claude",
		DisplayName: "Claude Code",
		OutputPath:  "CLAUDE.md",
	},
	{
		Name:        "codex",
		DisplayName: "OpenAI Codex CLI",
		OutputPath:  "AGENTS.md",
	},
	{
		Name:        "cursor",
		DisplayName: "Cursor",
		OutputPath:  ".cursor/rules/ruler_cursor_instructions.md",
		SupportsMCP: true,
		MCPPath:     ".cursor/mcp.json",
	},
	{
		Name:        "windsurf",
		DisplayName: "Windsurf",
		OutputPath:  ".windsurf/rules/ruler_windsurf_instructions.md",
		SupportsMCP: true,
		MCPPath:     ".windsurf/mcp.json",
	},
	{
		Name:        "cline",
		DisplayName: "Cline",
		OutputPath:  ".clinerules",
	},
	{
		Name:           "aider",
		DisplayName:    "Aider",
		OutputPath:     "ruler_aider_instructions.md",
		ConfigPath:     ".aider.conf.yml",
		SupportsConfig: true,
		ConfigFormat:   YAML,
		defaults: AiderConfig{
			Model:      "gpt-4",
			EditFormat: "diff",
			ShowDiffs:  true,
		},
	},
	{
		Name:        "firebase",
		DisplayName: "Firebase Studio",
		OutputPath:  ".idx/airules.md",
	},
	{
		Name:           "openhands",
		DisplayName:    "Open Hands",
		OutputPath:     ".openhands/microagents/repo.md",
		ConfigPath:     ".openhands/config.toml",
		SupportsConfig: true,
		ConfigFormat:   TOML,
		defaults: OpenHandsConfig{
			Runtime:       "eventstream",
			MaxIterations: 50,
			MaxChars:      10000,
		},
	},
}

// All returns every known agent in catalog order.
func All() []Definition {
	out := make([]Definition, len(catalog))
	copy(out, catalog)
	return out
}

// Names returns the identifiers of every known agent in catalog order.
func Names() []string {
	names := make([]string, len(catalog))
	for i, def := range catalog {
		names[i] = def.Name
	}
	return names
}

// Lookup finds an agent by name. An exact case-insensitive match on the
// identifier wins; otherwise the name is treated as a substring of the
// identifier or display name and accepted only when exactly one agent matches.
func Lookup(name string) (Definition, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return Definition{}, false
	}

	for _, def := range catalog {
		if def.Name == key {
			return def, true
		}
	}

	var match Definition
	matches := 0
	for _, def := range catalog {
		if strings.Contains(def.Name, key) || strings.Contains(strings.ToLower(def.DisplayName), key) {
			match = def
			matches++
		}
	}
	if matches != 1 {
		return Definition{}, false
	}
	return match, true
}

// LookupMany resolves names in input order. Every name that matched nothing is
// returned in unknown. An agent named twice is returned once.
func LookupMany(names []string) (found []Definition, unknown []string) {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		def, ok := Lookup(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		if seen[def.Name] {
			continue
		}
		seen[def.Name] = true
		found = append(found, def)
	}
	return found, unknown
}

// Resolve is LookupMany that fails with ErrUnknownAgents when any name is unknown.
func Resolve(names []string) ([]Definition, error) {
	found, unknown := LookupMany(names)
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %s (known agents: %s)", ErrUnknownAgents,
			strings.Join(unknown, ", "), strings.Join(Names(), ", "))
	}
	return found, nil
}
