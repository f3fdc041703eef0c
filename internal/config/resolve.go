package config

import (
	"path/filepath"

	"ruler/internal/agents"
)

// ApplyOptions are the command-line inputs of an apply run. Nil pointers mean
// the flag was not given.
type ApplyOptions struct {
	ProjectRoot  string
	Agents       []string
	ConfigPath   string
	MCP          *bool
	MCPOverwrite bool
	Gitignore    *bool
	Verbose      bool
}

// AgentMCPSettings is the effective tool-server behaviour for one agent.
type AgentMCPSettings struct {
	Enabled  bool
	Strategy MergeStrategy
}

// Overwrite reports whether the native document is replaced instead of merged.
func (s AgentMCPSettings) Overwrite() bool {
	return s.Strategy == MergeStrategyOverwrite
}

// Resolver answers per-run questions with precedence command line, then
// project configuration, then built-in defaults.
type Resolver struct {
	cfg  *ProjectConfig
	opts ApplyOptions
	root string
}

func NewResolver(cfg *ProjectConfig, opts ApplyOptions, projectRoot string) *Resolver {
	if cfg == nil {
		cfg = Default()
	}
	return &Resolver{cfg: cfg, opts: opts, root: projectRoot}
}

// TargetNames is the requested agent list before lookup.
func (r *Resolver) TargetNames() []string {
	if len(r.opts.Agents) > 0 {
		return r.opts.Agents
	}
	if len(r.cfg.DefaultAgents) > 0 {
		return r.cfg.DefaultAgents
	}
	return BuiltinDefaultAgents()
}

func (r *Resolver) AgentEnabled(name string) bool {
	enabled := r.cfg.Override(name).Enabled
	return enabled == nil || *enabled
}

// InstructionsPath is the absolute path the agent's instructions are written to.
func (r *Resolver) InstructionsPath(def agents.Definition) string {
	o := r.cfg.Override(def.Name)
	switch {
	case o.OutputPathInstructions != "":
		return r.abs(o.OutputPathInstructions)
	case o.OutputPath != "":
		return r.abs(o.OutputPath)
	default:
		return r.abs(def.DefaultInstructionsPath())
	}
}

// ConfigPath is the absolute secondary configuration path, or "" when the
// agent has none.
func (r *Resolver) ConfigPath(def agents.Definition) string {
	if p := r.cfg.Override(def.Name).OutputPathConfig; p != "" {
		return r.abs(p)
	}
	if def.ConfigPath != "" {
		return r.abs(def.ConfigPath)
	}
	return ""
}

func (r *Resolver) MCPEnabled() bool {
	if r.opts.MCP != nil {
		return *r.opts.MCP
	}
	if r.cfg.MCP.Enabled != nil {
		return *r.cfg.MCP.Enabled
	}
	return true
}

func (r *Resolver) MCPOverwrite() bool {
	return r.opts.MCPOverwrite
}

func (r *Resolver) GitignoreEnabled() bool {
	if r.opts.Gitignore != nil {
		return *r.opts.Gitignore
	}
	if r.cfg.Gitignore.Enabled != nil {
		return *r.cfg.Gitignore.Enabled
	}
	return true
}

// AgentMCP resolves the agent's [agents.<name>.mcp] table against the run-level
// settings. The --mcp-overwrite flag forces the overwrite strategy.
func (r *Resolver) AgentMCP(def agents.Definition) AgentMCPSettings {
	settings := AgentMCPSettings{
		Enabled:  r.MCPEnabled(),
		Strategy: r.cfg.MCP.MergeStrategy,
	}
	if o := r.cfg.Override(def.Name).MCP; o != nil {
		if o.Enabled != nil {
			settings.Enabled = *o.Enabled
		}
		if o.MergeStrategy != "" {
			settings.Strategy = o.MergeStrategy
		}
	}
	if settings.Strategy == "" {
		settings.Strategy = MergeStrategyMerge
	}
	if r.opts.MCPOverwrite {
		settings.Strategy = MergeStrategyOverwrite
	}
	return settings
}

func (r *Resolver) abs(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(r.root, filepath.FromSlash(p))
}
