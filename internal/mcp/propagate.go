package mcp

import (
	"encoding/json"
	"fmt"
	"maps"
	"path/filepath"

	"ruler/internal/agents"
	"ruler/internal/config"
	"ruler/internal/logging"
	"ruler/pkg/fileops"
)

type Outcome int

const (
	// NotApplicable means nothing was written for the agent.
	NotApplicable Outcome = iota
	Applied
	Failed
)

func (o Outcome) String() string {
	switch o {
	case NotApplicable:
		return "not applicable"
	case Applied:
		return "applied"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Result reports one propagation. Path is set whenever a native document was
// targeted; Err only when Outcome is Failed.
type Result struct {
	Outcome Outcome
	Path    string
	Err     error
}

type Propagator struct {
	projectRoot string
	logger      *logging.AppLogger
}

func NewPropagator(projectRoot string, logger *logging.AppLogger) *Propagator {
	if logger == nil {
		logger = logging.GetDefault()
	}
	return &Propagator{projectRoot: projectRoot, logger: logger}
}

// NativePath returns the absolute native document path for def, or "" when
// the agent has none.
func (p *Propagator) NativePath(def agents.Definition) string {
	if !def.SupportsMCP || def.MCPPath == "" {
		return ""
	}
	return filepath.Join(p.projectRoot, filepath.FromSlash(def.MCPPath))
}

// Apply writes canonical into def's native document. Under the merge strategy
// servers already in the native document are kept unless canonical defines the
// same name, and other top-level keys are preserved. Under overwrite the
// native document becomes exactly the canonical server map. A nil canonical
// document, a disabled agent or an agent without MCP support is NotApplicable.
func (p *Propagator) Apply(def agents.Definition, settings config.AgentMCPSettings, canonical *Configuration) Result {
	path := p.NativePath(def)
	switch {
	case path == "":
		return Result{Outcome: NotApplicable}
	case !settings.Enabled:
		p.logger.Debug("MCP disabled for agent", "agent", def.Name)
		return Result{Outcome: NotApplicable}
	case canonical == nil:
		return Result{Outcome: NotApplicable}
	}

	var doc map[string]json.RawMessage
	if settings.Overwrite() {
		doc = map[string]json.RawMessage{}
		if err := setServers(doc, canonical.Servers); err != nil {
			return p.fail(def, path, err)
		}
	} else {
		var err error
		doc, err = p.merge(def, path, canonical)
		if err != nil {
			return p.fail(def, path, err)
		}
	}

	data, err := Encode(doc)
	if err != nil {
		return p.fail(def, path, err)
	}
	if _, err := fileops.WriteWithBackup(path, data); err != nil {
		return p.fail(def, path, err)
	}

	p.logger.Debug("Applied MCP configuration",
		"agent", def.Name,
		"path", path,
		"strategy", settings.Strategy,
		"servers", len(canonical.Servers),
	)
	return Result{Outcome: Applied, Path: path}
}

func (p *Propagator) merge(def agents.Definition, path string, canonical *Configuration) (map[string]json.RawMessage, error) {
	doc := map[string]json.RawMessage{}
	servers := map[string]json.RawMessage{}

	native := LoadDocument(path)
	switch native.Outcome {
	case Loaded:
		maps.Copy(doc, native.Raw)
		maps.Copy(servers, native.Config.Servers)
	case Invalid:
		p.logger.Warn("Existing MCP configuration is unreadable, replacing it",
			"agent", def.Name, "path", path, "error", native.Err)
	}

	maps.Copy(servers, canonical.Servers)
	if err := setServers(doc, servers); err != nil {
		return nil, err
	}
	return doc, nil
}

func (p *Propagator) fail(def agents.Definition, path string, err error) Result {
	return Result{
		Outcome: Failed,
		Path:    path,
		Err:     fmt.Errorf("apply MCP configuration for %s: %w", def.DisplayName, err),
	}
}

func setServers(doc map[string]json.RawMessage, servers map[string]json.RawMessage) error {
	if servers == nil {
		servers = map[string]json.RawMessage{}
	}
	encoded, err := json.Marshal(servers)
	if err != nil {
		return fmt.Errorf("encode servers: %w", err)
	}
	doc[ServersKey] = encoded
	return nil
}
