package ruler

import (
	"ruler/internal/agents"
	"ruler/internal/mcp"
)

const (
	NoticeNoAgents = "No enabled agents found. Check your configuration."
	NoticeNoRules  = "No rules content found. Add markdown files to your .ruler/ directory."
)

// AgentResult is the outcome of one agent's run. Paths lists the instruction
// and configuration files written for it; the native MCP document, if any, is
// in MCP.Path.
type AgentResult struct {
	Agent agents.Definition
	Paths []string
	MCP   mcp.Result
	Err   error
}

// Failed reports whether materialization or MCP propagation failed.
func (r AgentResult) Failed() bool {
	return r.Err != nil || r.MCP.Outcome == mcp.Failed
}

// Errors returns every failure recorded for the agent.
func (r AgentResult) Errors() []error {
	var errs []error
	if r.Err != nil {
		errs = append(errs, r.Err)
	}
	if r.MCP.Err != nil {
		errs = append(errs, r.MCP.Err)
	}
	return errs
}

// Report summarizes an apply run. A non-empty Notice means the run was a
// recognized no-op and nothing was written.
type Report struct {
	ProjectRoot string
	Notice      string
	Results     []AgentResult

	// CanonicalMCP is how the canonical tool-server document loaded. It is
	// only meaningful when MCP propagation ran.
	CanonicalMCP mcp.LoadOutcome
	MCPIssues    []mcp.Issue
	MCPSkipped   bool

	// IgnoredPaths are the entries written into the .gitignore block.
	IgnoredPaths []string
	GitignoreErr error

	// UnignoredPaths are written files that .gitignore still does not
	// ignore, for example because of a later negation rule.
	UnignoredPaths []string
}

func (r *Report) Succeeded() []AgentResult {
	var out []AgentResult
	for _, res := range r.Results {
		if !res.Failed() {
			out = append(out, res)
		}
	}
	return out
}

func (r *Report) Failed() []AgentResult {
	var out []AgentResult
	for _, res := range r.Results {
		if res.Failed() {
			out = append(out, res)
		}
	}
	return out
}

// WrittenPaths returns every instruction and configuration file written, in
// agent order.
func (r *Report) WrittenPaths() []string {
	var out []string
	for _, res := range r.Results {
		out = append(out, res.Paths...)
	}
	return out
}
