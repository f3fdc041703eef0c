// Package ruler runs the apply and init pipelines: it aggregates the rule
// fragments of a project, writes them to every targeted agent, propagates
// tool-server configuration and keeps .gitignore in sync.
package ruler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ruler/internal/agents"
	"ruler/internal/config"
	"ruler/internal/gitignore"
	"ruler/internal/logging"
	"ruler/internal/materialize"
	"ruler/internal/mcp"
	"ruler/internal/rules"
)

// ErrRulesDirNotFound is returned by Apply when the project has no .ruler directory.
var ErrRulesDirNotFound = rules.ErrRulesDirNotFound

type Ruler struct {
	logger *logging.AppLogger
}

func New(logger *logging.AppLogger) *Ruler {
	if logger == nil {
		logger = logging.GetDefault()
	}
	return &Ruler{logger: logger}
}

// Apply runs the pipeline for opts. It returns an error only for failures that
// stop the run before anything is written: a missing rules directory, an
// invalid project configuration or unknown agent names. Failures of
// individual agents are recorded in the Report.
func (r *Ruler) Apply(opts config.ApplyOptions) (*Report, error) {
	start := time.Now()
	defer r.logger.LogPerformance("apply", start)

	root, err := absRoot(opts.ProjectRoot)
	if err != nil {
		return nil, err
	}
	report := &Report{ProjectRoot: root}

	rulesDir := config.RulesDir(root)
	if info, err := os.Stat(rulesDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s (run 'ruler init' first)", ErrRulesDirNotFound, rulesDir)
	}

	cfgPath := opts.ConfigPath
	if cfgPath == "" {
		cfgPath = config.DefaultConfigPath(root)
	}
	cfg, err := config.Load(cfgPath, r.logger)
	if err != nil {
		return nil, err
	}
	resolver := config.NewResolver(cfg, opts, root)

	targets, err := agents.Resolve(resolver.TargetNames())
	if err != nil {
		return nil, err
	}
	var enabled []agents.Definition
	for _, def := range targets {
		if resolver.AgentEnabled(def.Name) {
			enabled = append(enabled, def)
		} else {
			r.logger.Debug("Agent disabled by configuration", "agent", def.Name)
		}
	}
	if len(enabled) == 0 {
		report.Notice = NoticeNoAgents
		return report, nil
	}
	r.logger.Debug("Target agents", "agents", names(enabled))

	content, fragments, err := rules.Aggregate(root, rulesDir, r.logger)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		report.Notice = NoticeNoRules
		return report, nil
	}
	r.logger.Debug("Aggregated rules", "fragments", len(fragments), "bytes", len(content))

	m := materialize.New(r.logger)
	for _, def := range enabled {
		res := m.Materialize(def, resolver.InstructionsPath(def), resolver.ConfigPath(def), content)
		if res.Err != nil {
			r.logger.Warn("Failed to apply rules", "agent", def.DisplayName, "error", res.Err)
		}
		report.Results = append(report.Results, AgentResult{
			Agent: def,
			Paths: res.Paths,
			Err:   res.Err,
		})
	}

	if resolver.MCPEnabled() {
		r.propagate(root, resolver, report)
	} else {
		report.MCPSkipped = true
		r.logger.Debug("MCP propagation disabled")
	}

	if resolver.GitignoreEnabled() {
		ignored, err := gitignore.NewManager(root, r.logger).Update(report.WrittenPaths())
		if err != nil {
			r.logger.Warn("Failed to update .gitignore", "error", err)
			report.GitignoreErr = err
		}
		report.IgnoredPaths = ignored
		if err == nil {
			r.verifyIgnored(root, report)
		}
	}

	return report, nil
}

// verifyIgnored checks the written files against the whole .gitignore, since
// a later negation rule can re-include a path listed in the managed block.
func (r *Ruler) verifyIgnored(root string, report *Report) {
	unignored, err := gitignore.Verify(root, report.WrittenPaths())
	if err != nil {
		r.logger.Warn("Could not verify .gitignore", "error", err)
		return
	}
	if len(unignored) > 0 {
		r.logger.Warn("Generated files are not ignored by git", "paths", strings.Join(unignored, ","))
	}
	report.UnignoredPaths = unignored
}

func (r *Ruler) propagate(root string, resolver *config.Resolver, report *Report) {
	canonicalPath := config.CanonicalMCPPath(root)
	doc := mcp.LoadDocument(canonicalPath)
	report.CanonicalMCP = doc.Outcome

	var canonical *mcp.Configuration
	switch doc.Outcome {
	case mcp.Loaded:
		canonical = doc.Config
		issues, err := mcp.Validate(doc.Data)
		if err != nil {
			r.logger.Warn("Could not validate MCP configuration", "path", canonicalPath, "error", err)
		}
		for _, issue := range issues {
			r.logger.Warn("MCP configuration issue", "path", canonicalPath, "issue", issue.String())
		}
		report.MCPIssues = issues
	case mcp.Invalid:
		r.logger.Warn("Failed to load MCP configuration, skipping propagation", "path", canonicalPath, "error", doc.Err)
	case mcp.Missing:
		r.logger.Debug("No MCP configuration found", "path", canonicalPath)
	}

	p := mcp.NewPropagator(root, r.logger)
	for i := range report.Results {
		res := &report.Results[i]
		res.MCP = p.Apply(res.Agent, resolver.AgentMCP(res.Agent), canonical)
		if res.MCP.Outcome == mcp.Failed {
			r.logger.Warn("Failed to apply MCP configuration", "agent", res.Agent.DisplayName, "error", res.MCP.Err)
		}
	}
}

// Init scaffolds the .ruler directory of projectRoot. It never writes agent outputs.
func (r *Ruler) Init(projectRoot string) (config.ScaffoldResult, error) {
	root, err := absRoot(projectRoot)
	if err != nil {
		return config.ScaffoldResult{}, err
	}
	res, err := config.Scaffold(config.RulesDir(root), r.logger)
	if err != nil {
		return res, fmt.Errorf("initialize ruler: %w", err)
	}
	return res, nil
}

// absRoot resolves p against the working directory; "" is the working directory.
func absRoot(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolve project root %q: %w", p, err)
	}
	return abs, nil
}

func names(defs []agents.Definition) string {
	out := make([]string, len(defs))
	for i, def := range defs {
		out[i] = def.Name
	}
	return strings.Join(out, ",")
}
