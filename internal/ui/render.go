// Package ui renders command results for the terminal.
package ui

import (
	"fmt"
	"io"
	"strings"

	"ruler/internal/agents"
	"ruler/internal/config"
	"ruler/internal/mcp"
	"ruler/internal/ruler"
	"ruler/pkg/fileops"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
)

const (
	successMark = "✓"
	failureMark = "✗"
	warningMark = "!"
)

// display shortens path to its project-relative form when it is inside root.
func display(root, path string) string {
	if rel, ok := fileops.RelativeSlashPath(root, path); ok {
		return rel
	}
	return path
}

func items(lines []string) string {
	return ItemContainerStyle.Render(strings.Join(lines, "\n"))
}

// RenderAgentList writes the agent catalog. Agents in defaults are marked
// with an asterisk.
func RenderAgentList(w io.Writer, defs []agents.Definition, defaults []string) {
	isDefault := make(map[string]bool, len(defaults))
	for _, name := range defaults {
		isDefault[name] = true
	}

	width := 0
	for _, def := range defs {
		width = max(width, len(def.Name))
	}

	lines := make([]string, 0, len(defs))
	for _, def := range defs {
		marker := " "
		if isDefault[def.Name] {
			marker = "*"
		}
		var badges []string
		if def.SupportsMCP {
			badges = append(badges, BadgeStyle.Render("[mcp]"))
		}
		if def.SupportsConfig {
			badges = append(badges, BadgeStyle.Render("[config]"))
		}
		line := fmt.Sprintf("%s %-*s  %-20s %s", marker, width, def.Name, def.DisplayName, PathStyle.Render(def.OutputPath))
		if len(badges) > 0 {
			line += " " + strings.Join(badges, " ")
		}
		lines = append(lines, line)
	}

	fmt.Fprintln(w, TitleStyle.Render("Agents"))
	fmt.Fprintln(w, items(lines))
	fmt.Fprintln(w, HelpStyle.Render("* applied when no agents are selected"))
}

// RenderScaffold writes the outcome of init.
func RenderScaffold(w io.Writer, root string, res config.ScaffoldResult) {
	var lines []string
	for _, path := range res.Created {
		lines = append(lines, SuccessStyle.Render(successMark)+" created "+PathStyle.Render(display(root, path)))
	}
	for _, path := range res.Skipped {
		lines = append(lines, SubtitleStyle.Render("- kept existing "+display(root, path)))
	}
	fmt.Fprintln(w, TitleStyle.Render("Initialized "+config.RulesDirName))
	if len(lines) > 0 {
		fmt.Fprintln(w, items(lines))
	}
}

// RenderIssues writes tool-server schema violations.
func RenderIssues(w io.Writer, issues []mcp.Issue) {
	if len(issues) == 0 {
		return
	}
	lines := make([]string, len(issues))
	for i, issue := range issues {
		lines[i] = WarningStyle.Render(warningMark) + " " + issue.String()
	}
	fmt.Fprintln(w, WarningStyle.Render(fmt.Sprintf("%s has %d schema issue(s)", config.MCPFileName, len(issues))))
	fmt.Fprintln(w, items(lines))
}

// RenderReport writes the summary of an apply run.
func RenderReport(w io.Writer, report *ruler.Report) {
	if report.Notice != "" {
		fmt.Fprintln(w, WarningStyle.Render(report.Notice))
		return
	}
	root := report.ProjectRoot

	var lines []string
	for _, res := range report.Results {
		if res.Failed() {
			for _, err := range res.Errors() {
				lines = append(lines, ErrorStyle.Render(failureMark)+" "+res.Agent.DisplayName+": "+err.Error())
			}
			continue
		}
		paths := make([]string, len(res.Paths))
		for i, p := range res.Paths {
			paths[i] = PathStyle.Render(display(root, p))
		}
		line := SuccessStyle.Render(successMark) + " " + res.Agent.DisplayName + " → " + strings.Join(paths, ", ")
		if res.MCP.Outcome == mcp.Applied {
			line += " " + BadgeStyle.Render("[mcp: "+display(root, res.MCP.Path)+"]")
		}
		lines = append(lines, line)
	}
	fmt.Fprintln(w, TitleStyle.Render("Applied rules"))
	fmt.Fprintln(w, items(lines))

	switch {
	case report.MCPSkipped:
		fmt.Fprintln(w, SubtitleStyle.Render("MCP propagation disabled"))
	case report.CanonicalMCP == mcp.Invalid:
		fmt.Fprintln(w, WarningStyle.Render(warningMark+" "+config.MCPFileName+" could not be read; tool servers were not propagated"))
	}
	RenderIssues(w, report.MCPIssues)

	switch {
	case report.GitignoreErr != nil:
		fmt.Fprintln(w, WarningStyle.Render(warningMark+" .gitignore not updated: "+report.GitignoreErr.Error()))
	case len(report.IgnoredPaths) > 0:
		fmt.Fprintln(w, SubtitleStyle.Render(fmt.Sprintf("Updated .gitignore (%d paths)", len(report.IgnoredPaths))))
	}
	if len(report.UnignoredPaths) > 0 {
		fmt.Fprintln(w, WarningStyle.Render(warningMark+" still tracked by git: "+strings.Join(report.UnignoredPaths, ", ")))
	}

	succeeded, failed := len(report.Succeeded()), len(report.Failed())
	summary := fmt.Sprintf("%d agent(s) updated", succeeded)
	if failed > 0 {
		summary += fmt.Sprintf(", %d failed", failed)
		fmt.Fprintln(w, ErrorStyle.Render(summary))
		return
	}
	fmt.Fprintln(w, SuccessStyle.Render(summary))
}

// RenderMarkdown renders a markdown document for the terminal. plain selects
// a style without colors, for output that is not a terminal.
func RenderMarkdown(content string, width int, plain bool) (string, error) {
	style := glamour.WithAutoStyle()
	if plain {
		style = glamour.WithStandardStyle(styles.NoTTYStyle)
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := r.Render(content)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}
