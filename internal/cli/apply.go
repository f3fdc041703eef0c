package cli

import (
	"path/filepath"
	"strings"

	"ruler/internal/config"
	"ruler/internal/ruler"
	"ruler/internal/ui"

	"github.com/spf13/cobra"
)

// applyFlags are shared by apply and watch.
type applyFlags struct {
	agents       []string
	configPath   string
	mcp          bool
	noMCP        bool
	mcpOverwrite bool
	gitignore    bool
	noGitignore  bool
}

func (f *applyFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringSliceVar(&f.agents, "agents", nil, "Comma-separated agents to apply (default: default_agents from ruler.toml)")
	flags.StringVar(&f.configPath, "config", "", "Path to ruler.toml (default: .ruler/ruler.toml)")
	flags.BoolVar(&f.mcp, "mcp", true, "Propagate .ruler/mcp.json to agents")
	flags.BoolVar(&f.noMCP, "no-mcp", false, "Do not propagate .ruler/mcp.json")
	flags.BoolVar(&f.mcpOverwrite, "mcp-overwrite", false, "Replace native tool-server settings instead of merging")
	flags.BoolVar(&f.gitignore, "gitignore", true, "Record generated files in .gitignore")
	flags.BoolVar(&f.noGitignore, "no-gitignore", false, "Leave .gitignore untouched")
	cmd.MarkFlagsMutuallyExclusive("mcp", "no-mcp")
	cmd.MarkFlagsMutuallyExclusive("gitignore", "no-gitignore")
}

// options converts the parsed flags. Flags the user did not pass stay unset so
// ruler.toml can decide.
func (f *applyFlags) options(cmd *cobra.Command, g *globalOptions) (config.ApplyOptions, error) {
	root, err := g.root()
	if err != nil {
		return config.ApplyOptions{}, err
	}
	opts := config.ApplyOptions{
		ProjectRoot:  root,
		Agents:       agentNames(f.agents),
		MCP:          tristate(cmd, "mcp", "no-mcp"),
		MCPOverwrite: f.mcpOverwrite,
		Gitignore:    tristate(cmd, "gitignore", "no-gitignore"),
		Verbose:      g.verbose,
	}
	if f.configPath != "" {
		if opts.ConfigPath, err = filepath.Abs(f.configPath); err != nil {
			return config.ApplyOptions{}, err
		}
	}
	return opts, nil
}

// tristate reads a --flag/--no-flag pair. It returns nil when neither was given.
func tristate(cmd *cobra.Command, on, off string) *bool {
	flags := cmd.Flags()
	switch {
	case flags.Changed(off):
		v, _ := flags.GetBool(off)
		v = !v
		return &v
	case flags.Changed(on):
		v, _ := flags.GetBool(on)
		return &v
	}
	return nil
}

func agentNames(raw []string) []string {
	var names []string
	for _, name := range raw {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func newApplyCmd(g *globalOptions) *cobra.Command {
	f := &applyFlags{}
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Write the rules to every selected agent",
		Long: `Concatenate the markdown files under .ruler/ and write the result to the
instruction file of each selected agent.

Agents are taken from --agents, then default_agents in ruler.toml, then the
built-in defaults. A failure for one agent does not stop the others.`,
		Example: `  ruler apply
  ruler apply --agents claude,cursor
  ruler apply --no-mcp --no-gitignore`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := f.options(cmd, g)
			if err != nil {
				return err
			}
			report, err := ruler.New(g.logger).Apply(opts)
			if err != nil {
				return err
			}
			ui.RenderReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}
