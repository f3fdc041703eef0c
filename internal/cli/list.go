package cli

import (
	"encoding/json"
	"fmt"

	"ruler/internal/agents"
	"ruler/internal/config"
	"ruler/internal/ui"

	"github.com/spf13/cobra"
)

// listEntry is one agent in --json output.
type listEntry struct {
	Name         string `json:"name"`
	DisplayName  string `json:"display_name"`
	Instructions string `json:"instructions"`
	Config       string `json:"config,omitempty"`
	MCP          string `json:"mcp,omitempty"`
	Default      bool   `json:"default"`
}

func newListCmd(g *globalOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the supported agents",
		Long: `List every supported agent with its instruction file. Agents marked with
an asterisk are applied when --agents is not given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defaults := defaultAgents(g)
			if !asJSON {
				ui.RenderAgentList(cmd.OutOrStdout(), agents.All(), defaults)
				return nil
			}

			isDefault := make(map[string]bool, len(defaults))
			for _, name := range defaults {
				isDefault[name] = true
			}
			var entries []listEntry
			for _, def := range agents.All() {
				entries = append(entries, listEntry{
					Name:         def.Name,
					DisplayName:  def.DisplayName,
					Instructions: def.OutputPath,
					Config:       def.ConfigPath,
					MCP:          def.MCPPath,
					Default:      isDefault[def.Name],
				})
			}
			data, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return fmt.Errorf("encode agent list: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

// defaultAgents returns the canonical names apply would target without
// --agents. A broken ruler.toml falls back to the built-in defaults.
func defaultAgents(g *globalOptions) []string {
	cfg := config.Default()
	root, err := g.root()
	if err == nil {
		loaded, err := config.Load(config.DefaultConfigPath(root), g.logger)
		if err != nil {
			g.logger.Warn("Using built-in default agents", "error", err)
		} else {
			cfg = loaded
		}
	}

	names := config.NewResolver(cfg, config.ApplyOptions{}, root).TargetNames()
	defs, unknown := agents.LookupMany(names)
	if len(unknown) > 0 {
		g.logger.Warn("Unknown agents in default_agents", "names", unknown)
	}
	out := make([]string, len(defs))
	for i, def := range defs {
		out[i] = def.Name
	}
	return out
}
