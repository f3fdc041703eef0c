package cli

import (
	"ruler/internal/mcpserver"

	"github.com/spf13/cobra"
)

func newMCPCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Model Context Protocol commands",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Serve the project rules over MCP on stdin/stdout",
		Long: `Start an MCP server on stdin/stdout. Each rule file is exposed as a tool
that returns its contents; get_instructions and the ruler://instructions
resource return the concatenated document.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := g.root()
			if err != nil {
				return err
			}
			mcpserver.Version = g.version
			return mcpserver.NewServer(root, g.logger).Start()
		},
	})
	return cmd
}
