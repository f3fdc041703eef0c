package cli

import (
	"ruler/internal/ruler"
	"ruler/internal/ui"

	"github.com/spf13/cobra"
)

func newInitCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the .ruler directory with starter files",
		Long: `Create .ruler/ in the project root with a starter instructions.md,
ruler.toml and mcp.json. Existing files are never overwritten.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := g.root()
			if err != nil {
				return err
			}
			res, err := ruler.New(g.logger).Init(root)
			ui.RenderScaffold(cmd.OutOrStdout(), root, res)
			return err
		},
	}
}
