package cli

import (
	"fmt"

	"ruler/internal/gitignore"
	"ruler/internal/ui"

	"github.com/spf13/cobra"
)

func newGitignoreCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gitignore",
		Short: "Manage the ruler block in .gitignore",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "remove",
		Short: "Remove the ruler block from .gitignore",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := g.root()
			if err != nil {
				return err
			}
			removed, err := gitignore.NewManager(root, g.logger).Remove()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !removed {
				fmt.Fprintln(out, ui.SubtitleStyle.Render("No ruler block in "+gitignore.FileName))
				return nil
			}
			fmt.Fprintln(out, ui.SuccessStyle.Render("✓")+" removed ruler block from "+gitignore.FileName)
			return nil
		},
	})
	return cmd
}
