package cli

import (
	"fmt"
	"io"
	"os"

	"ruler/internal/config"
	"ruler/internal/rules"
	"ruler/internal/ruler"
	"ruler/internal/ui"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

func newPreviewCmd(g *globalOptions) *cobra.Command {
	var (
		raw   bool
		width int
	)
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show the document apply would write",
		Long: `Concatenate the rule files under .ruler/ and print the result without
writing anything. Output to a terminal is rendered as markdown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := g.root()
			if err != nil {
				return err
			}
			document, fragments, err := rules.Aggregate(root, config.RulesDir(root), g.logger)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if document == "" {
				fmt.Fprintln(out, ui.WarningStyle.Render(ruler.NoticeNoRules))
				return nil
			}
			g.logger.Debug("Previewing rules", "fragments", len(fragments))

			if raw {
				fmt.Fprintln(out, document)
				return nil
			}
			rendered, err := ui.RenderMarkdown(document, width, !isTerminal(out))
			if err != nil {
				return err
			}
			fmt.Fprint(out, rendered)
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the markdown source")
	cmd.Flags().IntVar(&width, "width", 100, "Wrap rendered output at this width")
	return cmd
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
