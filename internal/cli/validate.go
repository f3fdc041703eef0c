package cli

import (
	"fmt"
	"strings"

	"ruler/internal/config"
	"ruler/internal/mcp"
	"ruler/internal/rules"
	"ruler/internal/ui"
	"ruler/pkg/fileops"

	"github.com/spf13/cobra"
)

func newValidateCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check ruler.toml, the rule files and mcp.json",
		Long: `Load .ruler/ruler.toml, report empty rule files and check .ruler/mcp.json
against the tool-server schema, listing each server's command. Exits non-zero when ruler.toml or mcp.json has
problems; empty rule files are only reported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := g.root()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			cfgPath := config.DefaultConfigPath(root)
			if _, err := config.Load(cfgPath, g.logger); err != nil {
				return err
			}
			if fileops.FileExists(cfgPath) {
				fmt.Fprintln(out, ui.SuccessStyle.Render("✓")+" "+config.ConfigFileName)
			} else {
				fmt.Fprintln(out, ui.SubtitleStyle.Render("- no "+config.ConfigFileName))
			}

			if rulesDir := config.RulesDir(root); fileops.DirExists(rulesDir) {
				fragments, err := rules.NewLoader(root, rulesDir, g.logger).Load()
				if err != nil {
					return err
				}
				for _, frag := range fragments {
					if frag.Content == "" {
						fmt.Fprintln(out, ui.WarningStyle.Render("! "+frag.Source+" is empty"))
					}
				}
				fmt.Fprintf(out, "%s %d rule file(s)\n", ui.SuccessStyle.Render("✓"), len(fragments))
			}

			doc := mcp.LoadDocument(config.CanonicalMCPPath(root))
			switch doc.Outcome {
			case mcp.Missing:
				fmt.Fprintln(out, ui.SubtitleStyle.Render("- no "+config.MCPFileName))
				return nil
			case mcp.Invalid:
				return doc.Err
			}

			issues, err := mcp.Validate(doc.Data)
			if err != nil {
				return err
			}
			if len(issues) > 0 {
				ui.RenderIssues(out, issues)
				return fmt.Errorf("%s: %d schema issue(s)", config.MCPFileName, len(issues))
			}
			names := doc.Config.Names()
			fmt.Fprintf(out, "%s %s (%d servers)\n", ui.SuccessStyle.Render("✓"), config.MCPFileName, len(names))
			for _, name := range names {
				spec, err := doc.Config.Server(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "  %s: %s\n", name, strings.Join(append([]string{spec.Command}, spec.Args...), " "))
			}
			return nil
		},
	}
}
