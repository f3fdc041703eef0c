package cli

import (
	"fmt"
	"path/filepath"

	"ruler/internal/config"
	"ruler/internal/editor"
	"ruler/internal/rules"
	"ruler/pkg/fileops"

	"github.com/spf13/cobra"
)

func newEditCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "edit [file]",
		Short: "Open a rule file in $EDITOR",
		Long: `Open a file under .ruler/ in $VISUAL or $EDITOR. The file defaults to
instructions.md and is created by the editor if it does not exist.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := g.root()
			if err != nil {
				return err
			}
			path, err := ruleFilePath(config.RulesDir(root), args)
			if err != nil {
				return err
			}
			g.logger.Debug("Opening rule file", "path", path)
			return editor.EditFile(path)
		},
	}
}

// ruleFilePath resolves the edit target inside rulesDir.
func ruleFilePath(rulesDir string, args []string) (string, error) {
	if !fileops.DirExists(rulesDir) {
		return "", fmt.Errorf("%w: %s (run 'ruler init' first)", rules.ErrRulesDirNotFound, rulesDir)
	}
	name := "instructions.md"
	if len(args) > 0 {
		name = args[0]
	}
	path := filepath.Join(rulesDir, filepath.FromSlash(name))
	if _, ok := fileops.RelativeSlashPath(rulesDir, path); !ok || path == rulesDir {
		return "", fmt.Errorf("%s is outside %s", name, config.RulesDirName)
	}
	return path, nil
}
