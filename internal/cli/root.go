// Package cli defines the ruler command tree.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"ruler/internal/logging"
	"ruler/internal/ui"

	"github.com/spf13/cobra"
)

// globalOptions holds the persistent flags and the logger built from them.
type globalOptions struct {
	version     string
	projectRoot string
	verbose     bool
	logger      *logging.AppLogger
}

// root returns the absolute project root, defaulting to the working directory.
func (g *globalOptions) root() (string, error) {
	if g.projectRoot == "" {
		return os.Getwd()
	}
	return filepath.Abs(g.projectRoot)
}

// NewRootCmd builds the ruler command tree.
func NewRootCmd(version string) *cobra.Command {
	g := &globalOptions{version: version}

	cmd := &cobra.Command{
		Use:   "ruler",
		Short: "Apply one set of rules to every AI coding agent",
		Long: `ruler keeps the instruction files of AI coding agents in sync.

Rules live as markdown files under .ruler/ in the project root. 'ruler apply'
concatenates them and writes the result to each selected agent's instruction
file, propagates .ruler/mcp.json to agents that read tool-server settings, and
lists the generated files in a managed block of .gitignore.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if os.Getenv("DEBUG") != "" {
				g.logger = logging.NewAppLogger()
				return
			}
			g.logger = logging.NewCLILogger(cmd.ErrOrStderr(), g.verbose)
		},
	}

	cmd.PersistentFlags().StringVar(&g.projectRoot, "project-root", "", "Project root directory (default: current directory)")
	cmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Show debug output")

	cmd.AddCommand(
		newInitCmd(g),
		newEditCmd(g),
		newApplyCmd(g),
		newListCmd(g),
		newPreviewCmd(g),
		newValidateCmd(g),
		newWatchCmd(g),
		newMCPCmd(g),
		newGitignoreCmd(g),
	)
	return cmd
}

// Execute runs the command tree and prints any error to stderr.
func Execute(version string) error {
	if err := NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.ErrorStyle.Render("Error: "+err.Error()))
		return err
	}
	return nil
}
