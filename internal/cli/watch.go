package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ruler/internal/config"
	"ruler/internal/ruler"
	"ruler/internal/ui"
	"ruler/internal/watch"

	"github.com/spf13/cobra"
)

func newWatchCmd(g *globalOptions) *cobra.Command {
	f := &applyFlags{}
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-apply the rules whenever .ruler changes",
		Long: `Run apply once, then again after every change under .ruler/ until
interrupted. Accepts the same flags as apply.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := f.options(cmd, g)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			r := ruler.New(g.logger)
			run := func() error {
				report, err := r.Apply(opts)
				if err != nil {
					return err
				}
				ui.RenderReport(out, report)
				return nil
			}
			if err := run(); err != nil {
				return err
			}

			w, err := watch.New(config.RulesDir(opts.ProjectRoot), watch.Options{
				Debounce: debounce,
				Filter:   watch.RuleFiles,
			}, g.logger)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ui.HelpStyle.Render("Watching "+config.RulesDirName+" for changes (Ctrl+C to stop)"))

			return w.Run(ctx, func(_ context.Context, changed []string) {
				g.logger.Info("Rules changed", "files", len(changed))
				if err := run(); err != nil {
					g.logger.Error("Apply failed", "error", err)
				}
			})
		},
	}
	f.register(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Quiet period before re-applying")
	return cmd
}
