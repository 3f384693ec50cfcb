package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/eggplant-lab/eggplant/internal/selection"
	"github.com/eggplant-lab/eggplant/internal/session"
)

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "analyze FILE...",
		Short: "Submit images for color analysis",
		Long: `Uploads the given images to the analysis service as one session.

On success the per-image results are printed and the session is added to the
local history (newest first, at most 50 sessions). On failure nothing is
recorded and the command can simply be run again.`,
		Example: `  # Analyze three images
  eggplant analyze a.jpg b.jpg c.png

  # Give up if the service has not answered within two minutes
  eggplant analyze --timeout 2m samples/*.jpg`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := selection.LoadFiles(args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			listener := session.ListenerFunc(func(e session.Event) {
				switch e.Kind {
				case session.EventResultsReady:
					fmt.Fprintf(out, "Session %s: %d images analyzed\n\n", e.Entry.ID, e.Entry.FileCount)
				case session.EventSubmitFailed:
					fmt.Fprintln(cmd.ErrOrStderr(), e.Message)
				}
			})

			orch, err := opts.orchestrator(listener)
			if err != nil {
				return err
			}
			if err := orch.SetSelection(items); err != nil {
				return err
			}

			if timeout == 0 {
				timeout = opts.cfg.TimeoutDuration()
			}
			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			slog.Debug("Using analysis service", "api_url", opts.cfg.APIURL)
			start := time.Now()
			if err := orch.Submit(ctx); err != nil {
				if errors.Is(err, session.ErrEmptySelection) {
					return fmt.Errorf("no images to analyze")
				}
				return err
			}
			slog.Debug("Analysis finished", "duration", time.Since(start))

			view := orch.View()
			printResults(out, view.Results)
			fmt.Fprintln(out)
			printReports(out, view.ExcelURL, view.PDFURL)
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Bound the submission (defaults to the configured timeout, 0 for none)")

	return cmd
}
