package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/eggplant-lab/eggplant/internal/handlers"
	"github.com/eggplant-lab/eggplant/internal/session"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis session over a local HTTP API",
		Long: `Starts a local HTTP API on the specified port that drives one analysis
session: select images, submit them, poll state and browse the history.

Routes:
  POST|GET|DELETE /api/selection   choose images (multipart field "files")
  POST            /api/upload      submit the selection
  GET             /api/state       current session view
  GET|DELETE      /api/history     list or clear (?confirm=true) the history
  GET             /api/history/ID  one history session`,
		Example: `  # Start server on default port 8888
  eggplant serve

  # Start server on custom port, logging to a rotating file
  eggplant serve --port 3000 --log-file /var/log/eggplant.log`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			listener := session.ListenerFunc(func(e session.Event) {
				switch e.Kind {
				case session.EventResultsReady:
					slog.Info("Results ready", "entry_id", e.Entry.ID, "results", e.Entry.ResultCount, "files", e.Entry.FileCount)
				case session.EventSubmitFailed:
					slog.Warn("Submission failed", "notice", e.Message, "err", e.Err)
				case session.EventHistoryCleared:
					slog.Info("History cleared")
				}
			})

			orch, err := opts.orchestrator(listener)
			if err != nil {
				return err
			}

			mux := http.NewServeMux()
			handlers.New(orch, handlers.WithSubmitTimeout(opts.cfg.TimeoutDuration())).Routes(mux)

			addr := ":" + port
			server := &http.Server{
				Addr:    addr,
				Handler: mux,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Eggplant API available", "addr", addr, "url", "http://localhost"+addr, "api_url", opts.cfg.APIURL)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")

	return cmd
}
