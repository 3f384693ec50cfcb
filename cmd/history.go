package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eggplant-lab/eggplant/internal/export"
	"github.com/eggplant-lab/eggplant/internal/session"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse the local analysis history",
		Long: `The history holds the 50 most recent successful analysis sessions,
newest first. It survives restarts and is only removed by "history clear".`,
	}

	cmd.AddCommand(newHistoryListCmd(opts))
	cmd.AddCommand(newHistoryShowCmd(opts))
	cmd.AddCommand(newHistoryClearCmd(opts))
	cmd.AddCommand(newHistoryExportCmd(opts))

	return cmd
}

func newHistoryListCmd(opts *rootOptions) *cobra.Command {
	var withResults bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List past analysis sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := opts.orchestrator(nil)
			if err != nil {
				return err
			}
			printHistory(cmd.OutOrStdout(), orch.History(), withResults)
			return nil
		},
	}

	cmd.Flags().BoolVar(&withResults, "results", false, "Include the per-image results of each session")

	return cmd
}

func newHistoryShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one analysis session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := opts.orchestrator(nil)
			if err != nil {
				return err
			}
			entry, ok := orch.HistoryEntry(args[0])
			if !ok {
				return fmt.Errorf("session not found: %s", args[0])
			}
			printEntry(cmd.OutOrStdout(), entry)
			return nil
		},
	}
}

func newHistoryClearCmd(opts *rootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every session from the history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			orch, err := opts.orchestrator(session.ListenerFunc(func(e session.Event) {
				if e.Kind == session.EventHistoryCleared {
					fmt.Fprintln(out, "History cleared")
				}
			}))
			if err != nil {
				return err
			}

			cleared := orch.ClearHistory(func() bool {
				return yes || confirm(cmd.InOrStdin(), out, "Clear all analysis history?")
			})
			if !cleared {
				fmt.Fprintln(out, "History kept")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Clear without asking for confirmation")

	return cmd
}

func newHistoryExportCmd(opts *rootOptions) *cobra.Command {
	var format string
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the history as YAML, CSV or Parquet",
		Long: `Writes every history session to a file or stdout. CSV and Parquet produce
one row per analyzed image; YAML keeps the session structure. Image data is
never exported.`,
		Example: `  # YAML to stdout
  eggplant history export

  # One row per image for spreadsheets or data tools
  eggplant history export --format parquet --output history.parquet`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := opts.orchestrator(nil)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer f.Close()
				w = f
			}

			if err := export.Write(w, format, orch.History()); err != nil {
				return err
			}
			if output != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "History exported to %s\n", output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format: "+strings.Join(export.Formats, ", "))
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (defaults to stdout)")

	return cmd
}

// confirm asks a yes/no question, defaulting to no
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
