package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eggplant-lab/eggplant/internal/reports"
)

func newReportCmd(opts *rootOptions) *cobra.Command {
	var kind string
	var outputDir string

	cmd := &cobra.Command{
		Use:   "report ID",
		Short: "Download the Excel and PDF reports of a session",
		Long: `Downloads the report artifacts the analysis service generated for a
session in the history. Use "latest" for the most recent session.`,
		Example: `  # Both reports of the latest session into the current directory
  eggplant report latest

  # Only the PDF of a given session
  eggplant report 01928c6e-8f2a-7cc1-b3a4-5d2c1e0f9a77 --kind pdf --out ./reports`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds, err := reports.ParseKinds(kind)
			if err != nil {
				return err
			}

			orch, err := opts.orchestrator(nil)
			if err != nil {
				return err
			}

			id := args[0]
			if id == "latest" {
				entries := orch.History()
				if len(entries) == 0 {
					return fmt.Errorf("no history available")
				}
				id = entries[0].ID
			}
			entry, ok := orch.HistoryEntry(id)
			if !ok {
				return fmt.Errorf("session not found: %s", id)
			}

			paths, err := reports.NewDownloader().DownloadEntry(cmd.Context(), entry, kinds, outputDir)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "all", "Report kind: excel, pdf or all")
	cmd.Flags().StringVarP(&outputDir, "out", "o", ".", "Output directory")

	return cmd
}
