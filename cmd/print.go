package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/eggplant-lab/eggplant/internal/models"
)

const timestampLayout = "2006-01-02 15:04:05"

// swatch renders a small block in the given color. fatih/color drops the
// escape codes when output is not a terminal.
func swatch(c models.Color) string {
	return color.BgRGB(int(c.R), int(c.G), int(c.B)).Sprint("   ")
}

func printResults(w io.Writer, results []models.AnalysisResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFile\tAvg\tBlack\tDark P\tLight P\tBrown")
	for _, r := range results {
		p := r.ColorPercentages
		fmt.Fprintf(tw, "%d\t%s\t%s %s\t%.2f%%\t%.2f%%\t%.2f%%\t%.2f%%\n",
			r.ID, r.Filename, swatch(r.AvgColor), r.AvgColor,
			p.Black, p.DarkPurple, p.LightPurple, p.Brown)
	}
	tw.Flush()
}

func printReports(w io.Writer, excelURL, pdfURL string) {
	if excelURL != "" {
		fmt.Fprintf(w, "Excel report: %s\n", excelURL)
	}
	if pdfURL != "" {
		fmt.Fprintf(w, "PDF report:   %s\n", pdfURL)
	}
}

func printEntrySummary(w io.Writer, e models.HistoryEntry) {
	bold := color.New(color.Bold)
	fmt.Fprintf(w, "%s  %s\n", bold.Sprint(e.ID), e.Timestamp.In(time.Local).Format(timestampLayout))
	fmt.Fprintf(w, "  %d images analyzed\n", e.FileCount)
}

func printEntry(w io.Writer, e models.HistoryEntry) {
	printEntrySummary(w, e)
	printReports(w, e.ExcelURL, e.PDFURL)
	fmt.Fprintln(w)
	printResults(w, e.Results)
}

func printHistory(w io.Writer, entries []models.HistoryEntry, withResults bool) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No history available")
		return
	}

	fmt.Fprintf(w, "%d record(s) found\n\n", len(entries))
	for _, e := range entries {
		if withResults {
			printEntry(w, e)
		} else {
			printEntrySummary(w, e)
			printReports(w, e.ExcelURL, e.PDFURL)
		}
		fmt.Fprintln(w)
	}
}
