package reports

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// PageCount reads the page count of a downloaded PDF report
func PageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open report: %w", err)
	}
	defer f.Close()

	count, err := api.PageCount(f, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to read PDF page count: %w", err)
	}
	return count, nil
}

// inspectPDF logs the page count of a PDF report. A report pdfcpu cannot
// parse is kept; only a warning is logged.
func inspectPDF(path string) {
	count, err := PageCount(path)
	if err != nil {
		slog.Warn("Downloaded PDF report could not be inspected", "path", path, "err", err)
		return
	}
	slog.Info("PDF report pages", "path", path, "pages", count)
}
