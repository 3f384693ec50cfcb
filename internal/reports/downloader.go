package reports

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/eggplant-lab/eggplant/internal/models"
)

// Kind names a report artifact generated by the analysis service
type Kind string

const (
	KindExcel Kind = "excel"
	KindPDF   Kind = "pdf"
)

// ParseKinds maps a --kind flag value to the kinds to download
func ParseKinds(s string) ([]Kind, error) {
	switch strings.ToLower(s) {
	case "excel", "xlsx":
		return []Kind{KindExcel}, nil
	case "pdf":
		return []Kind{KindPDF}, nil
	case "all", "":
		return []Kind{KindExcel, KindPDF}, nil
	default:
		return nil, fmt.Errorf("unsupported report kind: %s (supported: excel, pdf, all)", s)
	}
}

func (k Kind) defaultExt() string {
	if k == KindExcel {
		return ".xlsx"
	}
	return ".pdf"
}

// URL returns the locator for kind recorded on a history entry
func URL(entry models.HistoryEntry, kind Kind) string {
	if kind == KindExcel {
		return entry.ExcelURL
	}
	return entry.PDFURL
}

// Downloader retrieves report artifacts
type Downloader struct {
	HTTPClient *http.Client
}

// NewDownloader creates a downloader with a per-request timeout
func NewDownloader() *Downloader {
	return &Downloader{
		HTTPClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// DownloadEntry fetches the requested artifacts of one session into
// outputDir concurrently and returns the written paths in kind order.
func (d *Downloader) DownloadEntry(ctx context.Context, entry models.HistoryEntry, kinds []Kind, outputDir string) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, kind := range kinds {
		if URL(entry, kind) == "" {
			return nil, fmt.Errorf("session %s has no %s report", entry.ID, kind)
		}
	}

	paths := make([]string, len(kinds))
	g, ctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		reportURL := URL(entry, kind)
		g.Go(func() error {
			fallback := fmt.Sprintf("%s_report%s", shortID(entry.ID), kind.defaultExt())
			p, err := d.Download(ctx, reportURL, outputDir, fallback)
			if err != nil {
				return fmt.Errorf("%s report: %w", kind, err)
			}
			if kind == KindPDF {
				inspectPDF(p)
			}
			paths[i] = p
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

// Download saves the artifact at reportURL into outputDir and returns the
// written path. The file name comes from Content-Disposition, then the URL
// path, then fallback.
func (d *Downloader) Download(ctx context.Context, reportURL, outputDir, fallback string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", reportURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := d.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch report: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("report URL returned status %d", resp.StatusCode)
	}

	name := fileName(resp.Header.Get("Content-Disposition"), reportURL, fallback)
	outputPath := filepath.Join(outputDir, name)

	f, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	n, err := io.Copy(f, resp.Body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(outputPath)
		return "", fmt.Errorf("failed to write report file: %w", err)
	}

	slog.Info("Downloaded report", "url", reportURL, "path", outputPath, "bytes", n)
	return outputPath, nil
}

func fileName(disposition, reportURL, fallback string) string {
	if _, params, err := mime.ParseMediaType(disposition); err == nil {
		if name := sanitize(params["filename"]); name != "" {
			return name
		}
	}
	if u, err := url.Parse(reportURL); err == nil {
		if name := sanitize(path.Base(u.Path)); name != "" && strings.Contains(name, ".") {
			return name
		}
	}
	return fallback
}

// sanitize strips directories so a server supplied name cannot escape outputDir
func sanitize(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return name
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
