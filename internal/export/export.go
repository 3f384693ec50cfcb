package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"

	"github.com/eggplant-lab/eggplant/internal/models"
)

// Formats supported by Write
var Formats = []string{"yaml", "csv", "parquet"}

// Write encodes entries in the named format. Encoded images are left out of
// every format; only the color analysis is exported.
func Write(w io.Writer, format string, entries []models.HistoryEntry) error {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		return WriteYAML(w, entries)
	case "csv":
		return WriteCSV(w, entries)
	case "parquet":
		return WriteParquet(w, entries)
	default:
		return fmt.Errorf("unsupported format: %s (supported: %s)", format, strings.Join(Formats, ", "))
	}
}

// HistorySpec is the YAML document layout
type HistorySpec struct {
	Exported string          `yaml:"exported"`
	Sessions []SessionRecord `yaml:"sessions"`
}

type SessionRecord struct {
	ID        string         `yaml:"id"`
	Timestamp string         `yaml:"timestamp"`
	FileCount int            `yaml:"filecount"`
	ExcelURL  string         `yaml:"excelurl,omitempty"`
	PDFURL    string         `yaml:"pdfurl,omitempty"`
	Results   []ResultRecord `yaml:"results"`
}

type ResultRecord struct {
	ID          int                `yaml:"id"`
	Filename    string             `yaml:"filename"`
	AvgColor    string             `yaml:"avgcolor"`
	Hex         string             `yaml:"hex"`
	Percentages map[string]float64 `yaml:"percentages"`
}

func WriteYAML(w io.Writer, entries []models.HistoryEntry) error {
	spec := HistorySpec{
		Exported: time.Now().UTC().Format(time.RFC3339),
		Sessions: make([]SessionRecord, 0, len(entries)),
	}

	for _, e := range entries {
		rec := SessionRecord{
			ID:        e.ID,
			Timestamp: e.Timestamp.Format(time.RFC3339),
			FileCount: e.FileCount,
			ExcelURL:  e.ExcelURL,
			PDFURL:    e.PDFURL,
			Results:   make([]ResultRecord, 0, len(e.Results)),
		}
		for _, r := range e.Results {
			pct := make(map[string]float64, len(models.Categories))
			for _, c := range models.Categories {
				pct[c] = r.ColorPercentages.Get(c)
			}
			rec.Results = append(rec.Results, ResultRecord{
				ID:          r.ID,
				Filename:    r.Filename,
				AvgColor:    r.AvgColor.String(),
				Hex:         r.AvgColor.Hex(),
				Percentages: pct,
			})
		}
		spec.Sessions = append(spec.Sessions, rec)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&spec); err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return enc.Close()
}

// Row is one analyzed image of one session, flattened for tabular formats
type Row struct {
	EntryID     string  `parquet:"entry_id"`
	Timestamp   string  `parquet:"timestamp"`
	FileCount   int64   `parquet:"file_count"`
	ResultID    int64   `parquet:"result_id"`
	Filename    string  `parquet:"filename"`
	AvgR        int32   `parquet:"avg_r"`
	AvgG        int32   `parquet:"avg_g"`
	AvgB        int32   `parquet:"avg_b"`
	Black       float64 `parquet:"black"`
	DarkPurple  float64 `parquet:"dark_purple"`
	LightPurple float64 `parquet:"light_purple"`
	Brown       float64 `parquet:"brown"`
}

// Rows flattens entries, newest session first
func Rows(entries []models.HistoryEntry) []Row {
	var rows []Row
	for _, e := range entries {
		for _, r := range e.Results {
			rows = append(rows, Row{
				EntryID:     e.ID,
				Timestamp:   e.Timestamp.Format(time.RFC3339),
				FileCount:   int64(e.FileCount),
				ResultID:    int64(r.ID),
				Filename:    r.Filename,
				AvgR:        int32(r.AvgColor.R),
				AvgG:        int32(r.AvgColor.G),
				AvgB:        int32(r.AvgColor.B),
				Black:       r.ColorPercentages.Black,
				DarkPurple:  r.ColorPercentages.DarkPurple,
				LightPurple: r.ColorPercentages.LightPurple,
				Brown:       r.ColorPercentages.Brown,
			})
		}
	}
	return rows
}

func WriteCSV(w io.Writer, entries []models.HistoryEntry) error {
	writer := csv.NewWriter(w)

	header := []string{"Session", "Timestamp", "Files", "ID", "Filename", "Avg Color"}
	header = append(header, models.Categories...)
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, row := range Rows(entries) {
		record := []string{
			row.EntryID,
			row.Timestamp,
			strconv.FormatInt(row.FileCount, 10),
			strconv.FormatInt(row.ResultID, 10),
			row.Filename,
			fmt.Sprintf("RGB(%d, %d, %d)", row.AvgR, row.AvgG, row.AvgB),
			formatPct(row.Black),
			formatPct(row.DarkPurple),
			formatPct(row.LightPurple),
			formatPct(row.Brown),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func WriteParquet(w io.Writer, entries []models.HistoryEntry) error {
	writer := parquet.NewGenericWriter[Row](w)

	if _, err := writer.Write(Rows(entries)); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

func formatPct(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
