package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"

	"github.com/eggplant-lab/eggplant/internal/models"
)

func sampleEntries() []models.HistoryEntry {
	return []models.HistoryEntry{
		{
			ID:        "second",
			Timestamp: time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC),
			FileCount: 3,
			ExcelURL:  "http://svc/2.xlsx",
			PDFURL:    "http://svc/2.pdf",
			Results: []models.AnalysisResult{
				{
					ID:               1,
					Filename:         "a.png",
					OriginalImage:    "huge-base64",
					AvgColor:         models.Color{R: 75, G: 0, B: 130},
					ColorPercentages: models.Percentages{Black: 10, DarkPurple: 50.5, LightPurple: 30, Brown: 9.5},
				},
				{ID: 2, Filename: "b.png"},
			},
		},
		{
			ID:        "first",
			Timestamp: time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC),
			FileCount: 1,
			Results:   []models.AnalysisResult{{ID: 1, Filename: "c.png"}},
		},
	}
}

func TestRows(t *testing.T) {
	rows := Rows(sampleEntries())
	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}
	if rows[0].EntryID != "second" || rows[2].EntryID != "first" {
		t.Errorf("rows out of order: %+v", rows)
	}
	if rows[0].AvgR != 75 || rows[0].AvgB != 130 || rows[0].DarkPurple != 50.5 {
		t.Errorf("unexpected first row %+v", rows[0])
	}
	if rows[1].FileCount != 3 {
		t.Errorf("Expected file count 3, got %d", rows[1].FileCount)
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, "yaml", sampleEntries()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if strings.Contains(buf.String(), "huge-base64") {
		t.Error("encoded images leaked into export")
	}

	var spec HistorySpec
	if err := yaml.Unmarshal(buf.Bytes(), &spec); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if len(spec.Sessions) != 2 {
		t.Fatalf("Expected 2 sessions, got %d", len(spec.Sessions))
	}
	r := spec.Sessions[0].Results[0]
	if r.Hex != "#4b0082" || r.AvgColor != "RGB(75, 0, 130)" {
		t.Errorf("unexpected color fields %+v", r)
	}
	if r.Percentages[models.CategoryDarkPurple] != 50.5 {
		t.Errorf("unexpected percentages %+v", r.Percentages)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, "csv", sampleEntries()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("Expected header + 3 rows, got %d", len(records))
	}
	if records[0][6] != "Black" || records[0][7] != "Dark Purple" {
		t.Errorf("unexpected header %v", records[0])
	}
	if records[1][5] != "RGB(75, 0, 130)" || records[1][7] != "50.5" {
		t.Errorf("unexpected first row %v", records[1])
	}
}

func TestWriteParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.parquet")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := Write(f, "parquet", sampleEntries()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	f.Close()

	file, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	info, _ := file.Stat()

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		t.Fatalf("failed to open parquet: %v", err)
	}
	if pf.NumRows() != 3 {
		t.Fatalf("Expected 3 rows, got %d", pf.NumRows())
	}

	reader := parquet.NewGenericReader[Row](pf)
	defer reader.Close()
	rows := make([]Row, 3)
	n, _ := reader.Read(rows)
	if n != 3 {
		t.Fatalf("Expected to read 3 rows, got %d", n)
	}
	if rows[0].Filename != "a.png" || rows[0].AvgG != 0 || rows[0].Brown != 9.5 {
		t.Errorf("unexpected first row %+v", rows[0])
	}
}

func TestWriteUnsupported(t *testing.T) {
	if err := Write(&bytes.Buffer{}, "xml", nil); err == nil {
		t.Error("Expected error for unsupported format")
	}
}
