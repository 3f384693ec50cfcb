package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/eggplant-lab/eggplant/internal/models"
)

func TestPrintHistoryEmpty(t *testing.T) {
	var buf bytes.Buffer
	printHistory(&buf, nil, false)
	if got := strings.TrimSpace(buf.String()); got != "No history available" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestPrintHistory(t *testing.T) {
	color.NoColor = true

	entries := []models.HistoryEntry{
		{
			ID:        "entry-1",
			Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			ExcelURL:  "http://svc/r.xlsx",
			PDFURL:    "http://svc/r.pdf",
			FileCount: 2,
			Results: []models.AnalysisResult{
				{
					ID:               1,
					Filename:         "a.png",
					AvgColor:         models.Color{R: 60, G: 20, B: 70},
					ColorPercentages: models.Percentages{Black: 10, DarkPurple: 60.5, LightPurple: 20, Brown: 9.5},
				},
			},
		},
	}

	var buf bytes.Buffer
	printHistory(&buf, entries, true)
	out := buf.String()

	for _, want := range []string{
		"1 record(s) found",
		"entry-1",
		"2 images analyzed",
		"Excel report: http://svc/r.xlsx",
		"PDF report:   http://svc/r.pdf",
		"Dark P",
		"a.png",
		"RGB(60, 20, 70)",
		"60.50%",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"maybe\n", false},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		if got := confirm(strings.NewReader(tt.input), &out, "Clear?"); got != tt.want {
			t.Errorf("confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if !strings.Contains(out.String(), "[y/N]") {
			t.Errorf("prompt missing default hint: %q", out.String())
		}
	}
}
