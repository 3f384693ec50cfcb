package models

import (
	"testing"
	"time"
)

func TestNewHistoryEntry(t *testing.T) {
	resp := &SessionResponse{
		Results: []AnalysisResult{
			{ID: 1, Filename: "a.png"},
			{ID: 2, Filename: "b.png"},
		},
		ExcelReportURL: "http://svc/reports/a.xlsx",
		PDFReportURL:   "http://svc/reports/a.pdf",
	}
	now := time.Date(2026, 10, 19, 12, 0, 0, 123456789, time.UTC)

	entry := NewHistoryEntry(resp, 3, now)

	if entry.ID == "" {
		t.Fatal("expected an id")
	}
	if entry.FileCount != 3 {
		t.Errorf("Expected fileCount 3, got %d", entry.FileCount)
	}
	if len(entry.Results) != 2 {
		t.Errorf("Expected 2 results, got %d", len(entry.Results))
	}
	if entry.ExcelURL != resp.ExcelReportURL || entry.PDFURL != resp.PDFReportURL {
		t.Errorf("report urls not carried over: %+v", entry)
	}
	if !entry.Timestamp.Equal(now.Truncate(time.Millisecond)) {
		t.Errorf("unexpected timestamp %v", entry.Timestamp)
	}

	// the entry must not alias the response
	resp.Results[0].Filename = "changed.png"
	if entry.Results[0].Filename != "a.png" {
		t.Error("entry results alias the response slice")
	}
}

func TestNewHistoryEntryIDsAreUniqueAndOrdered(t *testing.T) {
	resp := &SessionResponse{}
	prev := ""
	for i := 0; i < 100; i++ {
		entry := NewHistoryEntry(resp, 0, time.Now())
		if entry.ID <= prev {
			t.Fatalf("id %s not greater than previous %s", entry.ID, prev)
		}
		prev = entry.ID
	}
}
