package models

import (
	"time"

	"github.com/google/uuid"
)

// Color categories reported by the analysis service
const (
	CategoryBlack       = "Black"
	CategoryDarkPurple  = "Dark Purple"
	CategoryLightPurple = "Light Purple"
	CategoryBrown       = "Brown"
)

// Categories lists the color categories in display order
var Categories = []string{CategoryBlack, CategoryDarkPurple, CategoryLightPurple, CategoryBrown}

// Percentages holds the share of each color category in one image.
// The fields are independent and are not required to sum to 100.
type Percentages struct {
	Black       float64 `json:"Black"`
	DarkPurple  float64 `json:"Dark Purple"`
	LightPurple float64 `json:"Light Purple"`
	Brown       float64 `json:"Brown"`
}

// Get returns the percentage for a category name
func (p Percentages) Get(category string) float64 {
	switch category {
	case CategoryBlack:
		return p.Black
	case CategoryDarkPurple:
		return p.DarkPurple
	case CategoryLightPurple:
		return p.LightPurple
	case CategoryBrown:
		return p.Brown
	default:
		return 0
	}
}

// AnalysisResult is the service's analysis of one submitted image
type AnalysisResult struct {
	ID               int         `json:"id"`
	Filename         string      `json:"filename"`
	OriginalImage    string      `json:"original_image"`  // base64 PNG
	ProcessedImage   string      `json:"processed_image"` // base64 PNG
	AvgColor         Color       `json:"avg_color"`
	ColorPercentages Percentages `json:"color_percentages"`
}

// SessionResponse is the normalized outcome of one upload
type SessionResponse struct {
	Results        []AnalysisResult `json:"results"`
	ExcelReportURL string           `json:"excel_url"`
	PDFReportURL   string           `json:"pdf_url"`
}

// HistoryEntry records one successfully completed session
type HistoryEntry struct {
	ID        string           `json:"id"`
	Timestamp time.Time        `json:"timestamp"`
	Results   []AnalysisResult `json:"results"`
	ExcelURL  string           `json:"excelUrl"`
	PDFURL    string           `json:"pdfUrl"`
	FileCount int              `json:"fileCount"`
}

// NewHistoryEntry builds an entry for a completed session. fileCount is the
// number of submitted files and may differ from len(resp.Results).
func NewHistoryEntry(resp *SessionResponse, fileCount int, now time.Time) HistoryEntry {
	results := make([]AnalysisResult, len(resp.Results))
	copy(results, resp.Results)

	return HistoryEntry{
		ID:        newEntryID(),
		Timestamp: now.UTC().Truncate(time.Millisecond),
		Results:   results,
		ExcelURL:  resp.ExcelReportURL,
		PDFURL:    resp.PDFReportURL,
		FileCount: fileCount,
	}
}

// UUIDv7 ids sort by creation time
func newEntryID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
