package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/eggplant-lab/eggplant/internal/models"
	"github.com/eggplant-lab/eggplant/internal/selection"
)

// DefaultBaseURL is the hosted analysis service
const DefaultBaseURL = "https://eggplant-server.onrender.com"

const (
	uploadPath = "/api/upload"
	fieldName  = "files"
)

// ErrUploadFailed covers every way a submission can fail: network errors,
// non-success statuses and unreadable response bodies.
var ErrUploadFailed = errors.New("upload failed")

// Client talks to the analysis service
type Client struct {
	BaseURL    string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New returns a client for the service at baseURL. The client sets no
// timeout of its own; bound latency through the context passed to Submit.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type rawResponse struct {
	Results  []models.AnalysisResult `json:"results"`
	ExcelURL string                  `json:"excel_url"`
	PDFURL   string                  `json:"pdf_url"`
}

// Submit uploads every item in one multipart request and returns the
// normalized response. All failures wrap ErrUploadFailed.
func (c *Client) Submit(ctx context.Context, items []selection.Item) (*models.SessionResponse, error) {
	body, contentType, err := encodeItems(items)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode request: %v", ErrUploadFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+uploadPath, body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrUploadFailed, err)
	}
	req.Header.Set("Content-Type", contentType)

	slog.Debug("Submitting images", "url", req.URL.String(), "files", len(items))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to send request: %v", ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: received status code %d - %s", ErrUploadFailed, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var raw rawResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response body: %v", ErrUploadFailed, err)
	}
	if raw.Results == nil {
		return nil, fmt.Errorf("%w: response body has no results", ErrUploadFailed)
	}

	return &models.SessionResponse{
		Results:        raw.Results,
		ExcelReportURL: c.resolve(raw.ExcelURL),
		PDFReportURL:   c.resolve(raw.PDFURL),
	}, nil
}

// resolve joins a report path returned by the service onto the base address
func (c *Client) resolve(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.BaseURL + path
}

func encodeItems(items []selection.Item) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, item := range items {
		part, err := w.CreateFormFile(fieldName, item.Name)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(item.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
