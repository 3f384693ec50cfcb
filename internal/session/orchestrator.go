package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/eggplant-lab/eggplant/internal/models"
	"github.com/eggplant-lab/eggplant/internal/selection"
	"github.com/eggplant-lab/eggplant/internal/storage"
)

var (
	// ErrBusy is returned when a submission is already in flight. The call
	// is a no-op.
	ErrBusy = errors.New("a submission is already in progress")
	// ErrEmptySelection is returned by Submit when nothing is selected
	ErrEmptySelection = errors.New("no files selected")
)

// FailureNotice is the user-facing text shown after a failed submission
const FailureNotice = "Error processing images. Please try again."

// Uploader submits a batch of images to the analysis service
type Uploader interface {
	Submit(ctx context.Context, items []selection.Item) (*models.SessionResponse, error)
}

// View is the state the presentation layer renders
type View struct {
	State     State                   `json:"state"`
	Loading   bool                    `json:"loading"`
	Selection []string                `json:"selection"`
	Results   []models.AnalysisResult `json:"results"`
	ExcelURL  string                  `json:"excel_url,omitempty"`
	PDFURL    string                  `json:"pdf_url,omitempty"`
	Notice    string                  `json:"notice,omitempty"`
}

// Orchestrator owns one upload-and-analyze lifecycle: it moves the selection
// through the upload client and records successful sessions in the history
// store. At most one submission is in flight at a time.
type Orchestrator struct {
	buffer   *selection.Buffer
	uploader Uploader
	history  *storage.HistoryStore
	listener Listener
	now      func() time.Time

	state   State
	current *models.SessionResponse
	notice  string
	mu      sync.Mutex
}

type Option func(*Orchestrator)

// WithListener registers the presentation layer's event listener
func WithListener(l Listener) Option {
	return func(o *Orchestrator) {
		o.listener = l
	}
}

// WithClock overrides time.Now for history timestamps
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

func New(buffer *selection.Buffer, uploader Uploader, history *storage.HistoryStore, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		buffer:   buffer,
		uploader: uploader,
		history:  history,
		now:      time.Now,
		state:    Idle,
	}
	if buffer.Len() > 0 {
		o.state = Selected
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// SetSelection replaces the selected files. It is rejected while a
// submission is in flight so the in-flight file count stays accurate.
func (o *Orchestrator) SetSelection(items []selection.Item) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state == Submitting {
		return ErrBusy
	}

	o.buffer.Set(items)
	o.notice = ""
	if len(items) == 0 {
		o.state = Idle
	} else {
		o.state = Selected
	}
	return nil
}

// Submit uploads the current selection and blocks until the service answers
// or ctx is done. A call made while another submission is in flight returns
// ErrBusy without contacting the service.
func (o *Orchestrator) Submit(ctx context.Context) error {
	o.mu.Lock()
	switch {
	case o.state == Submitting:
		o.mu.Unlock()
		slog.Debug("Ignoring submit while another is in flight")
		return ErrBusy
	case o.buffer.Len() == 0:
		o.mu.Unlock()
		return ErrEmptySelection
	}
	items := o.buffer.Items()
	o.state = Submitting
	o.notice = ""
	o.mu.Unlock()

	slog.Info("Submitting selection", "files", len(items))
	resp, err := o.uploader.Submit(ctx, items)
	if err != nil {
		o.fail(err)
		return err
	}

	o.complete(resp, len(items))
	return nil
}

func (o *Orchestrator) complete(resp *models.SessionResponse, fileCount int) {
	entry := models.NewHistoryEntry(resp, fileCount, o.now())
	o.history.Append(entry)

	if len(resp.Results) != fileCount {
		slog.Warn("Service returned a different number of results than files submitted",
			"files", fileCount, "results", len(resp.Results))
	}

	o.mu.Lock()
	o.current = resp
	o.state = Completed
	o.mu.Unlock()

	slog.Info("Analysis completed", "entry_id", entry.ID, "results", len(resp.Results))
	o.emit(Event{
		Kind: EventResultsReady,
		Entry: &HistoryRef{
			ID:          entry.ID,
			ResultCount: len(entry.Results),
			FileCount:   entry.FileCount,
		},
	})
}

// fail leaves the current results untouched. Failed is only observable
// through EventSubmitFailed; the state settles back to Selected so the same
// files can be retried.
func (o *Orchestrator) fail(err error) {
	o.mu.Lock()
	o.notice = FailureNotice
	o.state = Selected
	o.mu.Unlock()

	slog.Error("Upload failed", "err", err)
	o.emit(Event{Kind: EventSubmitFailed, Err: err, Message: FailureNotice})
}

// State returns the current lifecycle state
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// View returns a copy of the presentation state
func (o *Orchestrator) View() View {
	o.mu.Lock()
	defer o.mu.Unlock()

	v := View{
		State:     o.state,
		Loading:   o.state == Submitting,
		Selection: o.buffer.Names(),
		Results:   []models.AnalysisResult{},
		Notice:    o.notice,
	}
	if o.current != nil {
		v.Results = make([]models.AnalysisResult, len(o.current.Results))
		copy(v.Results, o.current.Results)
		v.ExcelURL = o.current.ExcelReportURL
		v.PDFURL = o.current.PDFReportURL
	}
	return v
}

// CanSubmit reports whether the submit action should be enabled
func (o *Orchestrator) CanSubmit() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state != Submitting && o.buffer.Len() > 0
}

// Selection exposes the buffer for previews
func (o *Orchestrator) Selection() *selection.Buffer {
	return o.buffer
}

// History returns a fresh snapshot of the history log
func (o *Orchestrator) History() []models.HistoryEntry {
	return o.history.Entries()
}

// HistoryEntry looks up one past session
func (o *Orchestrator) HistoryEntry(id string) (models.HistoryEntry, bool) {
	return o.history.Get(id)
}

// ClearHistory empties the history log if confirm returns true. It reports
// whether the log was cleared.
func (o *Orchestrator) ClearHistory(confirm func() bool) bool {
	if confirm == nil || !confirm() {
		slog.Debug("History clear not confirmed")
		return false
	}

	o.history.Clear()
	slog.Info("History cleared")
	o.emit(Event{Kind: EventHistoryCleared})
	return true
}

func (o *Orchestrator) emit(e Event) {
	if o.listener != nil {
		o.listener.OnEvent(e)
	}
}
