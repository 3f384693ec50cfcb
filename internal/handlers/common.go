package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/eggplant-lab/eggplant/internal/session"
)

// Handler exposes the session orchestrator over HTTP
type Handler struct {
	orchestrator  *session.Orchestrator
	submitTimeout time.Duration
}

type Option func(*Handler)

// WithSubmitTimeout bounds each submission. Zero leaves it unbounded.
func WithSubmitTimeout(d time.Duration) Option {
	return func(h *Handler) {
		h.submitTimeout = d
	}
}

func New(orchestrator *session.Orchestrator, opts ...Option) *Handler {
	h := &Handler{
		orchestrator: orchestrator,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes registers every endpoint on mux
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/api/selection", h.HandleSelection)
	mux.HandleFunc("/api/upload", h.HandleUpload)
	mux.HandleFunc("/api/state", h.HandleState)
	mux.HandleFunc("/api/history", h.HandleHistory)
	mux.HandleFunc("/api/history/", h.HandleHistoryDetail)
	mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	h.writeJSONStatus(w, http.StatusOK, data)
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	if code >= 500 {
		slog.Error(message)
	} else {
		slog.Debug(message, "code", code)
	}
	http.Error(w, message, code)
}
