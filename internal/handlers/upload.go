package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/eggplant-lab/eggplant/internal/session"
)

// HandleUpload submits the current selection and answers with the
// resulting view once the analysis service replies.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	if h.submitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.submitTimeout)
		defer cancel()
	}

	err := h.orchestrator.Submit(ctx)
	switch {
	case err == nil:
		h.writeJSON(w, h.orchestrator.View())
	case errors.Is(err, session.ErrBusy):
		h.writeError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, session.ErrEmptySelection):
		h.writeError(w, err.Error(), http.StatusBadRequest)
	default:
		h.writeJSONStatus(w, http.StatusBadGateway, h.orchestrator.View())
	}
}

func (h *Handler) HandleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, h.orchestrator.View())
}
