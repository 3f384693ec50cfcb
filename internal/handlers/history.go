package handlers

import (
	"net/http"
	"strings"
)

type historyResponse struct {
	Count   int         `json:"count"`
	Entries interface{} `json:"entries"`
}

func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		entries := h.orchestrator.History()
		h.writeJSON(w, historyResponse{Count: len(entries), Entries: entries})
	case "DELETE":
		confirmed := r.URL.Query().Get("confirm") == "true"
		cleared := h.orchestrator.ClearHistory(func() bool { return confirmed })
		if !cleared {
			h.writeError(w, "Clearing history requires confirm=true", http.StatusPreconditionRequired)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) HandleHistoryDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/history/")
	entry, ok := h.orchestrator.HistoryEntry(id)
	if !ok {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return
	}
	h.writeJSON(w, entry)
}
