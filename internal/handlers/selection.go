package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/eggplant-lab/eggplant/internal/selection"
	"github.com/eggplant-lab/eggplant/internal/session"
)

const (
	maxFileSize    = 10 * 1024 * 1024
	maxRequestSize = 200 * 1024 * 1024
)

type selectionResponse struct {
	Count     int             `json:"count"`
	Files     []selectionFile `json:"files"`
	CanSubmit bool            `json:"can_submit"`
}

type selectionFile struct {
	Name    string `json:"name"`
	Preview string `json:"preview,omitempty"`
}

func (h *Handler) HandleSelection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		h.writeSelection(w, r.URL.Query().Get("previews") == "true")
	case "POST":
		h.handleSetSelection(w, r)
	case "DELETE":
		if err := h.orchestrator.SetSelection(nil); err != nil {
			h.writeError(w, err.Error(), http.StatusConflict)
			return
		}
		h.writeSelection(w, false)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleSetSelection(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		h.writeError(w, "Failed to read form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	items := make([]selection.Item, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
			return
		}

		// Limit file size to 10MB
		data, err := io.ReadAll(io.LimitReader(file, maxFileSize+1))
		file.Close()
		if err != nil {
			h.writeError(w, "Failed to read file contents: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if len(data) > maxFileSize {
			h.writeError(w, "File too large (max 10MB): "+header.Filename, http.StatusBadRequest)
			return
		}
		if !selection.IsImage(data) {
			h.writeError(w, "Not an image: "+header.Filename, http.StatusBadRequest)
			return
		}

		items = append(items, selection.Item{Name: header.Filename, Data: data})
	}

	if err := h.orchestrator.SetSelection(items); err != nil {
		if errors.Is(err, session.ErrBusy) {
			h.writeError(w, err.Error(), http.StatusConflict)
			return
		}
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeSelection(w, false)
}

func (h *Handler) writeSelection(w http.ResponseWriter, previews bool) {
	buf := h.orchestrator.Selection()
	names := buf.Names()

	resp := selectionResponse{
		Count:     len(names),
		Files:     make([]selectionFile, len(names)),
		CanSubmit: h.orchestrator.CanSubmit(),
	}
	for i, name := range names {
		resp.Files[i].Name = name
		if previews {
			resp.Files[i].Preview, _ = buf.Preview(i)
		}
	}

	h.writeJSON(w, resp)
}
