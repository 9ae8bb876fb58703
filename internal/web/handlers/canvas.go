package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/codecanvas/codecanvas/internal/artifact"
	"github.com/codecanvas/codecanvas/internal/chat"
	"github.com/codecanvas/codecanvas/internal/preview"
)

// Canvas handles the code editor endpoints.
//
// Endpoints:
//   - GET    /api/v1/artifacts             - list editor tabs
//   - PUT    /api/v1/artifacts/{id}        - edit content
//   - POST   /api/v1/artifacts/{id}/undo   - undo last edit
//   - POST   /api/v1/artifacts/{id}/redo   - redo undone edit
//   - POST   /api/v1/artifacts/{id}/select - switch active tab
//   - DELETE /api/v1/artifacts/{id}        - close tab
//   - GET    /api/v1/preview               - assembled HTML preview
type Canvas struct {
	files   *artifact.Store
	manager *chat.Manager
	logger  *slog.Logger
}

// CanvasConfig contains dependencies for the canvas handler.
type CanvasConfig struct {
	Artifacts *artifact.Store
	Manager   *chat.Manager
	Logger    *slog.Logger
}

// NewCanvas creates the canvas handler.
func NewCanvas(cfg CanvasConfig) *Canvas {
	return &Canvas{files: cfg.Artifacts, manager: cfg.Manager, logger: cfg.Logger}
}

// RegisterRoutes registers canvas routes on the given mux.
func (h *Canvas) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/artifacts", h.List)
	mux.HandleFunc("PUT /api/v1/artifacts/{id}", h.Edit)
	mux.HandleFunc("POST /api/v1/artifacts/{id}/undo", h.Undo)
	mux.HandleFunc("POST /api/v1/artifacts/{id}/redo", h.Redo)
	mux.HandleFunc("POST /api/v1/artifacts/{id}/select", h.Select)
	mux.HandleFunc("DELETE /api/v1/artifacts/{id}", h.Close)
	mux.HandleFunc("GET /api/v1/preview", h.Preview)
}

// List returns all editor tabs in collection order.
func (h *Canvas) List(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.listBody(), h.logger)
}

// editRequest is the PUT /api/v1/artifacts/{id} body.
type editRequest struct {
	Content string `json:"content"`
}

// Edit replaces an artifact's content, pushing the previous content onto
// its undo history.
func (h *Canvas) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.artifactID(w, r)
	if !ok {
		return
	}

	var req editRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxMessageBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body", h.logger)
		return
	}

	h.files.Edit(id, req.Content)
	h.finishMutation(w, r, id)
}

// Undo reverts the last edit of one artifact.
func (h *Canvas) Undo(w http.ResponseWriter, r *http.Request) {
	id, ok := h.artifactID(w, r)
	if !ok {
		return
	}
	h.files.UndoEdit(id)
	h.finishMutation(w, r, id)
}

// Redo re-applies the last undone edit of one artifact.
func (h *Canvas) Redo(w http.ResponseWriter, r *http.Request) {
	id, ok := h.artifactID(w, r)
	if !ok {
		return
	}
	h.files.RedoEdit(id)
	h.finishMutation(w, r, id)
}

// Select makes the identified artifact the active tab.
func (h *Canvas) Select(w http.ResponseWriter, r *http.Request) {
	id, ok := h.artifactID(w, r)
	if !ok {
		return
	}
	h.files.Select(id)
	h.finishMutation(w, r, id)
}

// Close removes a tab. The active pointer moves to the previous tab, or
// the next one when the first tab closes. Returns the remaining tabs.
func (h *Canvas) Close(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid artifact ID", h.logger)
		return
	}
	if _, ok := h.files.Get(id); !ok {
		writeError(w, http.StatusNotFound, "not_found", "artifact not found", h.logger)
		return
	}

	h.files.Close(id)
	h.manager.SyncArtifacts(r.Context())
	writeJSON(w, http.StatusOK, h.listBody(), h.logger)
}

// Preview serves the assembled HTML document for the preview iframe.
// With no HTML artifact the body is empty.
func (h *Canvas) Preview(w http.ResponseWriter, _ *http.Request) {
	doc := preview.Render(h.files.List())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write([]byte(doc)); err != nil {
		h.logger.Debug("writing preview body", "error", err)
	}
}

// artifactID parses the path ID and verifies the artifact exists.
func (h *Canvas) artifactID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid artifact ID", h.logger)
		return uuid.Nil, false
	}
	if _, ok := h.files.Get(id); !ok {
		writeError(w, http.StatusNotFound, "not_found", "artifact not found", h.logger)
		return uuid.Nil, false
	}
	return id, true
}

// finishMutation persists the collection and returns the updated view.
func (h *Canvas) finishMutation(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	h.manager.SyncArtifacts(r.Context())
	a, ok := h.files.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "artifact not found", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, toArtifactView(a, h.files.ActiveID()), h.logger)
}

func (h *Canvas) listBody() map[string]any {
	files := h.files.List()
	body := map[string]any{
		"artifacts":   toArtifactViews(files, h.files.ActiveID()),
		"previewable": preview.Previewable(files),
	}
	if active := h.files.ActiveID(); active != uuid.Nil {
		body["activeArtifactId"] = active.String()
	}
	return body
}
