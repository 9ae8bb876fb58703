package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/codecanvas/codecanvas/internal/chat"
)

// Sessions handles the session sidebar endpoints.
//
// Endpoints:
//   - GET  /api/v1/sessions               - list sessions, newest first
//   - POST /api/v1/sessions               - start a new chat
//   - GET  /api/v1/sessions/{id}          - full transcript
//   - POST /api/v1/sessions/{id}/activate - switch to a session
type Sessions struct {
	manager *chat.Manager
	logger  *slog.Logger
}

// SessionsConfig contains dependencies for the sessions handler.
type SessionsConfig struct {
	Manager *chat.Manager
	Logger  *slog.Logger
}

// NewSessions creates the sessions handler.
func NewSessions(cfg SessionsConfig) *Sessions {
	return &Sessions{manager: cfg.Manager, logger: cfg.Logger}
}

// RegisterRoutes registers session routes on the given mux.
func (h *Sessions) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/sessions", h.List)
	mux.HandleFunc("POST /api/v1/sessions", h.Create)
	mux.HandleFunc("GET /api/v1/sessions/{id}", h.Get)
	mux.HandleFunc("POST /api/v1/sessions/{id}/activate", h.Activate)
}

// List returns all sessions, newest first, plus the active pointer.
func (h *Sessions) List(w http.ResponseWriter, _ *http.Request) {
	sessions := h.manager.Sessions()
	views := make([]sessionView, len(sessions))
	for i, s := range sessions {
		views[i] = toSessionView(s)
	}

	body := map[string]any{"sessions": views}
	if active := h.manager.ActiveID(); active != uuid.Nil {
		body["activeSessionId"] = active.String()
	}
	writeJSON(w, http.StatusOK, body, h.logger)
}

// Create starts a new chat and resets the canvas.
func (h *Sessions) Create(w http.ResponseWriter, r *http.Request) {
	s := h.manager.NewChat(r.Context())
	writeJSON(w, http.StatusCreated, toSessionDetail(s), h.logger)
}

// Get returns the full transcript of one session.
func (h *Sessions) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid session ID", h.logger)
		return
	}

	s, ok := h.manager.Session(id)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "session not found", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, toSessionDetail(s), h.logger)
}

// Activate switches to the identified session. The canvas is reset; the
// transcript comes back so the UI can rebuild in one round trip.
func (h *Sessions) Activate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid session ID", h.logger)
		return
	}

	if err := h.manager.SwitchChat(r.Context(), id); err != nil {
		if errors.Is(err, chat.ErrUnknownSession) {
			writeError(w, http.StatusNotFound, "not_found", "session not found", h.logger)
			return
		}
		writeError(w, http.StatusInternalServerError, "switch_failed", "failed to switch session", h.logger)
		return
	}

	s, _ := h.manager.Session(id)
	writeJSON(w, http.StatusOK, toSessionDetail(s), h.logger)
}
