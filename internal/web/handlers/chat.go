package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/codecanvas/codecanvas/internal/artifact"
	"github.com/codecanvas/codecanvas/internal/chat"
	"github.com/codecanvas/codecanvas/internal/web/sse"
)

// maxMessageBytes bounds the chat request body.
const maxMessageBytes = 1 << 20 // 1MB

// Chat handles the chat endpoints.
//
// Endpoints:
//   - POST /api/v1/chat        - synchronous turn (JSON request/response)
//   - GET  /api/v1/chat/stream - same turn, results delivered over SSE
type Chat struct {
	manager *chat.Manager
	files   *artifact.Store
	logger  *slog.Logger
}

// ChatConfig contains dependencies for the chat handler.
type ChatConfig struct {
	Manager   *chat.Manager
	Artifacts *artifact.Store
	Logger    *slog.Logger
}

// NewChat creates the chat handler.
func NewChat(cfg ChatConfig) *Chat {
	return &Chat{manager: cfg.Manager, files: cfg.Artifacts, logger: cfg.Logger}
}

// RegisterRoutes registers chat routes on the given mux.
func (h *Chat) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/chat", h.Send)
	mux.HandleFunc("GET /api/v1/chat/stream", h.Stream)
}

// sendRequest is the POST /api/v1/chat body.
type sendRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// turnView is everything the UI must update after a turn.
type turnView struct {
	SessionID string         `json:"sessionId"`
	User      *messageView   `json:"user,omitempty"`
	Message   messageView    `json:"message"`
	Artifacts []artifactView `json:"artifacts,omitempty"`
	Failed    bool           `json:"failed"`
	Title     string         `json:"title,omitempty"`
}

// Send handles a synchronous chat turn.
func (h *Chat) Send(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxMessageBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body", h.logger)
		return
	}

	sessionID, ok := h.parseSessionID(req.SessionID)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_session_id", "sessionId is not a valid UUID", h.logger)
		return
	}

	turn, err := h.manager.Send(r.Context(), sessionID, req.Message)
	if err != nil {
		h.sendError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.toTurnView(turn), h.logger)
}

// Stream handles the same turn over SSE. EventSource only speaks GET, so
// the inputs arrive as query parameters.
func (h *Chat) Stream(w http.ResponseWriter, r *http.Request) {
	writer, err := sse.NewWriter(w)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "streaming_unsupported", "streaming not supported", h.logger)
		return
	}

	sessionID, ok := h.parseSessionID(r.URL.Query().Get("sessionId"))
	if !ok {
		_ = writer.WriteError("invalid_session_id", "sessionId is not a valid UUID")
		return
	}

	ctx := r.Context()
	turn, err := h.manager.Send(ctx, sessionID, r.URL.Query().Get("message"))
	if err != nil {
		code, _, message := classifySendError(err)
		_ = writer.WriteError(code, message)
		return
	}

	if !turn.Failed {
		if err := writer.WriteEvent(ctx, sse.EventUser, toMessageView(turn.UserMessage)); err != nil {
			return
		}
	}
	if err := writer.WriteEvent(ctx, sse.EventMessage, toMessageView(turn.ModelMessage)); err != nil {
		return
	}
	if views := h.artifactViews(turn.ArtifactIDs); len(views) > 0 {
		if err := writer.WriteEvent(ctx, sse.EventArtifacts, views); err != nil {
			return
		}
	}
	if turn.TitleChanged {
		if err := writer.WriteEvent(ctx, sse.EventTitle, map[string]string{
			"sessionId": turn.SessionID.String(),
			"title":     turn.Title,
		}); err != nil {
			return
		}
	}
	_ = writer.WriteEvent(ctx, sse.EventDone, map[string]any{
		"sessionId": turn.SessionID.String(),
		"failed":    turn.Failed,
	})
}

// parseSessionID accepts an empty id (target the active session) or a
// valid UUID.
func (*Chat) parseSessionID(raw string) (uuid.UUID, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func (h *Chat) toTurnView(turn chat.Turn) turnView {
	v := turnView{
		SessionID: turn.SessionID.String(),
		Message:   toMessageView(turn.ModelMessage),
		Artifacts: h.artifactViews(turn.ArtifactIDs),
		Failed:    turn.Failed,
	}
	if !turn.Failed {
		user := toMessageView(turn.UserMessage)
		v.User = &user
	}
	if turn.TitleChanged {
		v.Title = turn.Title
	}
	return v
}

func (h *Chat) artifactViews(ids []uuid.UUID) []artifactView {
	activeID := h.files.ActiveID()
	var views []artifactView
	for _, id := range ids {
		if a, ok := h.files.Get(id); ok {
			views = append(views, toArtifactView(a, activeID))
		}
	}
	return views
}

func (h *Chat) sendError(w http.ResponseWriter, err error) {
	code, status, message := classifySendError(err)
	writeError(w, status, code, message, h.logger)
}

// classifySendError maps manager errors onto response codes.
func classifySendError(err error) (code string, status int, message string) {
	switch {
	case errors.Is(err, chat.ErrBusy):
		return "busy", http.StatusConflict, "a response is already in progress for this chat"
	case errors.Is(err, chat.ErrEmptyMessage):
		return "empty_message", http.StatusBadRequest, "message must not be empty"
	case errors.Is(err, chat.ErrUnknownSession):
		return "unknown_session", http.StatusNotFound, "session not found"
	default:
		return "internal_error", http.StatusInternalServerError, "internal server error"
	}
}
