package handlers

import (
	"log/slog"
	"net/http"

	"github.com/codecanvas/codecanvas/internal/chat"
)

// Health serves the liveness and readiness probes.
type Health struct {
	manager *chat.Manager
	logger  *slog.Logger
}

// NewHealth creates the health handler.
func NewHealth(manager *chat.Manager, logger *slog.Logger) *Health {
	return &Health{manager: manager, logger: logger}
}

// RegisterRoutes registers the probe routes on the given mux.
func (h *Health) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Live)
	mux.HandleFunc("GET /ready", h.Ready)
}

// Live always reports ok while the process serves requests.
func (h *Health) Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// Ready reports whether chat turns can reach the API. The UI stays usable
// without a credential, so this is informational rather than gating.
func (h *Health) Ready(w http.ResponseWriter, _ *http.Request) {
	status := http.StatusOK
	body := map[string]any{"status": "ready", "chat": h.manager.Ready()}
	if !h.manager.Ready() {
		body["status"] = "degraded"
	}
	writeJSON(w, status, body, h.logger)
}
