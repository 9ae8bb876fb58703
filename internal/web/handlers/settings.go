package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/codecanvas/codecanvas/internal/chat"
)

// Settings handles the settings panel endpoints. The credential itself
// never leaves the server; the UI only learns whether one is set and what
// the validator thinks of it.
//
// Endpoints:
//   - GET /api/v1/settings          - theme/persona/context + key presence
//   - PUT /api/v1/settings          - replace settings
//   - PUT /api/v1/credential        - store the user API key
//   - GET /api/v1/credential/status - debounced validation status
type Settings struct {
	manager *chat.Manager
	logger  *slog.Logger
}

// SettingsConfig contains dependencies for the settings handler.
type SettingsConfig struct {
	Manager *chat.Manager
	Logger  *slog.Logger
}

// NewSettings creates the settings handler.
func NewSettings(cfg SettingsConfig) *Settings {
	return &Settings{manager: cfg.Manager, logger: cfg.Logger}
}

// RegisterRoutes registers settings routes on the given mux.
func (h *Settings) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/settings", h.Get)
	mux.HandleFunc("PUT /api/v1/settings", h.Put)
	mux.HandleFunc("PUT /api/v1/credential", h.PutCredential)
	mux.HandleFunc("GET /api/v1/credential/status", h.CredentialStatus)
}

// settingsBody is the settings wire shape, both directions.
type settingsBody struct {
	Theme   string `json:"theme"`
	Persona string `json:"persona"`
	Context string `json:"context"`
}

// Get returns the current settings and credential presence.
func (h *Settings) Get(w http.ResponseWriter, _ *http.Request) {
	s := h.manager.Settings()
	writeJSON(w, http.StatusOK, map[string]any{
		"settings":  settingsBody{Theme: s.Theme, Persona: s.Persona, Context: s.Context},
		"hasApiKey": h.manager.HasUserCredential(),
		"keyStatus": string(h.manager.CredentialStatus()),
	}, h.logger)
}

// Put replaces and persists the settings.
func (h *Settings) Put(w http.ResponseWriter, r *http.Request) {
	var req settingsBody
	r.Body = http.MaxBytesReader(w, r.Body, maxMessageBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body", h.logger)
		return
	}

	h.manager.SetSettings(r.Context(), chat.Settings{
		Theme:   req.Theme,
		Persona: req.Persona,
		Context: req.Context,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"}, h.logger)
}

// credentialRequest is the PUT /api/v1/credential body. An empty key
// clears the user credential and falls back to the server one.
type credentialRequest struct {
	APIKey string `json:"apiKey"`
}

// PutCredential stores the user API key and kicks off debounced
// validation.
func (h *Settings) PutCredential(w http.ResponseWriter, r *http.Request) {
	var req credentialRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxMessageBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body", h.logger)
		return
	}

	h.manager.SetCredential(r.Context(), req.APIKey)
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "updated",
		"keyStatus": string(h.manager.CredentialStatus()),
	}, h.logger)
}

// CredentialStatus returns the validator state. The UI polls this while
// the status is "checking".
func (h *Settings) CredentialStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"keyStatus": string(h.manager.CredentialStatus()),
	}, h.logger)
}
