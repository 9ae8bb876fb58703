package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsRoundTrip(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	req := `{"theme":"light","persona":"pirate","context":"be brief"}`
	rec := do(t, env, http.MethodPut, "/api/v1/settings", req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, env, http.MethodGet, "/api/v1/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Settings struct {
			Theme   string `json:"theme"`
			Persona string `json:"persona"`
			Context string `json:"context"`
		} `json:"settings"`
		HasAPIKey bool   `json:"hasApiKey"`
		KeyStatus string `json:"keyStatus"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "light", body.Settings.Theme)
	assert.Equal(t, "pirate", body.Settings.Persona)
	assert.Equal(t, "be brief", body.Settings.Context)
	assert.False(t, body.HasAPIKey)
	assert.Equal(t, "unknown", body.KeyStatus)
}

func TestSettingsPutCredential(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := do(t, env, http.MethodPut, "/api/v1/credential", `{"apiKey":"user-key"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.manager.HasUserCredential())

	rec = do(t, env, http.MethodGet, "/api/v1/credential/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	// No validator wired in tests, so the status stays unknown.
	assert.Contains(t, rec.Body.String(), `"keyStatus":"unknown"`)

	// Clearing the key falls back to the server credential.
	rec = do(t, env, http.MethodPut, "/api/v1/credential", `{"apiKey":""}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, env.manager.HasUserCredential())
}

func TestSettingsInvalidBody(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	assert.Equal(t, http.StatusBadRequest, do(t, env, http.MethodPut, "/api/v1/settings", `{`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, env, http.MethodPut, "/api/v1/credential", `{`).Code)
}
