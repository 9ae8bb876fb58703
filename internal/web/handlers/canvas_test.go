package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codecanvas/codecanvas/internal/artifact"
)

func seedArtifacts(t *testing.T, env *testEnv, files ...*artifact.Artifact) {
	t.Helper()
	env.files.Append(files...)
}

func do(t *testing.T, env *testEnv, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)
	return rec
}

func TestCanvasList(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	a := artifact.New("main.go", "go", "package main")
	seedArtifacts(t, env, a)

	rec := do(t, env, http.MethodGet, "/api/v1/artifacts", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Artifacts []struct {
			ID       string `json:"id"`
			Filename string `json:"filename"`
			Active   bool   `json:"active"`
		} `json:"artifacts"`
		ActiveArtifactID string `json:"activeArtifactId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Artifacts, 1)
	assert.Equal(t, a.ID.String(), body.Artifacts[0].ID)
	assert.True(t, body.Artifacts[0].Active)
	assert.Equal(t, a.ID.String(), body.ActiveArtifactID)
}

func TestCanvasEditUndoRedo(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	a := artifact.New("app.js", "javascript", "v1")
	seedArtifacts(t, env, a)
	base := "/api/v1/artifacts/" + a.ID.String()

	rec := do(t, env, http.MethodPut, base, `{"content":"v2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"content":"v2"`)
	assert.Contains(t, rec.Body.String(), `"canUndo":true`)

	rec = do(t, env, http.MethodPost, base+"/undo", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"content":"v1"`)
	assert.Contains(t, rec.Body.String(), `"canRedo":true`)

	rec = do(t, env, http.MethodPost, base+"/redo", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"content":"v2"`)
}

func TestCanvasSelectAndClose(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	first := artifact.New("a.html", "xml", "<html></html>")
	second := artifact.New("b.css", "css", "body{}")
	seedArtifacts(t, env, first, second)

	rec := do(t, env, http.MethodPost, "/api/v1/artifacts/"+first.ID.String()+"/select", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, first.ID, env.files.ActiveID())

	rec = do(t, env, http.MethodDelete, "/api/v1/artifacts/"+first.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Artifacts        []struct{ ID string } `json:"artifacts"`
		ActiveArtifactID string                `json:"activeArtifactId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Artifacts, 1)
	// Closing the first tab moves the pointer to the next one.
	assert.Equal(t, second.ID.String(), body.ActiveArtifactID)
}

func TestCanvasUnknownArtifact(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	id := uuid.NewString()
	assert.Equal(t, http.StatusNotFound, do(t, env, http.MethodPut, "/api/v1/artifacts/"+id, `{"content":"x"}`).Code)
	assert.Equal(t, http.StatusNotFound, do(t, env, http.MethodPost, "/api/v1/artifacts/"+id+"/undo", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, env, http.MethodDelete, "/api/v1/artifacts/"+id, "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, env, http.MethodPut, "/api/v1/artifacts/nope", `{"content":"x"}`).Code)
}

func TestCanvasPreview(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	seedArtifacts(t, env,
		artifact.New("index.html", "xml", `<html><head><link rel="stylesheet" href="style.css"></head></html>`),
		artifact.New("style.css", "css", "body { margin: 0 }"),
	)

	rec := do(t, env, http.MethodGet, "/api/v1/preview", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "<style>\nbody { margin: 0 }\n</style>")
}

func TestCanvasPreview_NoHTMLArtifact(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	seedArtifacts(t, env, artifact.New("main.py", "python", "print(1)"))

	rec := do(t, env, http.MethodGet, "/api/v1/preview", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}
