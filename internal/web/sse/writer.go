// Package sse provides Server-Sent Events utilities for streaming
// responses to the browser.
package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Event names emitted on the chat stream.
const (
	EventUser      = "user"      // accepted user message
	EventMessage   = "message"   // model answer (or substituted failure message)
	EventArtifacts = "artifacts" // artifacts extracted from the answer
	EventTitle     = "title"     // session title changed
	EventDone      = "done"      // turn completed
	EventError     = "error"     // request-level failure
)

// ErrorPayload is the data payload for EventError.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Writer wraps an http.ResponseWriter for SSE streaming.
type Writer struct {
	w       io.Writer
	flusher http.Flusher
}

// NewWriter creates an SSE writer and sets the streaming headers.
func NewWriter(w http.ResponseWriter) (*Writer, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support flusher interface")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	return &Writer{w: w, flusher: flusher}, nil
}

// WriteEvent sends a named event with a JSON-encoded payload. It refuses
// to write once the request context is done.
func (w *Writer) WriteEvent(ctx context.Context, event string, payload any) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("context canceled: %w", ctx.Err())
	default:
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return w.writeSSEData(event, string(data))
}

// WriteError sends an error event. Context cancellation is ignored here:
// the error is the last thing the client will hear.
func (w *Writer) WriteError(code, message string) error {
	data, err := json.Marshal(ErrorPayload{Code: code, Message: message})
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}
	return w.writeSSEData(EventError, string(data))
}

// writeSSEData writes one event in SSE wire format. Each line of the
// content gets its own "data: " prefix; a blank line terminates the event.
func (w *Writer) writeSSEData(event, content string) error {
	if _, err := fmt.Fprintf(w.w, "event: %s\n", event); err != nil {
		return fmt.Errorf("write event name: %w", err)
	}

	for _, line := range strings.Split(content, "\n") {
		if _, err := fmt.Fprintf(w.w, "data: %s\n", line); err != nil {
			return fmt.Errorf("write data line: %w", err)
		}
	}

	if _, err := w.w.Write([]byte("\n")); err != nil {
		return fmt.Errorf("write terminator: %w", err)
	}

	w.flusher.Flush()
	return nil
}
