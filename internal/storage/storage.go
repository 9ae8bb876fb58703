// Package storage provides the persisted key-value string store backing
// application state: credential, settings, sessions, artifacts and the
// active-session pointer are each one flat serialized value under a
// well-known key.
package storage

import (
	"context"
	"errors"
)

// Well-known keys for persisted application state.
const (
	KeyCredential    = "credential"
	KeySettings      = "settings"
	KeySessions      = "sessions"
	KeyArtifacts     = "artifacts"
	KeyActiveSession = "active_session"
)

// ErrNotFound is returned by Get for keys that have no value.
var ErrNotFound = errors.New("key not found")

// Store is a string key-value store with get/set/remove semantics.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Remove deletes the key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}
