package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/codecanvas/codecanvas/internal/artifact"
	"github.com/codecanvas/codecanvas/internal/storage"
)

// Persistence is flat serialization of the data model into five
// independent keys. Failures to persist are logged, never fatal: the
// in-memory state stays authoritative for the running process.

// load restores all persisted state. Runs before the Manager is shared,
// so no locking.
func (m *Manager) load(ctx context.Context) error {
	if cred, err := m.loadKey(ctx, storage.KeyCredential); err != nil {
		return err
	} else if cred != "" {
		m.credential = cred
	}

	if raw, err := m.loadKey(ctx, storage.KeySettings); err != nil {
		return err
	} else if raw != "" {
		if err := json.Unmarshal([]byte(raw), &m.settings); err != nil {
			return fmt.Errorf("parsing persisted settings: %w", err)
		}
	}

	if raw, err := m.loadKey(ctx, storage.KeySessions); err != nil {
		return err
	} else if raw != "" {
		var sessions []Session
		if err := json.Unmarshal([]byte(raw), &sessions); err != nil {
			return fmt.Errorf("parsing persisted sessions: %w", err)
		}
		m.sessions = make([]*Session, len(sessions))
		for i := range sessions {
			s := sessions[i].clone()
			m.sessions[i] = &s
		}
	}

	if raw, err := m.loadKey(ctx, storage.KeyArtifacts); err != nil {
		return err
	} else if raw != "" {
		var files []artifact.Artifact
		if err := json.Unmarshal([]byte(raw), &files); err != nil {
			return fmt.Errorf("parsing persisted artifacts: %w", err)
		}
		m.artifacts.Restore(files, uuid.Nil)
	}

	if raw, err := m.loadKey(ctx, storage.KeyActiveSession); err != nil {
		return err
	} else if raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			m.active = id
		}
	}

	// Ensure the active chat exists: fall back to the newest session,
	// or none.
	if m.find(m.active) == nil {
		m.active = uuid.Nil
		if len(m.sessions) > 0 {
			m.active = m.sessions[0].ID
		}
	}

	return nil
}

// loadKey reads one key, treating absence as empty.
func (m *Manager) loadKey(ctx context.Context, key string) (string, error) {
	v, err := m.store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("loading %s: %w", key, err)
	}
	return v, nil
}

// persistSessions writes the session list. Caller holds mu.
func (m *Manager) persistSessions(ctx context.Context) {
	snapshot := make([]Session, len(m.sessions))
	for i, s := range m.sessions {
		snapshot[i] = s.clone()
	}
	m.persistJSON(ctx, storage.KeySessions, snapshot)
}

// persistArtifacts writes the artifact collection.
func (m *Manager) persistArtifacts(ctx context.Context) {
	m.persistJSON(ctx, storage.KeyArtifacts, m.artifacts.List())
}

// persistSettings writes the settings. Caller holds mu.
func (m *Manager) persistSettings(ctx context.Context) {
	m.persistJSON(ctx, storage.KeySettings, m.settings)
}

// persistCredential writes the raw credential string. Caller holds mu.
func (m *Manager) persistCredential(ctx context.Context) {
	if err := m.store.Set(ctx, storage.KeyCredential, m.credential); err != nil {
		m.logger.Warn("persisting credential failed", "error", err)
	}
}

// persistActive writes the active-session pointer, removing the key —
// not setting it empty — when there is no active session. Caller holds mu.
func (m *Manager) persistActive(ctx context.Context) {
	if m.active == uuid.Nil {
		if err := m.store.Remove(ctx, storage.KeyActiveSession); err != nil {
			m.logger.Warn("removing active session failed", "error", err)
		}
		return
	}
	if err := m.store.Set(ctx, storage.KeyActiveSession, m.active.String()); err != nil {
		m.logger.Warn("persisting active session failed", "error", err)
	}
}

func (m *Manager) persistJSON(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		m.logger.Warn("serializing state failed", "key", key, "error", err)
		return
	}
	if err := m.store.Set(ctx, key, string(raw)); err != nil {
		m.logger.Warn("persisting state failed", "key", key, "error", err)
	}
}
