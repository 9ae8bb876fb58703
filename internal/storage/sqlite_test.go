package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codecanvas/codecanvas/internal/storage"
)

func openStore(t *testing.T) *storage.SQLite {
	t.Helper()
	s, err := storage.Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLite_GetSetRemove(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openStore(t)

	_, err := s.Get(ctx, storage.KeyCredential)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.Set(ctx, storage.KeyCredential, "sk-test"))
	got, err := s.Get(ctx, storage.KeyCredential)
	require.NoError(t, err)
	assert.Equal(t, "sk-test", got)

	// Set replaces.
	require.NoError(t, s.Set(ctx, storage.KeyCredential, "sk-other"))
	got, err = s.Get(ctx, storage.KeyCredential)
	require.NoError(t, err)
	assert.Equal(t, "sk-other", got)

	require.NoError(t, s.Remove(ctx, storage.KeyCredential))
	_, err = s.Get(ctx, storage.KeyCredential)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Removing an absent key is not an error.
	require.NoError(t, s.Remove(ctx, storage.KeyCredential))
}

func TestSQLite_EmptyValueIsNotAbsent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openStore(t)

	require.NoError(t, s.Set(ctx, storage.KeyActiveSession, ""))
	got, err := s.Get(ctx, storage.KeyActiveSession)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLite_ReopenKeepsState(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := storage.Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, storage.KeySettings, `{"theme":"dark"}`))
	require.NoError(t, s.Close())

	s, err = storage.Open(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	got, err := s.Get(ctx, storage.KeySettings)
	require.NoError(t, err)
	assert.JSONEq(t, `{"theme":"dark"}`, got)
}
