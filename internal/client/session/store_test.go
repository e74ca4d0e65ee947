package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_RoundTrip(t *testing.T) {
	store := NewFileStore(t.TempDir())

	sess := Session{
		Subject:    Subject{Email: "a@example.com", UID: "user-a"},
		Credential: "tok-123",
		IssuedAt:   time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.Save(sess))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, sess.Subject, loaded.Subject)
	assert.Equal(t, sess.Credential, loaded.Credential)
}

func TestFileStore_Empty(t *testing.T) {
	store := NewFileStore(t.TempDir())

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestFileStore_Clear(t *testing.T) {
	store := NewFileStore(t.TempDir())

	require.NoError(t, store.Save(Session{
		Subject:    Subject{UID: "user-a"},
		Credential: "tok-123",
	}))
	require.NoError(t, store.Clear())

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoSession)

	// Повторная очистка не ошибка
	require.NoError(t, store.Clear())
}

func TestFileStore_CorruptSnapshot(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, SnapshotName), []byte("{broken"), 0o600))

	store := NewFileStore(dir)
	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestFileStore_IncompleteSnapshot(t *testing.T) {
	store := NewFileStore(t.TempDir())

	// Снапшот без credential бесполезен
	require.NoError(t, store.Save(Session{Subject: Subject{UID: "user-a"}}))
	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoSession)
}
