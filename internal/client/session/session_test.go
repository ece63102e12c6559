package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.yaml")
	store := NewStore(path)

	sess, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, sess.Token)
	assert.Empty(t, store.Token())

	saved := Session{
		Token:   "jwt-token",
		User:    &User{ID: "65f0", Name: "Jo", Email: "jo@x.com"},
		SavedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, store.Save(saved))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// a fresh store reads what the previous invocation wrote
	reloaded, err := NewStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, saved, reloaded)
	assert.Equal(t, "jwt-token", NewStore(path).Token())

	require.NoError(t, store.Clear())
	assert.Empty(t, store.Token())
	_, err = os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, store.Clear(), "clearing twice is fine")
}

func TestStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte("token: [unterminated"), 0o600))

	store := NewStore(path)
	_, err := store.Load()
	assert.Error(t, err)
	assert.Empty(t, store.Token())
}
