package securestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	keyring.MockInit()

	fs, err := NewFileStore(filepath.Join(t.TempDir(), "secrets.enc"), "correct horse")
	require.NoError(t, err)

	return map[string]Store{
		"memory":  NewMemoryStore(),
		"keyring": NewKeyringStore("spotify-social-test"),
		"file":    fs,
	}
}

func TestStore_Contract(t *testing.T) {
	ctx := context.Background()

	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.GetItem(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, store.SetItem(ctx, "spotify_access_token", "AT1"))
			require.NoError(t, store.SetItem(ctx, "spotify_refresh_token", "RT1"))

			v, err := store.GetItem(ctx, "spotify_access_token")
			require.NoError(t, err)
			assert.Equal(t, "AT1", v)

			require.NoError(t, store.SetItem(ctx, "spotify_access_token", "AT2"))
			v, err = store.GetItem(ctx, "spotify_access_token")
			require.NoError(t, err)
			assert.Equal(t, "AT2", v)

			require.NoError(t, store.DeleteItem(ctx, "spotify_access_token"))
			_, err = store.GetItem(ctx, "spotify_access_token")
			assert.ErrorIs(t, err, ErrNotFound)

			// deleting twice is fine
			require.NoError(t, store.DeleteItem(ctx, "spotify_access_token"))
			require.NoError(t, store.DeleteItem(ctx, "never_set"))

			v, err = store.GetItem(ctx, "spotify_refresh_token")
			require.NoError(t, err)
			assert.Equal(t, "RT1", v)
		})
	}
}

func TestFileStore_EncryptedAtRest(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "secrets.enc")

	fs, err := NewFileStore(path, "pass")
	require.NoError(t, err)
	require.NoError(t, fs.SetItem(ctx, "spotify_access_token", "super-secret-token"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "super-secret-token")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Mode().Perm()&0077, "file must not be group/world accessible")
}

func TestFileStore_ReopenWithPassphrase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "secrets.enc")

	first, err := NewFileStore(path, "pass")
	require.NoError(t, err)
	require.NoError(t, first.SetItem(ctx, "k", "v"))

	second, err := NewFileStore(path, "pass")
	require.NoError(t, err)
	v, err := second.GetItem(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	wrong, err := NewFileStore(path, "other")
	require.NoError(t, err)
	_, err = wrong.GetItem(ctx, "k")
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestFileStore_WriteReplacesFileWhole(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "secrets.enc")

	fs, err := NewFileStore(path, "pass")
	require.NoError(t, err)
	require.NoError(t, fs.SetItem(ctx, "k", "v1"))

	// A write interrupted before its rename leaves only the temp file behind
	require.NoError(t, os.WriteFile(path+".tmp", []byte("trunc"), 0600))

	reopened, err := NewFileStore(path, "pass")
	require.NoError(t, err)
	v, err := reopened.GetItem(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v1", v)

	require.NoError(t, reopened.SetItem(ctx, "k", "v2"))
	v, err = reopened.GetItem(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", v)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file is renamed into place")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Mode().Perm()&0077)
}

func TestFileStore_RemovesFileWhenEmpty(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "secrets.enc")

	fs, err := NewFileStore(path, "pass")
	require.NoError(t, err)
	require.NoError(t, fs.SetItem(ctx, "k", "v"))
	require.NoError(t, fs.DeleteItem(ctx, "k"))

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestNewFileStore_EmptyPassphrase(t *testing.T) {
	_, err := NewFileStore("x", "")
	assert.ErrorIs(t, err, ErrEmptyPassphrase)
}
