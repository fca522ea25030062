package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justestif/go-spotify-social/internal/config"
	"github.com/justestif/go-spotify-social/internal/logging"
)

func memoryConfig() *config.Config {
	cfg := config.Default()
	cfg.Spotify.ClientID = "client-id"
	cfg.Store.Backend = config.StoreMemory
	cfg.Cache.Backend = config.CacheMemory
	return cfg
}

func TestBuild_RejectsInvalidConfig(t *testing.T) {
	cfg := memoryConfig()
	cfg.Spotify.ClientID = ""

	_, err := Build(context.Background(), cfg, logging.Discard())
	assert.ErrorIs(t, err, config.ErrMissingClientID)
}

func TestBuild_MemoryBackends(t *testing.T) {
	a, err := Build(context.Background(), memoryConfig(), logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.Nil(t, a.DB)
	assert.NotNil(t, a.Tokens)
	assert.NotNil(t, a.Stats)
	assert.NotNil(t, a.Refresher)
	assert.False(t, a.Tokens.IsConnected(context.Background()))

	h := a.Server().Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/profiles/me", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code, "social routes need a database")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats/short", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBuild_SQLiteCacheAndFileStore(t *testing.T) {
	dir := t.TempDir()
	cfg := memoryConfig()
	cfg.Cache.Backend = config.CacheSQLite
	cfg.Cache.Path = filepath.Join(dir, "stats.db")
	cfg.Store.Backend = config.StoreFile
	cfg.Store.Path = filepath.Join(dir, "tokens.enc")
	cfg.Store.Passphrase = "correct horse"

	a, err := Build(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	require.NoError(t, a.Close())
	assert.FileExists(t, cfg.Cache.Path)
}

func TestBuild_LastFMGenreSource(t *testing.T) {
	cfg := memoryConfig()
	cfg.LastFM.APIKey = "lastfm-key"
	cfg.LastFM.Concurrency = 2

	a, err := Build(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	assert.NoError(t, a.Close())
}
