package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SPOTIFY_ID", "SPOTIFY_REDIRECT_URI", "SPOTIFY_AUTH_URL", "SPOTIFY_TOKEN_URL",
		"SPOTIFY_API_BASE_URL", "SPOTIFY_SOCIAL_ADDR", "SPOTIFY_SOCIAL_STORE",
		"SPOTIFY_SOCIAL_STORE_PATH", "SPOTIFY_SOCIAL_PASSPHRASE", "SPOTIFY_SOCIAL_CACHE",
		"SPOTIFY_SOCIAL_CACHE_PATH", "DATABASE_URL", "SPOTIFY_SOCIAL_PROFILE_ID",
		"LASTFM_API_KEY", "LOG_LEVEL", "LOG_FORMAT", "SPOTIFY_HTTP_TIMEOUT",
		"SPOTIFY_SOCIAL_REFRESH_INTERVAL",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
spotify:
  client_id: from-file
  http_timeout: 5s
server:
  addr: ":9090"
cache:
  backend: memory
log:
  level: debug
refresh:
  interval: 30m
`)
	t.Setenv("SPOTIFY_ID", "from-env")
	t.Setenv("LASTFM_API_KEY", "lfm")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Spotify.ClientID)
	assert.Equal(t, 5*time.Second, cfg.Spotify.HTTPTimeout)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, CacheMemory, cfg.Cache.Backend)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 30*time.Minute, cfg.Refresh.Interval)
	assert.Equal(t, "lfm", cfg.LastFM.APIKey)
	// untouched defaults survive
	assert.Equal(t, StoreKeyring, cfg.Store.Backend)
	assert.Equal(t, "http://127.0.0.1:8080/callback", cfg.Spotify.RedirectURI)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_BadDurationEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("SPOTIFY_SOCIAL_REFRESH_INTERVAL", "soon")
	_, err := Load(writeConfig(t, "{}"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
		anyErr  bool
	}{
		{
			name:    "missing client id",
			mutate:  func(c *Config) {},
			wantErr: ErrMissingClientID,
		},
		{
			name:   "defaults with client id",
			mutate: func(c *Config) { c.Spotify.ClientID = "id" },
		},
		{
			name: "file store without passphrase",
			mutate: func(c *Config) {
				c.Spotify.ClientID = "id"
				c.Store.Backend = StoreFile
			},
			wantErr: ErrMissingPassphrase,
		},
		{
			name: "unknown cache backend",
			mutate: func(c *Config) {
				c.Spotify.ClientID = "id"
				c.Cache.Backend = "redis"
			},
			anyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.anyErr:
				assert.Error(t, err)
			default:
				assert.NoError(t, err)
			}
		})
	}
}
