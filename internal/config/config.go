// Package config loads service configuration from defaults, an optional
// YAML file and environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	// ErrMissingClientID is returned when SPOTIFY_ID is not set.
	ErrMissingClientID = errors.New("missing SPOTIFY_ID environment variable")

	// ErrMissingPassphrase is returned when the file secure store has no passphrase.
	ErrMissingPassphrase = errors.New("file secure store requires SPOTIFY_SOCIAL_PASSPHRASE")
)

// Secure store backends.
const (
	StoreKeyring = "keyring"
	StoreFile    = "file"
	StoreMemory  = "memory"
)

// Stats cache backends.
const (
	CacheSQLite = "sqlite"
	CacheMemory = "memory"
)

// Config is the full service configuration.
type Config struct {
	Spotify  SpotifyConfig  `yaml:"spotify"`
	Server   ServerConfig   `yaml:"server"`
	Store    StoreConfig    `yaml:"secure_store"`
	Cache    CacheConfig    `yaml:"cache"`
	Database DatabaseConfig `yaml:"database"`
	LastFM   LastFMConfig   `yaml:"lastfm"`
	Log      LogConfig      `yaml:"log"`
	Refresh  RefreshConfig  `yaml:"refresh"`
}

// SpotifyConfig is the public PKCE client registration and endpoints.
type SpotifyConfig struct {
	ClientID    string        `yaml:"client_id"`
	RedirectURI string        `yaml:"redirect_uri"`
	AuthURL     string        `yaml:"auth_url"`
	TokenURL    string        `yaml:"token_url"`
	APIBaseURL  string        `yaml:"api_base_url"`
	Scopes      []string      `yaml:"scopes"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// StoreConfig selects where tokens are persisted.
type StoreConfig struct {
	Backend        string `yaml:"backend"`
	Path           string `yaml:"path"`
	Passphrase     string `yaml:"passphrase"`
	KeyringService string `yaml:"keyring_service"`
}

// CacheConfig selects where stats summaries are cached.
type CacheConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

// DatabaseConfig points at the social document store. An empty URL
// disables the social endpoints.
type DatabaseConfig struct {
	URL       string `yaml:"url"`
	ProfileID string `yaml:"profile_id"`
}

// LastFMConfig enables the genre fallback when APIKey is set.
type LastFMConfig struct {
	APIKey      string `yaml:"api_key"`
	Concurrency int    `yaml:"concurrency"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// RefreshConfig configures the background stats refresher. Zero disables it.
type RefreshConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Spotify: SpotifyConfig{
			RedirectURI: "http://127.0.0.1:8080/callback",
			HTTPTimeout: 15 * time.Second,
		},
		Server: ServerConfig{Addr: ":8080"},
		Store:  StoreConfig{Backend: StoreKeyring},
		Cache:  CacheConfig{Backend: CacheSQLite},
		LastFM: LastFMConfig{Concurrency: 5},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

// Load builds the configuration. path may be empty; a missing file at the
// default location is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultPath returns ~/.config/spotify-social/config.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("getting user config dir: %w", err)
	}
	return filepath.Join(dir, "spotify-social", "config.yaml"), nil
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	if c.Spotify.ClientID == "" {
		return ErrMissingClientID
	}
	switch c.Store.Backend {
	case StoreKeyring, StoreMemory:
	case StoreFile:
		if c.Store.Passphrase == "" {
			return ErrMissingPassphrase
		}
	default:
		return fmt.Errorf("unknown secure store backend %q", c.Store.Backend)
	}
	switch c.Cache.Backend {
	case CacheSQLite, CacheMemory:
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"SPOTIFY_ID":                &cfg.Spotify.ClientID,
		"SPOTIFY_REDIRECT_URI":      &cfg.Spotify.RedirectURI,
		"SPOTIFY_AUTH_URL":          &cfg.Spotify.AuthURL,
		"SPOTIFY_TOKEN_URL":         &cfg.Spotify.TokenURL,
		"SPOTIFY_API_BASE_URL":      &cfg.Spotify.APIBaseURL,
		"SPOTIFY_SOCIAL_ADDR":       &cfg.Server.Addr,
		"SPOTIFY_SOCIAL_STORE":      &cfg.Store.Backend,
		"SPOTIFY_SOCIAL_STORE_PATH": &cfg.Store.Path,
		"SPOTIFY_SOCIAL_PASSPHRASE": &cfg.Store.Passphrase,
		"SPOTIFY_SOCIAL_CACHE":      &cfg.Cache.Backend,
		"SPOTIFY_SOCIAL_CACHE_PATH": &cfg.Cache.Path,
		"DATABASE_URL":              &cfg.Database.URL,
		"SPOTIFY_SOCIAL_PROFILE_ID": &cfg.Database.ProfileID,
		"LASTFM_API_KEY":            &cfg.LastFM.APIKey,
		"LOG_LEVEL":                 &cfg.Log.Level,
		"LOG_FORMAT":                &cfg.Log.Format,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"SPOTIFY_HTTP_TIMEOUT":            &cfg.Spotify.HTTPTimeout,
		"SPOTIFY_SOCIAL_REFRESH_INTERVAL": &cfg.Refresh.Interval,
	}
	for key, dst := range durations {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", key, err)
		}
		*dst = d
	}
	return nil
}
