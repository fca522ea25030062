// Package app assembles the service from its configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/justestif/go-spotify-social/internal/auth"
	"github.com/justestif/go-spotify-social/internal/cache"
	"github.com/justestif/go-spotify-social/internal/config"
	"github.com/justestif/go-spotify-social/internal/db"
	"github.com/justestif/go-spotify-social/internal/lastfm"
	"github.com/justestif/go-spotify-social/internal/metrics"
	"github.com/justestif/go-spotify-social/internal/refresh"
	"github.com/justestif/go-spotify-social/internal/securestore"
	"github.com/justestif/go-spotify-social/internal/spotify"
	"github.com/justestif/go-spotify-social/internal/stats"
	"github.com/justestif/go-spotify-social/internal/tags"
	"github.com/justestif/go-spotify-social/internal/web"
)

// App holds the wired components.
type App struct {
	Config    *config.Config
	Log       logrus.FieldLogger
	Metrics   *metrics.Recorder
	Tokens    *auth.TokenManager
	Catalog   *spotify.Client
	Stats     *stats.Aggregator
	Refresher *refresh.Service
	// DB is nil when no database URL is configured.
	DB *db.DB

	closers []func() error
}

// Build wires every component described by cfg. The caller must Close the
// returned App.
func Build(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{
		Config:  cfg,
		Log:     log,
		Metrics: metrics.New(),
	}

	if err := a.build(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context) error {
	cfg := a.Config

	store, err := openStore(cfg.Store)
	if err != nil {
		return err
	}

	if cfg.Database.URL != "" {
		database, err := db.New(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		a.DB = database
		a.closers = append(a.closers, func() error {
			database.Close()
			return nil
		})

		if err := database.Migrate(ctx); err != nil {
			return fmt.Errorf("migrating database: %w", err)
		}
		if cfg.Database.ProfileID != "" {
			if err := database.Profiles().Ensure(ctx, cfg.Database.ProfileID); err != nil {
				return fmt.Errorf("ensuring profile: %w", err)
			}
		} else {
			a.Log.Warn("database configured without a profile id; social endpoints disabled")
		}
	}

	httpClient := &http.Client{Timeout: cfg.Spotify.HTTPTimeout}

	tmOpts := []auth.Option{
		auth.WithHTTPClient(httpClient),
		auth.WithLogger(a.Log.WithField("component", "auth")),
		auth.WithMetrics(a.Metrics),
	}
	if a.socialEnabled() {
		tmOpts = append(tmOpts, auth.WithNotifier(db.NewProfileNotifier(a.DB.Profiles(), cfg.Database.ProfileID)))
	}
	tokens, err := auth.NewTokenManager(auth.Config{
		ClientID:    cfg.Spotify.ClientID,
		RedirectURI: cfg.Spotify.RedirectURI,
		Scopes:      cfg.Spotify.Scopes,
		AuthURL:     cfg.Spotify.AuthURL,
		TokenURL:    cfg.Spotify.TokenURL,
	}, store, tmOpts...)
	if err != nil {
		return fmt.Errorf("creating token manager: %w", err)
	}
	a.Tokens = tokens

	spOpts := []spotify.Option{
		spotify.WithHTTPClient(httpClient),
		spotify.WithTokenProvider(tokens),
		spotify.WithLogger(a.Log.WithField("component", "spotify")),
	}
	if cfg.Spotify.APIBaseURL != "" {
		spOpts = append(spOpts, spotify.WithBaseURL(cfg.Spotify.APIBaseURL))
	}
	a.Catalog = spotify.New(spOpts...)

	summaryCache, err := a.openCache(ctx)
	if err != nil {
		return err
	}

	statsOpts := []stats.Option{
		stats.WithLogger(a.Log.WithField("component", "stats")),
		stats.WithMetrics(a.Metrics),
	}
	if cfg.LastFM.APIKey != "" {
		genres, err := newGenreSource(cfg.LastFM, a.Log)
		if err != nil {
			return err
		}
		statsOpts = append(statsOpts, stats.WithGenreSource(genres))
	}
	a.Stats = stats.NewAggregator(tokens, a.Catalog, summaryCache, statsOpts...)

	refreshOpts := []refresh.Option{
		refresh.WithLogger(a.Log.WithField("component", "refresh")),
	}
	if cfg.Refresh.Interval > 0 {
		refreshOpts = append(refreshOpts, refresh.WithCooldown(cfg.Refresh.Interval))
	}
	a.Refresher = refresh.New(a.Stats, tokens, refreshOpts...)
	return nil
}

func (a *App) socialEnabled() bool {
	return a.DB != nil && a.Config.Database.ProfileID != ""
}

func (a *App) openCache(ctx context.Context) (stats.Cache, error) {
	if a.Config.Cache.Backend == config.CacheMemory {
		return cache.NewMemoryCache(), nil
	}

	path := a.Config.Cache.Path
	if path == "" {
		p, err := cache.DefaultSQLitePath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	c, err := cache.OpenSQLite(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("opening stats cache: %w", err)
	}
	a.closers = append(a.closers, c.Close)
	return c, nil
}

func openStore(cfg config.StoreConfig) (securestore.Store, error) {
	switch cfg.Backend {
	case config.StoreMemory:
		return securestore.NewMemoryStore(), nil
	case config.StoreFile:
		path := cfg.Path
		if path == "" {
			p, err := securestore.DefaultFilePath()
			if err != nil {
				return nil, err
			}
			path = p
		}
		s, err := securestore.NewFileStore(path, cfg.Passphrase)
		if err != nil {
			return nil, fmt.Errorf("opening file store: %w", err)
		}
		return s, nil
	default:
		return securestore.NewKeyringStore(cfg.KeyringService), nil
	}
}

func newGenreSource(cfg config.LastFMConfig, log logrus.FieldLogger) (stats.GenreSource, error) {
	lfmCfg, err := lastfm.NewConfig(cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("configuring last.fm: %w", err)
	}
	client := lastfm.NewClient(lfmCfg, lastfm.WithLogger(log.WithField("component", "lastfm")))
	fetcher := tags.NewCachedGenreFetcher(client)

	opts := []tags.Option{tags.WithLogger(log.WithField("component", "tags"))}
	if cfg.Concurrency > 0 {
		opts = append(opts, tags.WithConcurrency(cfg.Concurrency))
	}
	return tags.NewService(fetcher, opts...), nil
}

// Server builds the HTTP API over the wired components.
func (a *App) Server() *web.Server {
	deps := web.Deps{
		Tokens:    a.Tokens,
		Stats:     a.Stats,
		Refresher: a.Refresher,
		Catalog:   a.Catalog,
		Metrics:   a.Metrics.Handler(),
		Logger:    a.Log.WithField("component", "web"),
	}
	if a.socialEnabled() {
		deps.Profiles = a.DB.Profiles()
		deps.Favorites = a.DB.Favorites()
		deps.Reviews = a.DB.Reviews()
		deps.Comments = a.DB.Comments()
		deps.ProfileID = a.Config.Database.ProfileID
	}
	return web.NewServer(web.ServerConfig{Addr: a.Config.Server.Addr}, deps)
}

// Close releases the cache and database, in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
