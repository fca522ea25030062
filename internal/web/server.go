// Package web serves the JSON API: Spotify connection, listening stats,
// catalog pass-through and the social endpoints.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/justestif/go-spotify-social/internal/logging"
)

// DefaultAddr is the default server address.
const DefaultAddr = "127.0.0.1:8080"

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr string
}

// Deps are the services behind the API. Nil Refresher, Catalog, Metrics or
// social stores leave their routes unmounted.
type Deps struct {
	Tokens    TokenService
	Stats     StatsService
	Refresher Refresher
	Catalog   Catalog

	Profiles  Profiles
	Favorites Favorites
	Reviews   Reviews
	Comments  Comments
	// ProfileID is the profile the social "me" routes act on.
	ProfileID string

	Metrics http.Handler
	Logger  logrus.FieldLogger
}

// Server is the HTTP server for the API.
type Server struct {
	router   chi.Router
	server   *http.Server
	handlers *Handlers
	log      logrus.FieldLogger
}

// NewServer creates a new API server.
func NewServer(cfg ServerConfig, deps Deps) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	log := deps.Logger
	if log == nil {
		log = logging.Discard()
	}

	router := chi.NewRouter()
	s := &Server{
		router:   router,
		handlers: &Handlers{deps: deps, log: log},
		log:      log,
	}

	// Configure middleware
	s.setupMiddleware()

	// Configure routes
	s.setupRoutes()

	// Create HTTP server
	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware for the router.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.RequestLogger(&requestLogFormatter{log: s.log}))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(securityHeaders)
}

// setupRoutes configures routes for the application.
func (s *Server) setupRoutes() {
	h := s.handlers
	deps := h.deps

	s.router.Get("/healthz", h.Health)
	if deps.Metrics != nil {
		s.router.Handle("/metrics", deps.Metrics)
	}

	// Auth routes
	s.router.Get("/auth/spotify/login", h.Login)
	s.router.Handle("/callback", deps.Tokens.CallbackHandler())

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/spotify/status", h.Status)
		r.Post("/spotify/disconnect", h.Disconnect)

		r.Route("/stats", func(r chi.Router) {
			if deps.Refresher != nil {
				r.Post("/refresh", h.RefreshAll)
			}
			r.Get("/{range}", h.GetStats)
			r.Delete("/{range}", h.InvalidateStats)
		})

		if deps.Catalog != nil {
			r.Route("/catalog", func(r chi.Router) {
				r.Get("/search", h.Search)
				r.Get("/albums/{id}", h.Album)
				r.Get("/tracks/{id}", h.Track)
				r.Get("/artists/{id}", h.Artist)
				r.Get("/new-releases", h.NewReleases)
				r.Get("/featured-playlists", h.FeaturedPlaylists)
			})
		}

		if deps.Profiles != nil {
			r.Route("/profiles", func(r chi.Router) {
				r.Get("/me", h.GetMyProfile)
				r.Patch("/me", h.UpdateMyProfile)
				r.Get("/me/friends", h.ListFriends)
				r.Put("/me/friends/{id}", h.AddFriend)
				r.Delete("/me/friends/{id}", h.RemoveFriend)
				r.Get("/{id}", h.GetProfile)
			})
		}

		if deps.Favorites != nil {
			r.Get("/favorites", h.ListFavorites)
			r.Put("/favorites/{type}/{id}", h.AddFavorite)
			r.Delete("/favorites/{type}/{id}", h.RemoveFavorite)
		}

		if deps.Reviews != nil {
			r.Route("/reviews", func(r chi.Router) {
				r.Get("/", h.ListReviews)
				r.Post("/", h.CreateReview)
				r.Get("/{id}", h.GetReview)
				r.Put("/{id}", h.UpdateReview)
				r.Delete("/{id}", h.DeleteReview)
				if deps.Comments != nil {
					r.Get("/{id}/comments", h.ListComments)
					r.Post("/{id}/comments", h.CreateComment)
				}
			})
		}

		if deps.Comments != nil {
			r.Delete("/comments/{id}", h.DeleteComment)
		}
	})
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.log.WithField("addr", s.server.Addr).Info("starting server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Run starts the server and shuts it down gracefully when ctx is done.
func (s *Server) Run(ctx context.Context) error {
	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for cancellation or error
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.log.Info("shutting down server")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.log.Info("server stopped")
	return nil
}
