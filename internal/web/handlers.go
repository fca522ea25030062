package web

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/justestif/go-spotify-social/internal/auth"
	"github.com/justestif/go-spotify-social/internal/db"
	"github.com/justestif/go-spotify-social/internal/music"
	"github.com/justestif/go-spotify-social/internal/refresh"
	"github.com/justestif/go-spotify-social/internal/stats"
)

// TokenService is the Spotify connection lifecycle.
type TokenService interface {
	BuildAuthorizationRequest(ctx context.Context) (*auth.AuthorizationRequest, error)
	Status(ctx context.Context) auth.ConnectionState
	Disconnect(ctx context.Context) error
	CallbackHandler() http.Handler
}

// StatsService serves listening summaries.
type StatsService interface {
	GetSummary(ctx context.Context, r music.TimeRange, force bool) (*stats.Summary, error)
	Invalidate(ctx context.Context, r music.TimeRange) error
}

// Refresher refreshes every stats bucket.
type Refresher interface {
	Refresh(ctx context.Context, force bool) (*refresh.Result, error)
}

// Catalog is the Spotify catalog pass-through.
type Catalog interface {
	Search(ctx context.Context, query string, limit int) (*music.SearchResults, error)
	Album(ctx context.Context, id string) (*music.Album, error)
	Track(ctx context.Context, id string) (*music.Track, error)
	Artist(ctx context.Context, id string) (*music.Artist, error)
	NewReleases(ctx context.Context, limit int) ([]music.Album, error)
	FeaturedPlaylists(ctx context.Context, limit int) (string, []music.Playlist, error)
}

// Profiles stores user profiles and friend lists.
type Profiles interface {
	Get(ctx context.Context, id string) (*db.Profile, error)
	Update(ctx context.Context, id string, u db.ProfileUpdate) (*db.Profile, error)
	AddFriend(ctx context.Context, id, friendID string) error
	RemoveFriend(ctx context.Context, id, friendID string) error
	Friends(ctx context.Context, id string) ([]db.Profile, error)
}

// Favorites stores saved catalog items.
type Favorites interface {
	Add(ctx context.Context, f *db.Favorite) error
	Remove(ctx context.Context, userID string, itemType db.ItemType, itemID string) error
	List(ctx context.Context, userID string, itemType db.ItemType) ([]db.Favorite, error)
}

// Reviews stores item reviews.
type Reviews interface {
	Create(ctx context.Context, rv *db.Review) error
	Get(ctx context.Context, id uuid.UUID) (*db.Review, error)
	Update(ctx context.Context, rv *db.Review) error
	Delete(ctx context.Context, id uuid.UUID, userID string) error
	ListForItem(ctx context.Context, itemType db.ItemType, itemID string) ([]db.Review, error)
	ListForUser(ctx context.Context, userID string) ([]db.Review, error)
}

// Comments stores review comments.
type Comments interface {
	Create(ctx context.Context, c *db.Comment) error
	ListForReview(ctx context.Context, reviewID uuid.UUID) ([]db.Comment, error)
	Delete(ctx context.Context, id uuid.UUID, userID string) error
}

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	deps Deps
	log  logrus.FieldLogger
}

// Health answers liveness probes (GET /healthz).
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.log, http.StatusOK, map[string]string{"status": "ok"})
}

// loginResponse is returned by Login when the client asks for JSON.
type loginResponse struct {
	URL       string    `json:"url"`
	State     string    `json:"state"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Login starts the PKCE flow (GET /auth/spotify/login). Browsers are
// redirected to the provider; ?format=json returns the URL instead.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	req, err := h.deps.Tokens.BuildAuthorizationRequest(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	if r.URL.Query().Get("format") == "json" {
		writeJSON(w, h.log, http.StatusOK, loginResponse{
			URL:       req.URL,
			State:     req.State,
			ExpiresAt: req.ExpiresAt,
		})
		return
	}
	http.Redirect(w, r, req.URL, http.StatusTemporaryRedirect)
}

// statusResponse describes the Spotify connection.
type statusResponse struct {
	State     auth.ConnectionState `json:"state"`
	Connected bool                 `json:"connected"`
}

// Status reports the connection state (GET /api/spotify/status).
func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	state := h.deps.Tokens.Status(r.Context())
	writeJSON(w, h.log, http.StatusOK, statusResponse{
		State:     state,
		Connected: state == auth.Connected,
	})
}

// Disconnect deletes the stored credential (POST /api/spotify/disconnect).
func (h *Handlers) Disconnect(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Tokens.Disconnect(r.Context()); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
