package web

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/justestif/go-spotify-social/internal/music"
)

const defaultCatalogLimit = 20

// Search searches the catalog (GET /api/catalog/search?q=...&limit=...).
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, h.log, fmt.Errorf("%w: missing q parameter", errBadRequest))
		return
	}

	results, err := h.deps.Catalog.Search(r.Context(), q, queryLimit(r, defaultCatalogLimit))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, results)
}

// Album returns one album with its tracks (GET /api/catalog/albums/{id}).
func (h *Handlers) Album(w http.ResponseWriter, r *http.Request) {
	album, err := h.deps.Catalog.Album(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, album)
}

// Track returns one track (GET /api/catalog/tracks/{id}).
func (h *Handlers) Track(w http.ResponseWriter, r *http.Request) {
	track, err := h.deps.Catalog.Track(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, track)
}

// Artist returns one artist (GET /api/catalog/artists/{id}).
func (h *Handlers) Artist(w http.ResponseWriter, r *http.Request) {
	artist, err := h.deps.Catalog.Artist(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, artist)
}

// NewReleases lists new album releases (GET /api/catalog/new-releases).
func (h *Handlers) NewReleases(w http.ResponseWriter, r *http.Request) {
	albums, err := h.deps.Catalog.NewReleases(r.Context(), queryLimit(r, defaultCatalogLimit))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if albums == nil {
		albums = []music.Album{}
	}
	writeJSON(w, h.log, http.StatusOK, albums)
}

type featuredResponse struct {
	Message   string           `json:"message"`
	Playlists []music.Playlist `json:"playlists"`
}

// FeaturedPlaylists lists featured playlists (GET /api/catalog/featured-playlists).
func (h *Handlers) FeaturedPlaylists(w http.ResponseWriter, r *http.Request) {
	msg, playlists, err := h.deps.Catalog.FeaturedPlaylists(r.Context(), queryLimit(r, defaultCatalogLimit))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if playlists == nil {
		playlists = []music.Playlist{}
	}
	writeJSON(w, h.log, http.StatusOK, featuredResponse{Message: msg, Playlists: playlists})
}
