// Package music defines provider-agnostic catalog types shared by the
// catalog client, the stats aggregator and the HTTP API.
package music

import "time"

// TimeRange is the aggregation window the provider uses to scope
// "top items" queries.
type TimeRange string

const (
	// ShortTerm covers roughly the last four weeks.
	ShortTerm TimeRange = "short_term"
	// MediumTerm covers roughly the last six months.
	MediumTerm TimeRange = "medium_term"
	// LongTerm covers the user's whole history.
	LongTerm TimeRange = "long_term"
)

// TimeRanges lists every bucket in display order.
var TimeRanges = []TimeRange{ShortTerm, MediumTerm, LongTerm}

// ParseTimeRange accepts the provider names ("short_term") and the short
// aliases used by the app ("short", "medium", "long").
func ParseTimeRange(s string) (TimeRange, bool) {
	switch s {
	case "short_term", "short":
		return ShortTerm, true
	case "medium_term", "medium":
		return MediumTerm, true
	case "long_term", "long":
		return LongTerm, true
	}
	return "", false
}

// ArtistRef is the compact artist reference embedded in tracks and albums.
type ArtistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Track is a catalog track.
type Track struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Artists    []ArtistRef `json:"artists"`
	Album      string      `json:"album,omitempty"`
	AlbumID    string      `json:"albumId,omitempty"`
	ImageURL   string      `json:"imageUrl,omitempty"`
	DurationMs int         `json:"durationMs"`
	Popularity int         `json:"popularity,omitempty"`
}

// Artist is a catalog artist with its genre tags.
type Artist struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Genres     []string `json:"genres"`
	ImageURL   string   `json:"imageUrl,omitempty"`
	Popularity int      `json:"popularity,omitempty"`
	Followers  int      `json:"followers,omitempty"`
}

// Album is a catalog album.
type Album struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Artists     []ArtistRef `json:"artists"`
	ImageURL    string      `json:"imageUrl,omitempty"`
	ReleaseDate string      `json:"releaseDate,omitempty"`
	Tracks      []Track     `json:"tracks,omitempty"`
}

// Playlist is a catalog playlist summary.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Owner       string `json:"owner,omitempty"`
}

// Play is one entry of the user's recently played history.
type Play struct {
	Track    Track     `json:"track"`
	PlayedAt time.Time `json:"playedAt"`
}

// SearchResults groups search hits by item type.
type SearchResults struct {
	Tracks    []Track    `json:"tracks"`
	Artists   []Artist   `json:"artists"`
	Albums    []Album    `json:"albums"`
	Playlists []Playlist `json:"playlists"`
}

// ArtistNames joins the artist names of a track with ", ".
func (t Track) ArtistNames() string {
	names := ""
	for i, a := range t.Artists {
		if i > 0 {
			names += ", "
		}
		names += a.Name
	}
	return names
}
