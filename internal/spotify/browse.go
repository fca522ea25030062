package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"

	"github.com/justestif/go-spotify-social/internal/music"
)

// Search queries tracks, artists, albums and playlists.
func (c *Client) Search(ctx context.Context, query string, limit int) (*music.SearchResults, error) {
	api, err := c.userAPI(ctx)
	if err != nil {
		return nil, err
	}

	types := spotify.SearchTypeTrack | spotify.SearchTypeArtist | spotify.SearchTypeAlbum | spotify.SearchTypePlaylist
	res, err := api.Search(ctx, query, types, spotify.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("searching catalog: %w", wrapError(err))
	}

	out := &music.SearchResults{
		Tracks:    []music.Track{},
		Artists:   []music.Artist{},
		Albums:    []music.Album{},
		Playlists: []music.Playlist{},
	}
	if res.Tracks != nil {
		for _, t := range res.Tracks.Tracks {
			out.Tracks = append(out.Tracks, convertFullTrack(t))
		}
	}
	if res.Artists != nil {
		for _, a := range res.Artists.Artists {
			out.Artists = append(out.Artists, convertFullArtist(a))
		}
	}
	if res.Albums != nil {
		for _, a := range res.Albums.Albums {
			out.Albums = append(out.Albums, convertSimpleAlbum(a))
		}
	}
	if res.Playlists != nil {
		for _, p := range res.Playlists.Playlists {
			out.Playlists = append(out.Playlists, convertPlaylist(p))
		}
	}
	return out, nil
}

// Album returns an album with its first page of tracks.
func (c *Client) Album(ctx context.Context, id string) (*music.Album, error) {
	api, err := c.userAPI(ctx)
	if err != nil {
		return nil, err
	}
	a, err := api.GetAlbum(ctx, spotify.ID(id))
	if err != nil {
		return nil, fmt.Errorf("getting album %s: %w", id, wrapError(err))
	}
	album := convertFullAlbum(*a)
	return &album, nil
}

// Track returns a single track.
func (c *Client) Track(ctx context.Context, id string) (*music.Track, error) {
	api, err := c.userAPI(ctx)
	if err != nil {
		return nil, err
	}
	t, err := api.GetTrack(ctx, spotify.ID(id))
	if err != nil {
		return nil, fmt.Errorf("getting track %s: %w", id, wrapError(err))
	}
	track := convertFullTrack(*t)
	return &track, nil
}

// Artist returns a single artist.
func (c *Client) Artist(ctx context.Context, id string) (*music.Artist, error) {
	api, err := c.userAPI(ctx)
	if err != nil {
		return nil, err
	}
	a, err := api.GetArtist(ctx, spotify.ID(id))
	if err != nil {
		return nil, fmt.Errorf("getting artist %s: %w", id, wrapError(err))
	}
	artist := convertFullArtist(*a)
	return &artist, nil
}

// NewReleases returns newly released albums.
func (c *Client) NewReleases(ctx context.Context, limit int) ([]music.Album, error) {
	api, err := c.userAPI(ctx)
	if err != nil {
		return nil, err
	}
	page, err := api.NewReleases(ctx, spotify.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("getting new releases: %w", wrapError(err))
	}

	albums := make([]music.Album, len(page.Albums))
	for i, a := range page.Albums {
		albums[i] = convertSimpleAlbum(a)
	}
	return albums, nil
}

// FeaturedPlaylists returns the editorial message and featured playlists.
func (c *Client) FeaturedPlaylists(ctx context.Context, limit int) (string, []music.Playlist, error) {
	api, err := c.userAPI(ctx)
	if err != nil {
		return "", nil, err
	}
	msg, page, err := api.FeaturedPlaylists(ctx, spotify.Limit(limit))
	if err != nil {
		return "", nil, fmt.Errorf("getting featured playlists: %w", wrapError(err))
	}

	playlists := make([]music.Playlist, len(page.Playlists))
	for i, p := range page.Playlists {
		playlists[i] = convertPlaylist(p)
	}
	return msg, playlists, nil
}
