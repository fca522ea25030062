package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"

	"github.com/justestif/go-spotify-social/internal/music"
)

var timeRanges = map[music.TimeRange]spotify.Range{
	music.ShortTerm:  spotify.ShortTermRange,
	music.MediumTerm: spotify.MediumTermRange,
	music.LongTerm:   spotify.LongTermRange,
}

func toRange(r music.TimeRange) (spotify.Range, error) {
	sr, ok := timeRanges[r]
	if !ok {
		return "", fmt.Errorf("unknown time range %q", r)
	}
	return sr, nil
}

// TopTracks returns the user's top tracks for the range using token.
func (c *Client) TopTracks(ctx context.Context, token string, r music.TimeRange, limit int) ([]music.Track, error) {
	sr, err := toRange(r)
	if err != nil {
		return nil, err
	}

	page, err := c.api(token).CurrentUsersTopTracks(ctx, spotify.Limit(limit), spotify.Timerange(sr))
	if err != nil {
		return nil, fmt.Errorf("fetching top tracks: %w", wrapError(err))
	}

	tracks := make([]music.Track, len(page.Tracks))
	for i, t := range page.Tracks {
		tracks[i] = convertFullTrack(t)
	}
	c.log.WithField("range", r).WithField("count", len(tracks)).Debug("fetched top tracks")
	return tracks, nil
}

// TopArtists returns the user's top artists for the range using token.
func (c *Client) TopArtists(ctx context.Context, token string, r music.TimeRange, limit int) ([]music.Artist, error) {
	sr, err := toRange(r)
	if err != nil {
		return nil, err
	}

	page, err := c.api(token).CurrentUsersTopArtists(ctx, spotify.Limit(limit), spotify.Timerange(sr))
	if err != nil {
		return nil, fmt.Errorf("fetching top artists: %w", wrapError(err))
	}

	artists := make([]music.Artist, len(page.Artists))
	for i, a := range page.Artists {
		artists[i] = convertFullArtist(a)
	}
	c.log.WithField("range", r).WithField("count", len(artists)).Debug("fetched top artists")
	return artists, nil
}

// RecentlyPlayed returns the user's most recent plays using token.
func (c *Client) RecentlyPlayed(ctx context.Context, token string, limit int) ([]music.Play, error) {
	items, err := c.api(token).PlayerRecentlyPlayedOpt(ctx, &spotify.RecentlyPlayedOptions{Limit: spotify.Numeric(limit)})
	if err != nil {
		return nil, fmt.Errorf("fetching recently played: %w", wrapError(err))
	}

	plays := make([]music.Play, len(items))
	for i, item := range items {
		plays[i] = music.Play{
			Track:    convertSimpleTrack(item.Track),
			PlayedAt: item.PlayedAt,
		}
	}
	c.log.WithField("count", len(plays)).Debug("fetched recently played")
	return plays, nil
}
