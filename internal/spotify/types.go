package spotify

import (
	"github.com/zmb3/spotify/v2"

	"github.com/justestif/go-spotify-social/internal/music"
)

// convertFullTrack converts a Spotify FullTrack to music.Track.
func convertFullTrack(t spotify.FullTrack) music.Track {
	track := convertSimpleTrack(t.SimpleTrack)
	track.Album = t.Album.Name
	track.AlbumID = t.Album.ID.String()
	track.ImageURL = firstImage(t.Album.Images)
	track.Popularity = int(t.Popularity)
	return track
}

// convertSimpleTrack converts a track without album or popularity data.
func convertSimpleTrack(t spotify.SimpleTrack) music.Track {
	return music.Track{
		ID:         t.ID.String(),
		Name:       t.Name,
		Artists:    convertArtistRefs(t.Artists),
		DurationMs: int(t.Duration),
	}
}

func convertArtistRefs(artists []spotify.SimpleArtist) []music.ArtistRef {
	refs := make([]music.ArtistRef, len(artists))
	for i, a := range artists {
		refs[i] = music.ArtistRef{ID: a.ID.String(), Name: a.Name}
	}
	return refs
}

// convertFullArtist converts a Spotify FullArtist; Genres is never nil.
func convertFullArtist(a spotify.FullArtist) music.Artist {
	genres := a.Genres
	if genres == nil {
		genres = []string{}
	}
	return music.Artist{
		ID:         a.ID.String(),
		Name:       a.Name,
		Genres:     genres,
		ImageURL:   firstImage(a.Images),
		Popularity: int(a.Popularity),
		Followers:  int(a.Followers.Count),
	}
}

func convertSimpleAlbum(a spotify.SimpleAlbum) music.Album {
	return music.Album{
		ID:          a.ID.String(),
		Name:        a.Name,
		Artists:     convertArtistRefs(a.Artists),
		ImageURL:    firstImage(a.Images),
		ReleaseDate: a.ReleaseDate,
	}
}

func convertFullAlbum(a spotify.FullAlbum) music.Album {
	album := convertSimpleAlbum(a.SimpleAlbum)
	album.Tracks = make([]music.Track, len(a.Tracks.Tracks))
	for i, t := range a.Tracks.Tracks {
		track := convertSimpleTrack(t)
		track.Album = album.Name
		track.AlbumID = album.ID
		track.ImageURL = album.ImageURL
		album.Tracks[i] = track
	}
	return album
}

func convertPlaylist(p spotify.SimplePlaylist) music.Playlist {
	return music.Playlist{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		ImageURL:    firstImage(p.Images),
		Owner:       p.Owner.DisplayName,
	}
}

// firstImage returns the first (largest) image URL, or "".
func firstImage(images []spotify.Image) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}
