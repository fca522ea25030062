package spotify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/zmb3/spotify/v2"

	"github.com/justestif/go-spotify-social/internal/music"
)

func TestConvertFullTrack(t *testing.T) {
	tests := []struct {
		name        string
		track       spotify.FullTrack
		wantArtists string
		wantAlbum   string
		wantImage   string
		wantMs      int
	}{
		{
			name: "single artist",
			track: spotify.FullTrack{
				SimpleTrack: spotify.SimpleTrack{
					ID:       "track123",
					Name:     "Test Song",
					Duration: 180000,
					Artists:  []spotify.SimpleArtist{{ID: "a1", Name: "Artist One"}},
				},
				Album: spotify.SimpleAlbum{
					ID:     "album1",
					Name:   "Album One",
					Images: []spotify.Image{{URL: "http://img/large"}, {URL: "http://img/small"}},
				},
			},
			wantArtists: "Artist One",
			wantAlbum:   "Album One",
			wantImage:   "http://img/large",
			wantMs:      180000,
		},
		{
			name: "multiple artists no images",
			track: spotify.FullTrack{
				SimpleTrack: spotify.SimpleTrack{
					ID:   "track456",
					Name: "Collab Track",
					Artists: []spotify.SimpleArtist{
						{Name: "Artist A"},
						{Name: "Artist B"},
						{Name: "Artist C"},
					},
				},
			},
			wantArtists: "Artist A, Artist B, Artist C",
		},
		{
			name: "no artists",
			track: spotify.FullTrack{
				SimpleTrack: spotify.SimpleTrack{ID: "track000", Name: "Unknown Track"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := convertFullTrack(tt.track)

			if got.ID != tt.track.ID.String() {
				t.Errorf("ID = %q, want %q", got.ID, tt.track.ID)
			}
			if got.ArtistNames() != tt.wantArtists {
				t.Errorf("ArtistNames() = %q, want %q", got.ArtistNames(), tt.wantArtists)
			}
			if got.Album != tt.wantAlbum {
				t.Errorf("Album = %q, want %q", got.Album, tt.wantAlbum)
			}
			if got.ImageURL != tt.wantImage {
				t.Errorf("ImageURL = %q, want %q", got.ImageURL, tt.wantImage)
			}
			if got.DurationMs != tt.wantMs {
				t.Errorf("DurationMs = %d, want %d", got.DurationMs, tt.wantMs)
			}
		})
	}
}

func TestConvertFullArtist_NilGenres(t *testing.T) {
	got := convertFullArtist(spotify.FullArtist{SimpleArtist: spotify.SimpleArtist{ID: "a1", Name: "A"}})
	if got.Genres == nil {
		t.Error("Genres = nil, want empty slice")
	}
}

// newTestServer serves canned JSON per path and records the bearer token.
func newTestServer(t *testing.T, routes map[string]string, status int) (*httptest.Server, *string) {
	t.Helper()
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"status":404,"message":"not found"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &gotAuth
}

type staticTokens string

func (s staticTokens) GetValidAccessToken(context.Context) (string, error) {
	return string(s), nil
}

func TestTopTracks(t *testing.T) {
	srv, auth := newTestServer(t, map[string]string{
		"/me/top/tracks": `{"items":[{"id":"t1","name":"Song","duration_ms":200000,"popularity":70,
			"artists":[{"id":"a1","name":"A"}],
			"album":{"id":"al1","name":"Alb","images":[{"url":"http://img"}]}}],
			"total":1,"limit":50,"offset":0}`,
	}, http.StatusOK)

	c := New(WithBaseURL(srv.URL + "/"))
	tracks, err := c.TopTracks(context.Background(), "tok", music.ShortTerm, 50)
	if err != nil {
		t.Fatalf("TopTracks() error = %v", err)
	}

	if *auth != "Bearer tok" {
		t.Errorf("Authorization = %q, want %q", *auth, "Bearer tok")
	}
	if len(tracks) != 1 {
		t.Fatalf("got %d tracks, want 1", len(tracks))
	}
	if tracks[0].DurationMs != 200000 || tracks[0].Album != "Alb" || tracks[0].Popularity != 70 {
		t.Errorf("track = %+v", tracks[0])
	}
}

func TestTopArtists(t *testing.T) {
	srv, _ := newTestServer(t, map[string]string{
		"/me/top/artists": `{"items":[{"id":"a1","name":"A","genres":["pop","rock"],"popularity":50,
			"followers":{"total":10},"images":[]}]}`,
	}, http.StatusOK)

	c := New(WithBaseURL(srv.URL + "/"))
	artists, err := c.TopArtists(context.Background(), "tok", music.LongTerm, 50)
	if err != nil {
		t.Fatalf("TopArtists() error = %v", err)
	}
	if len(artists) != 1 || len(artists[0].Genres) != 2 || artists[0].Followers != 10 {
		t.Errorf("artists = %+v", artists)
	}
}

func TestTopTracks_UnknownRange(t *testing.T) {
	c := New()
	if _, err := c.TopTracks(context.Background(), "tok", music.TimeRange("forever"), 50); err == nil {
		t.Error("TopTracks() with unknown range should fail")
	}
}

func TestRecentlyPlayed(t *testing.T) {
	srv, _ := newTestServer(t, map[string]string{
		"/me/player/recently-played": `{"items":[
			{"track":{"id":"t1","name":"Song","duration_ms":120000,"artists":[{"id":"a1","name":"A"}]},
			 "played_at":"2025-03-01T10:00:00Z"}]}`,
	}, http.StatusOK)

	c := New(WithBaseURL(srv.URL + "/"))
	plays, err := c.RecentlyPlayed(context.Background(), "tok", 50)
	if err != nil {
		t.Fatalf("RecentlyPlayed() error = %v", err)
	}
	if len(plays) != 1 {
		t.Fatalf("got %d plays, want 1", len(plays))
	}
	want := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	if !plays[0].PlayedAt.Equal(want) {
		t.Errorf("PlayedAt = %v, want %v", plays[0].PlayedAt, want)
	}
	if plays[0].Track.DurationMs != 120000 {
		t.Errorf("DurationMs = %d, want 120000", plays[0].Track.DurationMs)
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		status        int
		wantStatus    int
		wantMalformed bool
	}{
		{
			name:       "provider error",
			body:       `{"error":{"status":503,"message":"unavailable"}}`,
			status:     http.StatusServiceUnavailable,
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "unauthorized",
			body:       `{"error":{"status":401,"message":"The access token expired"}}`,
			status:     http.StatusUnauthorized,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:          "malformed body",
			body:          `{"items": [`,
			status:        http.StatusOK,
			wantMalformed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, map[string]string{"/me/top/tracks": tt.body}, tt.status)
			c := New(WithBaseURL(srv.URL + "/"))

			_, err := c.TopTracks(context.Background(), "tok", music.MediumTerm, 50)
			if err == nil {
				t.Fatal("TopTracks() error = nil")
			}

			var pErr *music.ProviderError
			if tt.wantStatus != 0 {
				if !errors.As(err, &pErr) || pErr.StatusCode != tt.wantStatus {
					t.Errorf("error = %v, want ProviderError %d", err, tt.wantStatus)
				}
			}
			if tt.wantMalformed && !errors.Is(err, music.ErrMalformedResponse) {
				t.Errorf("error = %v, want ErrMalformedResponse", err)
			}
		})
	}
}

func TestSearch_UsesTokenProvider(t *testing.T) {
	srv, auth := newTestServer(t, map[string]string{
		"/search": `{
			"tracks":{"items":[{"id":"t1","name":"Song","artists":[{"id":"a1","name":"A"}],"album":{"id":"al","name":"Alb"}}]},
			"artists":{"items":[{"id":"a1","name":"A","genres":["pop"]}]},
			"albums":{"items":[{"id":"al","name":"Alb","release_date":"2020-01-01"}]},
			"playlists":{"items":[{"id":"p1","name":"Mix","description":"d","owner":{"display_name":"me"}}]}
		}`,
	}, http.StatusOK)

	c := New(WithBaseURL(srv.URL+"/"), WithTokenProvider(staticTokens("user-token")))
	res, err := c.Search(context.Background(), "song", 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if *auth != "Bearer user-token" {
		t.Errorf("Authorization = %q", *auth)
	}
	if len(res.Tracks) != 1 || len(res.Artists) != 1 || len(res.Albums) != 1 || len(res.Playlists) != 1 {
		t.Errorf("results = %+v", res)
	}
	if res.Playlists[0].Owner != "me" || res.Albums[0].ReleaseDate != "2020-01-01" {
		t.Errorf("results = %+v", res)
	}
}

func TestSearch_NoTokenProvider(t *testing.T) {
	if _, err := New().Search(context.Background(), "x", 10); err == nil {
		t.Error("Search() without token provider should fail")
	}
}
