package lastfm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"
)

func artistTags(tags ...Tag) artistTagsResponse {
	var resp artistTagsResponse
	resp.TopTags.Tag = tags
	return resp
}

func newTestClient(server *httptest.Server) *Client {
	return NewClient(&Config{APIKey: "test-api-key"},
		WithHTTPClient(server.Client()),
		WithBaseURL(server.URL+"/"),
	)
}

func TestGetArtistTags(t *testing.T) {
	tests := []struct {
		name     string
		response any
		wantTags []Tag
		wantErr  error
	}{
		{
			name: "artist has tags",
			response: artistTags(
				Tag{Name: "alternative", Count: 100, URL: "http://last.fm/tag/alternative"},
				Tag{Name: "rock", Count: 80, URL: "http://last.fm/tag/rock"},
			),
			wantTags: []Tag{
				{Name: "alternative", Count: 100, URL: "http://last.fm/tag/alternative"},
				{Name: "rock", Count: 80, URL: "http://last.fm/tag/rock"},
			},
		},
		{
			name:     "no tags returns empty slice",
			response: artistTags(),
			wantTags: []Tag{},
		},
		{
			name:     "invalid API key",
			response: apiError{Error: 10, Message: "Invalid API key"},
			wantErr:  ErrInvalidAPIKey,
		},
		{
			name:     "unknown artist",
			response: apiError{Error: 6, Message: "The artist you supplied could not be found"},
			wantErr:  ErrArtistNotFound,
		},
		{
			name:     "rate limited is not retried",
			response: apiError{Error: 29, Message: "Rate limit exceeded"},
			wantErr:  ErrRateLimited,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var requests atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				requests.Add(1)
				if got := r.URL.Query().Get("method"); got != "artist.getTopTags" {
					t.Errorf("method = %q, want artist.getTopTags", got)
				}
				if got := r.URL.Query().Get("artist"); got != "Radiohead" {
					t.Errorf("artist = %q, want Radiohead", got)
				}
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(tt.response)
			}))
			defer server.Close()

			tags, err := newTestClient(server).GetArtistTags(context.Background(), "Radiohead")

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("GetArtistTags() error = %v, want %v", err, tt.wantErr)
				}
				if n := requests.Load(); n != 1 {
					t.Errorf("requests = %d, want 1", n)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetArtistTags() error = %v", err)
			}
			if !reflect.DeepEqual(tags, tt.wantTags) {
				t.Errorf("GetArtistTags() = %v, want %v", tags, tt.wantTags)
			}
		})
	}
}

func TestGetArtistGenres(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(artistTags(
			Tag{Name: "Indie Rock"},
			Tag{Name: "indie rock"},
			Tag{Name: " Shoegaze "},
			Tag{Name: ""},
			Tag{Name: "dream pop"},
			Tag{Name: "seen live"},
		))
	}))
	defer server.Close()

	got, err := newTestClient(server).GetArtistGenres(context.Background(), "Slowdive", 3)
	if err != nil {
		t.Fatalf("GetArtistGenres() error = %v", err)
	}
	want := []string{"indie rock", "shoegaze", "dream pop"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetArtistGenres() = %v, want %v", got, want)
	}
}

func TestGetArtistTags_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	if _, err := newTestClient(server).GetArtistTags(context.Background(), "X"); err == nil {
		t.Error("GetArtistTags() error = nil, want error for 502")
	}
}

func TestNewClient(t *testing.T) {
	cfg := &Config{APIKey: "test-key"}
	client := NewClient(cfg)

	if client.apiKey != "test-key" {
		t.Errorf("NewClient() apiKey = %s, want test-key", client.apiKey)
	}
	if client.httpClient == nil {
		t.Error("NewClient() httpClient is nil")
	}
	if client.baseURL != baseURL {
		t.Errorf("NewClient() baseURL = %s, want %s", client.baseURL, baseURL)
	}
	if client.log == nil {
		t.Error("NewClient() log is nil")
	}
}

func TestNewClient_Options(t *testing.T) {
	hc := &http.Client{}
	client := NewClient(&Config{APIKey: "k"}, WithHTTPClient(hc), WithBaseURL("http://localhost/"))

	if client.httpClient != hc {
		t.Error("WithHTTPClient() not applied")
	}
	if client.baseURL != "http://localhost/" {
		t.Errorf("WithBaseURL() baseURL = %s", client.baseURL)
	}
}
