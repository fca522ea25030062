package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/justestif/go-spotify-social/internal/music"
)

func genreArtists(genres ...[]string) []music.Artist {
	out := make([]music.Artist, len(genres))
	for i, g := range genres {
		out[i] = music.Artist{ID: string(rune('a' + i)), Genres: g}
	}
	return out
}

func TestRankGenres(t *testing.T) {
	tests := []struct {
		name    string
		artists []music.Artist
		want    []string
	}{
		{
			name:    "frequency then first seen",
			artists: genreArtists([]string{"pop", "rock"}, []string{"pop"}, []string{"jazz"}),
			want:    []string{"pop", "rock", "jazz"},
		},
		{
			name:    "later genre overtakes on count",
			artists: genreArtists([]string{"folk"}, []string{"metal"}, []string{"metal"}),
			want:    []string{"metal", "folk"},
		},
		{
			name: "truncated to five",
			artists: genreArtists(
				[]string{"a", "b", "c", "d", "e", "f"},
				[]string{"f"},
			),
			want: []string{"f", "a", "b", "c", "d"},
		},
		{
			name:    "no genres",
			artists: genreArtists(nil, nil),
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rankGenres(tt.artists, MaxTopGenres))
		})
	}
}

func TestDistinctArtists(t *testing.T) {
	artists := []music.Artist{{ID: "1"}, {ID: "2"}, {ID: "1"}}
	assert.Equal(t, 2, distinctArtists(artists))
	assert.Equal(t, 0, distinctArtists(nil))
}

func TestEstimateListening(t *testing.T) {
	track := func(ms int) music.Track { return music.Track{DurationMs: ms} }
	play := func(ms int) music.Play { return music.Play{Track: track(ms)} }

	tests := []struct {
		name        string
		tracks      []music.Track
		plays       []music.Play
		wantMinutes int
		wantSongs   int
	}{
		{"empty", nil, nil, 0, 0},
		{"tracks average, plays sample", []music.Track{track(120000), track(240000)}, []music.Play{play(1), play(1), play(1)}, 180, 60},
		{"tracks only", []music.Track{track(200000)}, nil, 66, 20},
		{"plays only", nil, []music.Play{play(60000), play(120000)}, 60, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			minutes, songs := estimateListening(tt.tracks, tt.plays)
			assert.Equal(t, tt.wantMinutes, minutes)
			assert.Equal(t, tt.wantSongs, songs)
		})
	}
}

func TestDailyAverage(t *testing.T) {
	assert.Equal(t, 0, dailyAverage(0))
	assert.Equal(t, 7, dailyAverage(600))
	assert.Equal(t, 1, dailyAverage(45))
	assert.Equal(t, 0, dailyAverage(44))
}

func TestListeningStreak(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	at := func(days, hour int) music.Play {
		return music.Play{PlayedAt: time.Date(2024, 3, 10-days, hour, 0, 0, 0, time.UTC)}
	}

	tests := []struct {
		name  string
		plays []music.Play
		want  int
	}{
		{"no plays", nil, 0},
		{"today only", []music.Play{at(0, 8)}, 1},
		{"ends today", []music.Play{at(0, 1), at(1, 23), at(2, 12), at(4, 12)}, 3},
		{"ends yesterday", []music.Play{at(1, 10), at(2, 10), at(2, 11)}, 2},
		{"older than yesterday", []music.Play{at(2, 10), at(3, 10)}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, listeningStreak(tt.plays, now))
		})
	}
}
