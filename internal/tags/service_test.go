package tags

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/justestif/go-spotify-social/internal/music"
)

// mockFetcher implements GenreFetcher for testing.
type mockFetcher struct {
	// genres maps artist name to genres
	genres map[string][]string
	// errors maps artist name to errors
	errors map[string]error
	// callCount tracks number of GetArtistGenres calls
	callCount atomic.Int32
	// delay simulates network latency
	delay time.Duration
}

func newMockFetcher() *mockFetcher {
	return &mockFetcher{
		genres: make(map[string][]string),
		errors: make(map[string]error),
	}
}

func (m *mockFetcher) addGenres(artist string, genres ...string) {
	m.genres[artist] = genres
}

func (m *mockFetcher) addError(artist string, err error) {
	m.errors[artist] = err
}

func (m *mockFetcher) GetArtistGenres(ctx context.Context, artist string, max int) ([]string, error) {
	m.callCount.Add(1)

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err, ok := m.errors[artist]; ok {
		return nil, err
	}
	if g, ok := m.genres[artist]; ok {
		if len(g) > max {
			g = g[:max]
		}
		return g, nil
	}
	return []string{}, nil
}

func TestFetchGenresForArtists_Empty(t *testing.T) {
	svc := NewService(newMockFetcher())

	results, err := svc.FetchGenresForArtists(context.Background(), []Artist{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected empty results, got %d", len(results))
	}
}

func TestFetchGenresForArtists_MultipleArtists(t *testing.T) {
	fetcher := newMockFetcher()
	fetcher.addGenres("Radiohead", "rock", "alternative")
	fetcher.addGenres("Daft Punk", "electronic")

	svc := NewService(fetcher, WithConcurrency(2))
	artists := []Artist{
		{ID: "a1", Name: "Radiohead"},
		{ID: "a2", Name: "Daft Punk"},
		{ID: "a3", Name: "Nobody"},
	}

	results, err := svc.FetchGenresForArtists(context.Background(), artists)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []struct {
		id     string
		source TagSource
		first  string
	}{
		{"a1", SourceLastFM, "rock"},
		{"a2", SourceLastFM, "electronic"},
		{"a3", SourceNone, ""},
	}

	for i, exp := range expected {
		r := results[i]
		if r.ArtistID != exp.id {
			t.Errorf("result[%d]: expected ID %q, got %q", i, exp.id, r.ArtistID)
		}
		if r.Source != exp.source {
			t.Errorf("result[%d]: expected source %q, got %q", i, exp.source, r.Source)
		}
		if exp.first != "" && (len(r.Genres) == 0 || r.Genres[0] != exp.first) {
			t.Errorf("result[%d]: expected first genre %q, got %v", i, exp.first, r.Genres)
		}
	}
}

func TestFetchGenresForArtists_IndividualErrors(t *testing.T) {
	fetcher := newMockFetcher()
	fetcher.addGenres("Good", "rock")
	fetcher.addError("Bad", errors.New("API error"))

	svc := NewService(fetcher)
	results, err := svc.FetchGenresForArtists(context.Background(), []Artist{
		{ID: "a1", Name: "Good"},
		{ID: "a2", Name: "Bad"},
	})
	// Batch should not fail even if individual artists fail
	if err != nil {
		t.Fatalf("unexpected batch error: %v", err)
	}

	if results[0].Error != nil {
		t.Errorf("expected no error for a1, got %v", results[0].Error)
	}
	if results[1].Error == nil {
		t.Error("expected error for a2, got nil")
	}
	if results[1].Source != SourceNone || len(results[1].Genres) != 0 {
		t.Errorf("failed artist result = %+v", results[1])
	}
}

func TestFetchGenresForArtists_ContextCancellation(t *testing.T) {
	fetcher := newMockFetcher()
	fetcher.delay = 100 * time.Millisecond
	fetcher.addGenres("Artist", "rock")

	svc := NewService(fetcher, WithConcurrency(2))

	artists := make([]Artist, 10)
	for i := range artists {
		artists[i] = Artist{ID: "a", Name: "Artist"}
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	results, err := svc.FetchGenresForArtists(ctx, artists)

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled error, got %v", err)
	}
	if len(results) != 10 {
		t.Errorf("expected 10 results, got %d", len(results))
	}
}

func TestFetchGenresForArtists_Concurrency(t *testing.T) {
	fetcher := newMockFetcher()
	fetcher.delay = 10 * time.Millisecond
	fetcher.addGenres("Artist", "rock")

	artists := make([]Artist, 20)
	for i := range artists {
		artists[i] = Artist{ID: "a", Name: "Artist"}
	}

	svc := NewService(fetcher, WithConcurrency(10))

	start := time.Now()
	if _, err := svc.FetchGenresForArtists(context.Background(), artists); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	elapsed := time.Since(start)

	// Sequential would take 200ms
	if elapsed > 150*time.Millisecond {
		t.Errorf("expected concurrent execution, took %v", elapsed)
	}
	if fetcher.callCount.Load() != 20 {
		t.Errorf("expected 20 calls, got %d", fetcher.callCount.Load())
	}
}

func TestFillMissingGenres(t *testing.T) {
	fetcher := newMockFetcher()
	fetcher.addGenres("Indie Band", "indie", "lo-fi", "bedroom pop", "extra")
	fetcher.addError("Broken", errors.New("timeout"))

	svc := NewService(fetcher)
	in := []music.Artist{
		{ID: "a1", Name: "Pop Star", Genres: []string{"pop"}},
		{ID: "a2", Name: "Indie Band", Genres: []string{}},
		{ID: "a3", Name: "Broken"},
	}

	out := svc.FillMissingGenres(context.Background(), in)

	if !reflect.DeepEqual(out[0].Genres, []string{"pop"}) {
		t.Errorf("provider genres changed: %v", out[0].Genres)
	}
	if !reflect.DeepEqual(out[1].Genres, []string{"indie", "lo-fi", "bedroom pop"}) {
		t.Errorf("fallback genres = %v", out[1].Genres)
	}
	if len(out[2].Genres) != 0 {
		t.Errorf("failed lookup should leave artist unchanged, got %v", out[2].Genres)
	}
	if len(in[1].Genres) != 0 {
		t.Error("input slice was mutated")
	}
	// only artists without genres are looked up
	if n := fetcher.callCount.Load(); n != 2 {
		t.Errorf("expected 2 lookups, got %d", n)
	}
}

func TestCachedGenreFetcher(t *testing.T) {
	fetcher := newMockFetcher()
	fetcher.addGenres("Radiohead", "rock")

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cached := NewCachedGenreFetcher(fetcher)
	cached.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := cached.GetArtistGenres(ctx, "Radiohead", 3); err != nil {
			t.Fatalf("GetArtistGenres() error = %v", err)
		}
	}
	if n := fetcher.callCount.Load(); n != 1 {
		t.Errorf("expected 1 upstream call, got %d", n)
	}

	now = now.Add(CacheTTL + time.Hour)
	if _, err := cached.GetArtistGenres(ctx, "radiohead", 3); err != nil {
		t.Fatalf("GetArtistGenres() error = %v", err)
	}
	if n := fetcher.callCount.Load(); n != 2 {
		t.Errorf("expected stale entry to be refetched, got %d calls", n)
	}

	fetcher.addError("Flaky", errors.New("boom"))
	_, _ = cached.GetArtistGenres(ctx, "Flaky", 3)
	_, _ = cached.GetArtistGenres(ctx, "Flaky", 3)
	if n := fetcher.callCount.Load(); n != 4 {
		t.Errorf("errors must not be cached, got %d calls", n)
	}
}

func TestWithConcurrency(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		expected int
	}{
		{"positive value", 10, 10},
		{"zero uses default", 0, DefaultConcurrency},
		{"negative uses default", -1, DefaultConcurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(newMockFetcher(), WithConcurrency(tt.input))

			if svc.concurrency != tt.expected {
				t.Errorf("expected concurrency %d, got %d", tt.expected, svc.concurrency)
			}
		})
	}
}
