// Package stats aggregates a user's listening statistics per time range.
//
// A summary is built from three catalog calls issued in parallel (top tracks,
// top artists and recently played) and reduced into estimated listening
// metrics. The numeric projection is cached for one hour per time range.
// Minutes and song counts are estimates extrapolated from a 50-item sample,
// not measured playback.
package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/justestif/go-spotify-social/internal/clustering"
	"github.com/justestif/go-spotify-social/internal/logging"
	"github.com/justestif/go-spotify-social/internal/metrics"
	"github.com/justestif/go-spotify-social/internal/music"
)

// FreshFor is how long a cached summary is served without a network call.
const FreshFor = time.Hour

// DefaultLimit is the number of items requested from each catalog endpoint.
const DefaultLimit = 50

// TokenProvider hands out a bearer token, refreshing it when needed.
type TokenProvider interface {
	GetValidAccessToken(ctx context.Context) (string, error)
}

// Source is the catalog the aggregator reads from.
type Source interface {
	TopTracks(ctx context.Context, token string, r music.TimeRange, limit int) ([]music.Track, error)
	TopArtists(ctx context.Context, token string, r music.TimeRange, limit int) ([]music.Artist, error)
	RecentlyPlayed(ctx context.Context, token string, limit int) ([]music.Play, error)
}

// GenreSource fills in genres for artists the catalog returned without any.
type GenreSource interface {
	FillMissingGenres(ctx context.Context, artists []music.Artist) []music.Artist
}

// Cache stores one compact JSON blob per key. Get returns nil, nil when the
// key is absent.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// CompactSummary is the projection written to the cache.
type CompactSummary struct {
	MinutesListened     int       `json:"minutesListened"`
	AverageDailyMinutes int       `json:"averageDailyMinutes"`
	ArtistsListened     int       `json:"artistsListened"`
	SongsPlayed         int       `json:"songsPlayed"`
	ListeningStreak     int       `json:"listeningStreak"`
	LastUpdated         time.Time `json:"lastUpdated"`
}

// Summary is the full statistics for one time range. Only the numeric fields
// survive a cache round trip; a summary served from cache has no genres,
// tracks, artists or clusters.
type Summary struct {
	TimeRange           music.TimeRange            `json:"timeRange"`
	MinutesListened     int                        `json:"minutesListened"`     // estimate
	AverageDailyMinutes int                        `json:"averageDailyMinutes"` // estimate
	ArtistsListened     int                        `json:"artistsListened"`
	SongsPlayed         int                        `json:"songsPlayed"` // estimate
	ListeningStreak     int                        `json:"listeningStreak"`
	TopGenres           []string                   `json:"topGenres"`
	TopTracks           []music.Track              `json:"topTracks,omitempty"`
	TopArtists          []music.Artist             `json:"topArtists,omitempty"`
	TasteClusters       []clustering.ArtistCluster `json:"tasteClusters,omitempty"`
	LastUpdated         time.Time                  `json:"lastUpdated"`
	FromCache           bool                       `json:"fromCache"`
	Partial             bool                       `json:"partial"`
	FailedSources       []string                   `json:"failedSources,omitempty"`
}

// Compact returns the cached projection of s.
func (s *Summary) Compact() CompactSummary {
	return CompactSummary{
		MinutesListened:     s.MinutesListened,
		AverageDailyMinutes: s.AverageDailyMinutes,
		ArtistsListened:     s.ArtistsListened,
		SongsPlayed:         s.SongsPlayed,
		ListeningStreak:     s.ListeningStreak,
		LastUpdated:         s.LastUpdated,
	}
}

// Aggregator computes and caches summaries.
type Aggregator struct {
	tokens   TokenProvider
	source   Source
	cache    Cache
	genres   GenreSource
	clusters clustering.Config
	limit    int
	now      func() time.Time
	log      logrus.FieldLogger
	metrics  *metrics.Recorder
	group    singleflight.Group

	// latest holds the last complete summary per range for this process.
	// The cache only keeps the compact projection.
	mu     sync.Mutex
	latest map[music.TimeRange]*Summary
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithGenreSource enables genre fallback for artists without catalog genres.
func WithGenreSource(g GenreSource) Option {
	return func(a *Aggregator) {
		a.genres = g
	}
}

// WithClusterConfig sets the taste clustering parameters.
func WithClusterConfig(cfg clustering.Config) Option {
	return func(a *Aggregator) {
		a.clusters = cfg
	}
}

// WithLimit sets the per-endpoint item limit.
func WithLimit(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.limit = n
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		a.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(a *Aggregator) {
		a.log = l
	}
}

// WithMetrics records cache lookups and fetch timings.
func WithMetrics(r *metrics.Recorder) Option {
	return func(a *Aggregator) {
		a.metrics = r
	}
}

// NewAggregator creates an aggregator.
func NewAggregator(tokens TokenProvider, source Source, cache Cache, opts ...Option) *Aggregator {
	a := &Aggregator{
		tokens:   tokens,
		source:   source,
		cache:    cache,
		clusters: clustering.DefaultConfig(),
		limit:    DefaultLimit,
		now:      time.Now,
		log:      logging.Discard(),
		latest:   make(map[music.TimeRange]*Summary),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func cacheKey(r music.TimeRange) string {
	return "stats:" + string(r)
}

func validRange(r music.TimeRange) error {
	switch r {
	case music.ShortTerm, music.MediumTerm, music.LongTerm:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidRange, r)
}

// GetSummary returns the summary for r. Unless force is set, a cached
// projection younger than FreshFor is returned without any network call.
// Otherwise the catalog is queried. If the token provider fails its error is
// returned unchanged. If every catalog call fails the joined
// *StatsFetchError values are returned. If only some fail the summary is
// built from the rest, marked Partial, and not cached.
//
// Concurrent non-forced calls for the same range share one fetch. The shared
// fetch is not cancelled by any single caller; each caller stops waiting
// when its own ctx is done.
func (a *Aggregator) GetSummary(ctx context.Context, r music.TimeRange, force bool) (*Summary, error) {
	if err := validRange(r); err != nil {
		return nil, err
	}

	if force {
		a.metrics.CacheLookup(string(r), "bypass")
		return a.fetch(ctx, r)
	}

	if s := a.cached(ctx, r); s != nil {
		return s, nil
	}

	ch := a.group.DoChan(string(r), func() (any, error) {
		return a.fetch(context.WithoutCancel(ctx), r)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		s := *res.Val.(*Summary)
		return &s, nil
	}
}

// Invalidate drops the cached projection and in-memory summary for r.
func (a *Aggregator) Invalidate(ctx context.Context, r music.TimeRange) error {
	if err := validRange(r); err != nil {
		return err
	}
	a.mu.Lock()
	delete(a.latest, r)
	a.mu.Unlock()

	if err := a.cache.Delete(ctx, cacheKey(r)); err != nil {
		return fmt.Errorf("deleting cached summary: %w", err)
	}
	return nil
}

// cached returns the fresh cached summary for r, or nil. When this process
// built the cached entry the full summary is returned; otherwise only the
// compact fields are filled in. Read and decode failures count as misses.
func (a *Aggregator) cached(ctx context.Context, r music.TimeRange) *Summary {
	log := a.log.WithField("range", r)

	raw, err := a.cache.Get(ctx, cacheKey(r))
	if err != nil {
		log.WithError(err).Warn("reading stats cache")
		a.metrics.CacheLookup(string(r), "miss")
		return nil
	}
	if raw == nil {
		a.metrics.CacheLookup(string(r), "miss")
		return nil
	}

	var c CompactSummary
	if err := json.Unmarshal(raw, &c); err != nil {
		log.WithError(err).Warn("decoding cached summary")
		a.metrics.CacheLookup(string(r), "miss")
		return nil
	}

	if a.now().Sub(c.LastUpdated) >= FreshFor {
		a.metrics.CacheLookup(string(r), "stale")
		return nil
	}

	a.metrics.CacheLookup(string(r), "hit")

	a.mu.Lock()
	full := a.latest[r]
	a.mu.Unlock()
	if full != nil && full.LastUpdated.Equal(c.LastUpdated) {
		s := *full
		s.FromCache = true
		return &s
	}

	return &Summary{
		TimeRange:           r,
		MinutesListened:     c.MinutesListened,
		AverageDailyMinutes: c.AverageDailyMinutes,
		ArtistsListened:     c.ArtistsListened,
		SongsPlayed:         c.SongsPlayed,
		ListeningStreak:     c.ListeningStreak,
		TopGenres:           []string{},
		LastUpdated:         c.LastUpdated,
		FromCache:           true,
	}
}

// fetch queries the catalog, reduces and caches a complete summary.
func (a *Aggregator) fetch(ctx context.Context, r music.TimeRange) (*Summary, error) {
	token, err := a.tokens.GetValidAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	var (
		tracks  []music.Track
		artists []music.Artist
		plays   []music.Play
		errs    [3]*StatsFetchError
		g       errgroup.Group
	)

	// Goroutines never return an error so one failure does not cancel the rest
	g.Go(func() error {
		start := time.Now()
		var err error
		tracks, err = a.source.TopTracks(ctx, token, r, a.limit)
		errs[0] = a.observe(SourceTopTracks, start, err)
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		var err error
		artists, err = a.source.TopArtists(ctx, token, r, a.limit)
		errs[1] = a.observe(SourceTopArtists, start, err)
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		var err error
		plays, err = a.source.RecentlyPlayed(ctx, token, a.limit)
		errs[2] = a.observe(SourceRecentlyPlayed, start, err)
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var failed []string
	var joined []error
	for _, fe := range errs {
		if fe != nil {
			failed = append(failed, fe.Source)
			joined = append(joined, fe)
		}
	}
	if len(failed) == len(errs) {
		return nil, errors.Join(joined...)
	}

	if a.genres != nil && len(artists) > 0 {
		artists = a.genres.FillMissingGenres(ctx, artists)
	}

	s := a.reduce(r, tracks, artists, plays)

	if len(failed) > 0 {
		s.Partial = true
		s.FailedSources = failed
		a.log.WithFields(logrus.Fields{
			"range":  r,
			"failed": failed,
		}).Warn("stats summary built from partial data, not caching")
		return s, nil
	}

	a.store(ctx, r, s)
	return s, nil
}

// observe records metrics for one catalog call and classifies its error.
func (a *Aggregator) observe(source string, start time.Time, err error) *StatsFetchError {
	if err == nil {
		a.metrics.Fetch(source, time.Since(start), "")
		return nil
	}
	fe := classify(source, err)
	a.metrics.Fetch(source, time.Since(start), string(fe.Kind))
	a.log.WithError(err).WithFields(logrus.Fields{
		"source": source,
		"kind":   fe.Kind,
	}).Warn("catalog fetch failed")
	return fe
}

func (a *Aggregator) reduce(r music.TimeRange, tracks []music.Track, artists []music.Artist, plays []music.Play) *Summary {
	now := a.now()
	minutes, songs := estimateListening(tracks, plays)
	found, _ := clustering.DetectTasteClusters(artists, a.clusters)

	return &Summary{
		TimeRange:           r,
		MinutesListened:     minutes,
		AverageDailyMinutes: dailyAverage(minutes),
		ArtistsListened:     distinctArtists(artists),
		SongsPlayed:         songs,
		ListeningStreak:     listeningStreak(plays, now),
		TopGenres:           rankGenres(artists, MaxTopGenres),
		TopTracks:           tracks,
		TopArtists:          artists,
		TasteClusters:       found,
		LastUpdated:         now,
	}
}

// store keeps s in memory and writes the compact projection. Cache
// failures are logged, not returned.
func (a *Aggregator) store(ctx context.Context, r music.TimeRange, s *Summary) {
	full := *s
	a.mu.Lock()
	a.latest[r] = &full
	a.mu.Unlock()

	raw, err := json.Marshal(s.Compact())
	if err != nil {
		a.log.WithError(err).Error("encoding summary")
		return
	}
	if err := a.cache.Put(ctx, cacheKey(r), raw); err != nil {
		a.log.WithError(err).WithField("range", r).Warn("writing stats cache")
	}
}
