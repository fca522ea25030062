// Package tags supplies genre labels for artists the provider returns
// without any, using Last.fm artist tags.
package tags

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/justestif/go-spotify-social/internal/logging"
	"github.com/justestif/go-spotify-social/internal/music"
)

// TagSource indicates where an artist's genres came from.
type TagSource string

const (
	// SourceProvider means the catalog provider already had genres.
	SourceProvider TagSource = "provider"
	// SourceLastFM means genres came from artist.getTopTags.
	SourceLastFM TagSource = "lastfm"
	// SourceNone means no genres were found.
	SourceNone TagSource = "none"
)

// Default concurrency for batch processing.
const DefaultConcurrency = 5

// DefaultMaxGenres caps how many tags are kept per artist.
const DefaultMaxGenres = 3

// Artist represents the minimal artist info needed for tag lookup.
type Artist struct {
	ID   string
	Name string
}

// ArtistGenres holds the genres fetched for an artist.
type ArtistGenres struct {
	ArtistID string
	Genres   []string
	Source   TagSource
	Error    error // Non-nil if fetching failed
}

// GenreFetcher abstracts the Last.fm client for testing.
type GenreFetcher interface {
	GetArtistGenres(ctx context.Context, artist string, max int) ([]string, error)
}

// Service fetches artist genres with a bounded worker pool.
type Service struct {
	fetcher     GenreFetcher
	concurrency int
	maxGenres   int
	log         logrus.FieldLogger
}

// Option configures a Service.
type Option func(*Service)

// WithConcurrency sets the number of concurrent fetch operations.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithMaxGenres sets how many genres are kept per artist.
func WithMaxGenres(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxGenres = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Service) {
		s.log = l
	}
}

// NewService creates a new tag service.
func NewService(fetcher GenreFetcher, opts ...Option) *Service {
	s := &Service{
		fetcher:     fetcher,
		concurrency: DefaultConcurrency,
		maxGenres:   DefaultMaxGenres,
		log:         logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchGenresForArtists fetches genres for multiple artists concurrently.
// Results are returned in the same order as input artists.
// Individual fetch errors are captured in ArtistGenres.Error rather than failing the batch.
func (s *Service) FetchGenresForArtists(ctx context.Context, artists []Artist) ([]ArtistGenres, error) {
	if len(artists) == 0 {
		return []ArtistGenres{}, nil
	}

	results := make([]ArtistGenres, len(artists))

	type workItem struct {
		index  int
		artist Artist
	}
	workCh := make(chan workItem, len(artists))
	for i, a := range artists {
		workCh <- workItem{index: i, artist: a}
	}
	close(workCh)

	var wg sync.WaitGroup
	for i := 0; i < s.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for work := range workCh {
				select {
				case <-ctx.Done():
					results[work.index] = ArtistGenres{
						ArtistID: work.artist.ID,
						Genres:   []string{},
						Source:   SourceNone,
						Error:    ctx.Err(),
					}
					continue
				default:
				}

				genres, err := s.fetcher.GetArtistGenres(ctx, work.artist.Name, s.maxGenres)
				result := ArtistGenres{ArtistID: work.artist.ID, Genres: genres, Error: err}
				switch {
				case err != nil:
					result.Source = SourceNone
					result.Genres = []string{}
				case len(genres) == 0:
					result.Source = SourceNone
				default:
					result.Source = SourceLastFM
				}
				results[work.index] = result
			}
		}()
	}

	wg.Wait()

	if ctx.Err() != nil {
		return results, ctx.Err()
	}
	return results, nil
}

// FillMissingGenres returns a copy of artists where every artist without
// provider genres carries Last.fm genres instead. Lookup failures leave the
// artist unchanged.
func (s *Service) FillMissingGenres(ctx context.Context, artists []music.Artist) []music.Artist {
	out := make([]music.Artist, len(artists))
	copy(out, artists)

	var missing []Artist
	var positions []int
	for i, a := range out {
		if len(a.Genres) == 0 {
			missing = append(missing, Artist{ID: a.ID, Name: a.Name})
			positions = append(positions, i)
		}
	}
	if len(missing) == 0 {
		return out
	}

	results, err := s.FetchGenresForArtists(ctx, missing)
	if err != nil {
		s.log.WithError(err).Debug("genre fallback interrupted")
	}

	filled := 0
	for i, res := range results {
		if res.Error != nil {
			s.log.WithError(res.Error).WithField("artist", missing[i].Name).Debug("genre fallback failed")
			continue
		}
		if res.Source == SourceLastFM {
			out[positions[i]].Genres = res.Genres
			filled++
		}
	}
	s.log.WithFields(logrus.Fields{"missing": len(missing), "filled": filled}).Debug("genre fallback complete")
	return out
}
