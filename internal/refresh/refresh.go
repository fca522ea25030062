// Package refresh keeps the stats summaries for every time range warm while
// the user is connected.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/justestif/go-spotify-social/internal/logging"
	"github.com/justestif/go-spotify-social/internal/music"
	"github.com/justestif/go-spotify-social/internal/stats"
)

// Common errors.
var (
	// ErrRefreshTooRecent is returned when a refresh is attempted within the cooldown period.
	ErrRefreshTooRecent = errors.New("refresh attempted too recently")

	// ErrNotConnected is returned when no Spotify account is connected.
	ErrNotConnected = errors.New("spotify not connected")
)

// DefaultCooldown is the default time between refreshes, matching the
// stats freshness window.
const DefaultCooldown = stats.FreshFor

// Summarizer produces stats summaries.
type Summarizer interface {
	GetSummary(ctx context.Context, r music.TimeRange, force bool) (*stats.Summary, error)
}

// ConnectionChecker reports whether a usable credential exists.
type ConnectionChecker interface {
	IsConnected(ctx context.Context) bool
}

// Service refreshes every time range bucket.
type Service struct {
	stats    Summarizer
	conn     ConnectionChecker
	cooldown time.Duration
	ranges   []music.TimeRange
	now      func() time.Time
	log      logrus.FieldLogger

	mu      sync.Mutex
	lastRun time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithCooldown sets the minimum time between refreshes and the Run interval.
func WithCooldown(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.cooldown = d
		}
	}
}

// WithRanges limits the buckets that are refreshed.
func WithRanges(ranges ...music.TimeRange) Option {
	return func(s *Service) {
		s.ranges = ranges
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Service) {
		s.log = l
	}
}

// New creates a new refresh service.
func New(summarizer Summarizer, conn ConnectionChecker, opts ...Option) *Service {
	s := &Service{
		stats:    summarizer,
		conn:     conn,
		cooldown: DefaultCooldown,
		ranges:   music.TimeRanges,
		now:      time.Now,
		log:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Result contains the outcome of one refresh pass.
type Result struct {
	Refreshed   []music.TimeRange          `json:"refreshed"`
	Failed      map[music.TimeRange]string `json:"failed,omitempty"`
	RefreshedAt time.Time                  `json:"refreshedAt"`
}

// CanRefresh reports whether the cooldown has passed, and if not, when the
// next refresh will be allowed.
func (s *Service) CanRefresh() (bool, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastRun.IsZero() {
		return true, time.Time{}
	}
	next := s.lastRun.Add(s.cooldown)
	if s.now().Before(next) {
		return false, next
	}
	return true, time.Time{}
}

// Refresh fetches every bucket from the catalog, bypassing the stats cache.
// Returns ErrRefreshTooRecent if called within the cooldown period.
// Set force=true to bypass the cooldown check.
func (s *Service) Refresh(ctx context.Context, force bool) (*Result, error) {
	if !force {
		if ok, next := s.CanRefresh(); !ok {
			return nil, fmt.Errorf("%w: next refresh available at %s", ErrRefreshTooRecent, next.Format(time.RFC3339))
		}
	}
	return s.refresh(ctx)
}

func (s *Service) refresh(ctx context.Context) (*Result, error) {
	if !s.conn.IsConnected(ctx) {
		return nil, ErrNotConnected
	}

	started := s.now()
	s.mu.Lock()
	s.lastRun = started
	s.mu.Unlock()

	result := &Result{RefreshedAt: started}
	for _, r := range s.ranges {
		if _, err := s.stats.GetSummary(ctx, r, true); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if result.Failed == nil {
				result.Failed = make(map[music.TimeRange]string)
			}
			result.Failed[r] = err.Error()
			s.log.WithError(err).WithField("range", r).Warn("refreshing stats")
			continue
		}
		result.Refreshed = append(result.Refreshed, r)
	}

	s.log.WithFields(logrus.Fields{
		"refreshed": len(result.Refreshed),
		"failed":    len(result.Failed),
	}).Info("stats refresh complete")
	return result, nil
}

// Run refreshes immediately and then once per cooldown until ctx is done.
// Passes where the user is not connected are skipped.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cooldown)
	defer ticker.Stop()

	for {
		if _, err := s.refresh(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, ErrNotConnected) {
				s.log.Debug("not connected, skipping stats refresh")
			} else {
				s.log.WithError(err).Warn("stats refresh failed")
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
