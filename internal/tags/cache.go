package tags

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"
)

// CacheTTL is the duration after which cached genres are considered stale.
const CacheTTL = 30 * 24 * time.Hour // 30 days

type cacheEntry struct {
	genres    []string
	fetchedAt time.Time
}

// CachedGenreFetcher wraps a GenreFetcher with an in-memory cache keyed by
// artist name and tag limit. Stale entries are refetched lazily; errors are not cached.
type CachedGenreFetcher struct {
	fetcher GenreFetcher
	ttl     time.Duration
	now     func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// NewCachedGenreFetcher creates a CachedGenreFetcher using CacheTTL.
func NewCachedGenreFetcher(fetcher GenreFetcher) *CachedGenreFetcher {
	return &CachedGenreFetcher{
		fetcher: fetcher,
		ttl:     CacheTTL,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// GetArtistGenres implements GenreFetcher.
func (c *CachedGenreFetcher) GetArtistGenres(ctx context.Context, artist string, max int) ([]string, error) {
	key := strconv.Itoa(max) + ":" + strings.ToLower(artist)

	c.mu.RLock()
	entry, found := c.entries[key]
	c.mu.RUnlock()

	// Lazy invalidation
	if found && c.now().Sub(entry.fetchedAt) < c.ttl {
		return entry.genres, nil
	}

	genres, err := c.fetcher.GetArtistGenres(ctx, artist, max)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{genres: genres, fetchedAt: c.now()}
	c.mu.Unlock()
	return genres, nil
}
