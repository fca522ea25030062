// Package clustering groups a listener's top artists into taste clusters
// using k-means over genre vectors.
package clustering

import (
	"cmp"
	"slices"
	"strings"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/justestif/go-spotify-social/internal/music"
)

// Config holds taste clustering parameters.
type Config struct {
	NumClusters    int // Number of clusters to create (default: 3)
	MinClusterSize int // Minimum artists per cluster (smaller clusters become outliers)
	MaxGenres      int // Maximum genres to use in vectors (default: 50)
}

// DefaultConfig returns the recommended default configuration.
func DefaultConfig() Config {
	return Config{
		NumClusters:    3,
		MinClusterSize: 2,
		MaxGenres:      50,
	}
}

// ArtistCluster is a group of artists with similar genres.
type ArtistCluster struct {
	Name      string         `json:"name"`      // "indie & shoegaze & dream pop"
	TopGenres []string       `json:"topGenres"` // Top 3 dominant genres for this cluster
	Artists   []music.Artist `json:"artists"`   // In input (rank) order
}

// artistObservation wraps an artist to implement clusters.Observation.
type artistObservation struct {
	index  int
	coords clusters.Coordinates
}

func (o artistObservation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o artistObservation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// DetectTasteClusters groups artists by genre similarity using k-means.
// Returns clusters (largest first) and outlier artists that don't fit any
// cluster. Artists without genres are always outliers.
func DetectTasteClusters(artists []music.Artist, cfg Config) ([]ArtistCluster, []music.Artist) {
	if len(artists) == 0 {
		return nil, nil
	}

	// Apply defaults
	if cfg.NumClusters <= 0 {
		cfg.NumClusters = DefaultConfig().NumClusters
	}
	if cfg.MaxGenres <= 0 {
		cfg.MaxGenres = DefaultConfig().MaxGenres
	}

	var valid []int
	var noGenres []music.Artist
	for i, a := range artists {
		if len(a.Genres) > 0 {
			valid = append(valid, i)
		} else {
			noGenres = append(noGenres, a)
		}
	}

	vocabulary := buildGenreVocabulary(artists, cfg.MaxGenres)
	if len(valid) == 0 || len(vocabulary) == 0 {
		return nil, append(pick(artists, valid), noGenres...)
	}

	k := min(cfg.NumClusters, len(valid))

	var obs clusters.Observations
	for _, i := range valid {
		obs = append(obs, artistObservation{index: i, coords: buildGenreVector(artists[i], vocabulary)})
	}

	result, err := kmeans.New().Partition(obs, k)
	if err != nil {
		return nil, append(pick(artists, valid), noGenres...)
	}

	var found []ArtistCluster
	var outliers []music.Artist
	for _, cluster := range result {
		var members []int
		for _, o := range cluster.Observations {
			if ao, ok := o.(artistObservation); ok {
				members = append(members, ao.index)
			}
		}
		if len(members) == 0 {
			continue
		}
		slices.Sort(members)

		if len(members) < cfg.MinClusterSize {
			outliers = append(outliers, pick(artists, members)...)
			continue
		}

		topGenres := extractTopGenres(cluster.Center, vocabulary, 3)
		found = append(found, ArtistCluster{
			Name:      generateClusterName(topGenres),
			TopGenres: topGenres,
			Artists:   pick(artists, members),
		})
	}

	outliers = append(outliers, noGenres...)

	// Largest first, then by name for a stable order
	slices.SortFunc(found, func(a, b ArtistCluster) int {
		if c := cmp.Compare(len(b.Artists), len(a.Artists)); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})

	return found, outliers
}

func pick(artists []music.Artist, idx []int) []music.Artist {
	out := make([]music.Artist, 0, len(idx))
	for _, i := range idx {
		out = append(out, artists[i])
	}
	return out
}
