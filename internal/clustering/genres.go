package clustering

import (
	"sort"
	"strings"

	"github.com/muesli/clusters"

	"github.com/justestif/go-spotify-social/internal/music"
)

// genreCount tracks genre name and number of artists carrying it.
type genreCount struct {
	name  string
	count int
}

// buildGenreVocabulary collects all genres and returns the top N most common.
// Ties are broken alphabetically.
func buildGenreVocabulary(artists []music.Artist, maxGenres int) []string {
	counts := make(map[string]int)
	for _, a := range artists {
		for _, g := range a.Genres {
			counts[strings.ToLower(g)]++
		}
	}

	genreCounts := make([]genreCount, 0, len(counts))
	for name, count := range counts {
		genreCounts = append(genreCounts, genreCount{name: name, count: count})
	}

	sort.Slice(genreCounts, func(i, j int) bool {
		if genreCounts[i].count != genreCounts[j].count {
			return genreCounts[i].count > genreCounts[j].count
		}
		return genreCounts[i].name < genreCounts[j].name
	})

	n := min(maxGenres, len(genreCounts))
	vocabulary := make([]string, n)
	for i := 0; i < n; i++ {
		vocabulary[i] = genreCounts[i].name
	}
	return vocabulary
}

// buildGenreVector creates a feature vector for an artist. The provider lists
// genres most specific first, so earlier genres weigh more (1, 1/2, 1/3...).
func buildGenreVector(artist music.Artist, vocabulary []string) clusters.Coordinates {
	vocabIndex := make(map[string]int, len(vocabulary))
	for i, g := range vocabulary {
		vocabIndex[g] = i
	}

	vector := make(clusters.Coordinates, len(vocabulary))
	for rank, g := range artist.Genres {
		if idx, ok := vocabIndex[strings.ToLower(g)]; ok && vector[idx] == 0 {
			vector[idx] = 1 / float64(rank+1)
		}
	}
	return vector
}

// extractTopGenres returns the top N genres from a centroid vector.
func extractTopGenres(centroid clusters.Coordinates, vocabulary []string, n int) []string {
	if len(centroid) == 0 || len(vocabulary) == 0 {
		return nil
	}

	type genreWeight struct {
		name   string
		weight float64
	}
	weights := make([]genreWeight, len(vocabulary))
	for i, name := range vocabulary {
		weight := 0.0
		if i < len(centroid) {
			weight = centroid[i]
		}
		weights[i] = genreWeight{name: name, weight: weight}
	}

	// Stable keeps vocabulary order among equal weights
	sort.SliceStable(weights, func(i, j int) bool {
		return weights[i].weight > weights[j].weight
	})

	result := make([]string, 0, n)
	for i := 0; i < len(weights) && len(result) < n; i++ {
		if weights[i].weight > 0 {
			result = append(result, weights[i].name)
		}
	}
	return result
}

// generateClusterName joins the top genres.
func generateClusterName(topGenres []string) string {
	if len(topGenres) == 0 {
		return "Mixed"
	}
	return strings.Join(topGenres, " & ")
}
