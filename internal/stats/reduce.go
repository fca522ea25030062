package stats

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/justestif/go-spotify-social/internal/music"
)

const (
	// MaxTopGenres is the number of genres kept in a summary.
	MaxTopGenres = 5

	// playScale extrapolates a 50-item sample to an estimated play count.
	playScale = 20

	// windowDays is the fixed window used for the daily average.
	windowDays = 90
)

// rankGenres counts every genre across artists and returns the most frequent,
// descending. Ties keep the order in which genres were first seen.
func rankGenres(artists []music.Artist, max int) []string {
	counts := make(map[string]int)
	var order []string
	for _, a := range artists {
		for _, g := range a.Genres {
			if _, seen := counts[g]; !seen {
				order = append(order, g)
			}
			counts[g]++
		}
	}

	slices.SortStableFunc(order, func(a, b string) int {
		return cmp.Compare(counts[b], counts[a])
	})

	if len(order) > max {
		order = order[:max]
	}
	if order == nil {
		order = []string{}
	}
	return order
}

// distinctArtists counts unique artist ids.
func distinctArtists(artists []music.Artist) int {
	seen := make(map[string]struct{}, len(artists))
	for _, a := range artists {
		seen[a.ID] = struct{}{}
	}
	return len(seen)
}

// estimateListening returns (minutes, songs). The provider exposes no
// playback telemetry, so both are extrapolated from the sample:
// minutes = floor(avg track minutes × sample size × 20).
func estimateListening(tracks []music.Track, plays []music.Play) (minutes, songs int) {
	sample := len(plays)
	if sample == 0 {
		sample = len(tracks)
	}
	if sample == 0 {
		return 0, 0
	}

	var totalMs, n int
	for _, t := range tracks {
		totalMs += t.DurationMs
		n++
	}
	if n == 0 {
		for _, p := range plays {
			totalMs += p.Track.DurationMs
			n++
		}
	}

	avgMinutes := float64(totalMs) / float64(n) / 60000
	return int(math.Floor(avgMinutes * float64(sample) * playScale)), sample * playScale
}

// dailyAverage spreads minutes over the fixed window.
func dailyAverage(minutes int) int {
	return int(math.Round(float64(minutes) / windowDays))
}

// listeningStreak counts consecutive calendar days with at least one play,
// ending today or yesterday. Days are taken in now's location.
func listeningStreak(plays []music.Play, now time.Time) int {
	loc := now.Location()
	days := make(map[string]struct{}, len(plays))
	for _, p := range plays {
		days[p.PlayedAt.In(loc).Format(time.DateOnly)] = struct{}{}
	}

	has := func(t time.Time) bool {
		_, ok := days[t.Format(time.DateOnly)]
		return ok
	}

	day := time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, loc)
	if !has(day) {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for has(day) {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}
