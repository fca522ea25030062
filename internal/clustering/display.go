package clustering

import (
	"fmt"
	"strings"

	"github.com/justestif/go-spotify-social/internal/music"
)

const sampleArtistCount = 3

// FormatClusterSummary returns a human-readable summary of taste clusters.
// Shows artist count and the first 3 artists for each cluster.
// Outliers are summarized by count only.
func FormatClusterSummary(found []ArtistCluster, outliers []music.Artist) string {
	var sb strings.Builder

	total := len(outliers)
	for _, c := range found {
		total += len(c.Artists)
	}

	if len(found) == 0 {
		sb.WriteString(fmt.Sprintf("No taste clusters found from %d artists", total))
		if len(outliers) > 0 {
			sb.WriteString(fmt.Sprintf(" (%d outliers skipped)", len(outliers)))
		}
		sb.WriteString("\n")
		return sb.String()
	}

	word := "cluster"
	if len(found) > 1 {
		word = "clusters"
	}

	sb.WriteString(fmt.Sprintf("Found %d taste %s from %d artists", len(found), word, total))
	if len(outliers) > 0 {
		sb.WriteString(fmt.Sprintf(" (%d outliers skipped)", len(outliers)))
	}
	sb.WriteString("\n")

	for i, c := range found {
		sb.WriteString("\n")
		sb.WriteString(formatCluster(i+1, c))
	}
	return sb.String()
}

// formatCluster formats a single cluster with its sample artists.
func formatCluster(num int, c ArtistCluster) string {
	var sb strings.Builder

	artistWord := "artist"
	if len(c.Artists) > 1 {
		artistWord = "artists"
	}
	sb.WriteString(fmt.Sprintf("Cluster %d: %s (%d %s)\n", num, c.Name, len(c.Artists), artistWord))

	sampleCount := min(sampleArtistCount, len(c.Artists))
	for i := 0; i < sampleCount; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", c.Artists[i].Name))
	}

	remaining := len(c.Artists) - sampleArtistCount
	if remaining > 0 {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", remaining))
	}
	return sb.String()
}
