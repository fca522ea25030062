package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/justestif/go-spotify-social/internal/clustering"
	"github.com/justestif/go-spotify-social/internal/music"
	"github.com/justestif/go-spotify-social/internal/stats"
)

// NewStatsCmd creates the stats command.
func NewStatsCmd(opts *rootOptions) *cobra.Command {
	var (
		force  bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "stats [short|medium|long]",
		Short: "Show listening stats for a time range",
		Long: `Show listening stats for a time range (default short). Cached results
younger than an hour are reused unless --force is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr := music.ShortTerm
			if len(args) == 1 {
				var ok bool
				if tr, ok = music.ParseTimeRange(args[0]); !ok {
					return fmt.Errorf("%w: %q", stats.ErrInvalidRange, args[0])
				}
			}

			a, err := opts.build(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			summary, err := a.Stats.GetSummary(cmd.Context(), tr, force)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}
			printSummary(out, summary)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Bypass the cache")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the summary as JSON")

	return cmd
}

func printSummary(w io.Writer, s *stats.Summary) {
	source := "fresh"
	if s.FromCache {
		source = "cached"
	}
	fmt.Fprintf(w, "%s (%s, updated %s)\n\n",
		color.CyanString(string(s.TimeRange)), source, s.LastUpdated.Local().Format("2006-01-02 15:04"))

	fmt.Fprintf(w, "  Minutes listened:  %d (about %d a day)\n", s.MinutesListened, s.AverageDailyMinutes)
	fmt.Fprintf(w, "  Songs played:      %d\n", s.SongsPlayed)
	fmt.Fprintf(w, "  Artists:           %d\n", s.ArtistsListened)
	fmt.Fprintf(w, "  Listening streak:  %d day(s)\n", s.ListeningStreak)
	if len(s.TopGenres) > 0 {
		fmt.Fprintf(w, "  Top genres:        %s\n", strings.Join(s.TopGenres, ", "))
	}

	if s.Partial {
		fmt.Fprintf(w, "\n%s partial result, failed sources: %s\n",
			color.YellowString("!"), strings.Join(s.FailedSources, ", "))
	}

	// Cached summaries carry only the counters.
	if !s.FromCache {
		fmt.Fprintln(w)
		fmt.Fprint(w, clustering.FormatClusterSummary(s.TasteClusters, outlierArtists(s)))
	}
}

// outlierArtists returns the top artists not placed in any cluster.
func outlierArtists(s *stats.Summary) []music.Artist {
	clustered := make(map[string]bool)
	for _, c := range s.TasteClusters {
		for _, a := range c.Artists {
			clustered[a.ID] = true
		}
	}
	var out []music.Artist
	for _, a := range s.TopArtists {
		if !clustered[a.ID] {
			out = append(out, a)
		}
	}
	return out
}

// NewRefreshCmd creates the refresh command.
func NewRefreshCmd(opts *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Refetch stats for every time range",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.build(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Refresher.Refresh(cmd.Context(), force)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, tr := range res.Refreshed {
				fmt.Fprintf(out, "%s %s\n", color.GreenString("✓"), tr)
			}
			failed := make([]string, 0, len(res.Failed))
			for tr := range res.Failed {
				failed = append(failed, string(tr))
			}
			sort.Strings(failed)
			for _, tr := range failed {
				fmt.Fprintf(out, "%s %s: %s\n", color.RedString("✗"), tr, res.Failed[music.TimeRange(tr)])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Ignore the refresh cooldown")

	return cmd
}
