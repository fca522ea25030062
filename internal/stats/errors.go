package stats

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/justestif/go-spotify-social/internal/music"
)

// ErrInvalidRange is returned for a time range outside short/medium/long term.
var ErrInvalidRange = errors.New("invalid time range")

// Kind classifies why a catalog fetch failed.
type Kind string

const (
	// KindNetwork means the request never produced a provider response.
	KindNetwork Kind = "network"
	// KindProvider means the provider answered with a non-2xx status.
	KindProvider Kind = "provider"
	// KindMalformed means the provider answered 2xx with an unreadable body.
	KindMalformed Kind = "malformed"
	// KindAuth means the provider rejected the bearer token.
	KindAuth Kind = "auth"
)

// Catalog sources fetched for a summary.
const (
	SourceTopTracks      = "top_tracks"
	SourceTopArtists     = "top_artists"
	SourceRecentlyPlayed = "recently_played"
)

// StatsFetchError reports one failed catalog call made after a valid token
// was obtained. When every source fails, GetSummary returns the failures
// joined with errors.Join; errors.As finds the first.
type StatsFetchError struct {
	Source     string
	Kind       Kind
	StatusCode int
	Err        error
}

func (e *StatsFetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: %s error (status %d): %v", e.Source, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetching %s: %s error: %v", e.Source, e.Kind, e.Err)
}

func (e *StatsFetchError) Unwrap() error {
	return e.Err
}

// classify turns a Source error into a StatsFetchError.
func classify(source string, err error) *StatsFetchError {
	fe := &StatsFetchError{Source: source, Kind: KindNetwork, Err: err}

	var pe *music.ProviderError
	switch {
	case errors.As(err, &pe):
		fe.StatusCode = pe.StatusCode
		if pe.StatusCode == http.StatusUnauthorized || pe.StatusCode == http.StatusForbidden {
			fe.Kind = KindAuth
		} else {
			fe.Kind = KindProvider
		}
	case errors.Is(err, music.ErrMalformedResponse):
		fe.Kind = KindMalformed
	}
	return fe
}
