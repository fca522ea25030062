// Package lastfm provides Last.fm API integration for fetching artist tags.
package lastfm

import "errors"

// ErrMissingAPIKey is returned when no Last.fm API key is configured.
var ErrMissingAPIKey = errors.New("missing LASTFM_API_KEY")

// Config holds Last.fm API configuration.
type Config struct {
	APIKey string
}

// NewConfig returns a Config for apiKey.
// Returns ErrMissingAPIKey if apiKey is empty.
func NewConfig(apiKey string) (*Config, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	return &Config{APIKey: apiKey}, nil
}
