package db

import "context"

// connectionWriter is the part of ProfileRepository the notifier needs.
type connectionWriter interface {
	SetSpotifyConnected(ctx context.Context, id string, connected bool) error
}

// ProfileNotifier mirrors the Spotify connection state onto one profile's
// spotify_connected flag.
type ProfileNotifier struct {
	profiles  connectionWriter
	profileID string
}

// NewProfileNotifier binds the notifier to a profile.
func NewProfileNotifier(profiles *ProfileRepository, profileID string) *ProfileNotifier {
	return &ProfileNotifier{profiles: profiles, profileID: profileID}
}

// SetSpotifyConnected writes the flag for the bound profile.
func (n *ProfileNotifier) SetSpotifyConnected(ctx context.Context, connected bool) error {
	return n.profiles.SetSpotifyConnected(ctx, n.profileID, connected)
}
