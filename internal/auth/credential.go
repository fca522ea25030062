package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/justestif/go-spotify-social/internal/securestore"
)

// Secure store keys.
const (
	KeyAccessToken  = "spotify_access_token"
	KeyRefreshToken = "spotify_refresh_token"
	KeyTokenExpiry  = "spotify_token_expiry"
)

// Credential is the persisted token set for the connected account.
type Credential struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// expired reports whether the access token must be refreshed before use.
func (c *Credential) expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// loadCredential reads the credential. Returns (nil, nil) when no access
// token is stored. A missing or unreadable expiry is treated as expired.
func loadCredential(ctx context.Context, store securestore.Store) (*Credential, error) {
	access, err := getOptional(ctx, store, KeyAccessToken)
	if err != nil {
		return nil, err
	}
	if access == "" {
		return nil, nil
	}

	refresh, err := getOptional(ctx, store, KeyRefreshToken)
	if err != nil {
		return nil, err
	}

	expiry, err := getOptional(ctx, store, KeyTokenExpiry)
	if err != nil {
		return nil, err
	}

	cred := &Credential{AccessToken: access, RefreshToken: refresh}
	if ms, err := strconv.ParseInt(expiry, 10, 64); err == nil {
		cred.ExpiresAt = time.UnixMilli(ms)
	}
	return cred, nil
}

// saveCredential writes all three keys, expiry as Unix milliseconds.
func saveCredential(ctx context.Context, store securestore.Store, cred *Credential) error {
	if err := store.SetItem(ctx, KeyAccessToken, cred.AccessToken); err != nil {
		return fmt.Errorf("saving access token: %w", err)
	}
	if cred.RefreshToken != "" {
		if err := store.SetItem(ctx, KeyRefreshToken, cred.RefreshToken); err != nil {
			return fmt.Errorf("saving refresh token: %w", err)
		}
	}
	expiry := strconv.FormatInt(cred.ExpiresAt.UnixMilli(), 10)
	if err := store.SetItem(ctx, KeyTokenExpiry, expiry); err != nil {
		return fmt.Errorf("saving token expiry: %w", err)
	}
	return nil
}

// deleteCredential removes all three keys. Missing keys are not errors.
func deleteCredential(ctx context.Context, store securestore.Store) error {
	var errs []error
	for _, key := range []string{KeyAccessToken, KeyRefreshToken, KeyTokenExpiry} {
		if err := store.DeleteItem(ctx, key); err != nil && !errors.Is(err, securestore.ErrNotFound) {
			errs = append(errs, fmt.Errorf("deleting %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

func getOptional(ctx context.Context, store securestore.Store, key string) (string, error) {
	v, err := store.GetItem(ctx, key)
	if errors.Is(err, securestore.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", key, err)
	}
	return v, nil
}
