package securestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// DefaultKeyringService is the keyring service name items are filed under.
const DefaultKeyringService = "spotify-social"

// KeyringStore stores each item as its own entry in the OS keyring.
type KeyringStore struct {
	service string
}

// NewKeyringStore creates a KeyringStore for the given service name.
// An empty service falls back to DefaultKeyringService.
func NewKeyringStore(service string) *KeyringStore {
	if service == "" {
		service = DefaultKeyringService
	}
	return &KeyringStore{service: service}
}

// SetItem saves value to the keyring.
func (k *KeyringStore) SetItem(_ context.Context, key, value string) error {
	if err := keyring.Set(k.service, key, value); err != nil {
		return fmt.Errorf("saving %s to keyring: %w", key, err)
	}
	return nil
}

// GetItem reads a value from the keyring.
func (k *KeyringStore) GetItem(_ context.Context, key string) (string, error) {
	v, err := keyring.Get(k.service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("reading %s from keyring: %w", key, err)
	}
	return v, nil
}

// DeleteItem removes a value from the keyring. Missing entries are ignored.
func (k *KeyringStore) DeleteItem(_ context.Context, key string) error {
	err := keyring.Delete(k.service, key)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("deleting %s from keyring: %w", key, err)
	}
	return nil
}
