// Package securestore persists small secrets (OAuth tokens) in an OS
// keyring, an encrypted file, or memory.
package securestore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by GetItem when no value is stored under the key.
var ErrNotFound = errors.New("secure store: item not found")

// Store is a string key/value store for secrets. Implementations are safe
// for concurrent use. DeleteItem is idempotent.
type Store interface {
	SetItem(ctx context.Context, key, value string) error
	GetItem(ctx context.Context, key string) (string, error)
	DeleteItem(ctx context.Context, key string) error
}
