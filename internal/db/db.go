// Package db provides PostgreSQL access for the social side of the app:
// profiles, favorites, reviews, review comments and friend lists.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Common errors.
var (
	ErrNotFound = errors.New("not found")

	// ErrInvalidItemType is returned for an item type other than track, album or artist.
	ErrInvalidItemType = errors.New("invalid item type")

	// ErrInvalidRating is returned for a rating outside 1-5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrEmptyBody is returned when a review or comment has no text.
	ErrEmptyBody = errors.New("body must not be empty")

	// ErrSelfFriend is returned when a profile tries to follow itself.
	ErrSelfFriend = errors.New("cannot follow yourself")
)

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// New creates a new database connection pool.
func New(ctx context.Context, databaseURL string) (*DB, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the database connection pool.
func (db *DB) Close() {
	db.pool.Close()
}

// Migrate creates the tables if they do not exist.
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}
	return nil
}

// Profiles returns a ProfileRepository.
func (db *DB) Profiles() *ProfileRepository {
	return &ProfileRepository{pool: db.pool}
}

// Favorites returns a FavoriteRepository.
func (db *DB) Favorites() *FavoriteRepository {
	return &FavoriteRepository{pool: db.pool}
}

// Reviews returns a ReviewRepository.
func (db *DB) Reviews() *ReviewRepository {
	return &ReviewRepository{pool: db.pool}
}

// Comments returns a CommentRepository.
func (db *DB) Comments() *CommentRepository {
	return &CommentRepository{pool: db.pool}
}
