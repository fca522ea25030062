package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProfileRepository handles profile database operations.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

const profileColumns = `id, display_name, bio, avatar_uri, spotify_connected, friends, created_at, updated_at`

func scanProfile(row pgx.Row) (*Profile, error) {
	var p Profile
	err := row.Scan(
		&p.ID,
		&p.DisplayName,
		&p.Bio,
		&p.AvatarURI,
		&p.SpotifyConnected,
		&p.Friends,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.Friends == nil {
		p.Friends = []string{}
	}
	return &p, nil
}

// Get retrieves a profile by ID.
func (r *ProfileRepository) Get(ctx context.Context, id string) (*Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	p, err := scanProfile(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying profile: %w", err)
	}
	return p, nil
}

// Ensure creates an empty profile for id if none exists.
func (r *ProfileRepository) Ensure(ctx context.Context, id string) error {
	query := `
		INSERT INTO profiles (id) VALUES ($1)
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := r.pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("ensuring profile: %w", err)
	}
	return nil
}

// Update applies the non-nil fields of u and returns the updated profile.
func (r *ProfileRepository) Update(ctx context.Context, id string, u ProfileUpdate) (*Profile, error) {
	query := `
		UPDATE profiles SET
			display_name = COALESCE($2, display_name),
			bio = COALESCE($3, bio),
			avatar_uri = COALESCE($4, avatar_uri),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + profileColumns
	p, err := scanProfile(r.pool.QueryRow(ctx, query, id, u.DisplayName, u.Bio, u.AvatarURI))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	return p, nil
}

// SetSpotifyConnected writes the connection flag, creating the profile if needed.
func (r *ProfileRepository) SetSpotifyConnected(ctx context.Context, id string, connected bool) error {
	query := `
		INSERT INTO profiles (id, spotify_connected) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET
			spotify_connected = EXCLUDED.spotify_connected,
			updated_at = NOW()
	`
	if _, err := r.pool.Exec(ctx, query, id, connected); err != nil {
		return fmt.Errorf("updating spotify_connected: %w", err)
	}
	return nil
}

// AddFriend appends friendID to the profile's friend list. The append is a
// single statement guarded by ANY, so concurrent follows never duplicate.
func (r *ProfileRepository) AddFriend(ctx context.Context, id, friendID string) error {
	if id == friendID {
		return ErrSelfFriend
	}
	query := `
		UPDATE profiles SET
			friends = CASE WHEN $2 = ANY(friends) THEN friends ELSE array_append(friends, $2) END,
			updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query, id, friendID)
	if err != nil {
		return fmt.Errorf("adding friend: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveFriend removes friendID from the profile's friend list.
func (r *ProfileRepository) RemoveFriend(ctx context.Context, id, friendID string) error {
	query := `
		UPDATE profiles SET
			friends = array_remove(friends, $2),
			updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query, id, friendID)
	if err != nil {
		return fmt.Errorf("removing friend: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Friends returns the profiles the given profile follows.
func (r *ProfileRepository) Friends(ctx context.Context, id string) ([]Profile, error) {
	query := `
		SELECT f.id, f.display_name, f.bio, f.avatar_uri, f.spotify_connected, f.friends, f.created_at, f.updated_at
		FROM profiles me
		JOIN profiles f ON f.id = ANY(me.friends)
		WHERE me.id = $1
		ORDER BY f.display_name, f.id
	`
	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("querying friends: %w", err)
	}
	defer rows.Close()

	friends := []Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning friend: %w", err)
		}
		friends = append(friends, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating friends: %w", err)
	}
	return friends, nil
}
