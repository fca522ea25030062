package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReviewRepository handles review database operations.
type ReviewRepository struct {
	pool *pgxpool.Pool
}

const reviewColumns = `id, user_id, item_type, item_id, rating, body, created_at, updated_at`

func scanReview(row pgx.Row) (*Review, error) {
	var rv Review
	err := row.Scan(
		&rv.ID,
		&rv.UserID,
		&rv.ItemType,
		&rv.ItemID,
		&rv.Rating,
		&rv.Body,
		&rv.CreatedAt,
		&rv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

// Create inserts a new review, assigning its ID.
func (r *ReviewRepository) Create(ctx context.Context, rv *Review) error {
	if err := rv.Validate(); err != nil {
		return err
	}
	if rv.ID == uuid.Nil {
		rv.ID = uuid.New()
	}
	query := `
		INSERT INTO reviews (id, user_id, item_type, item_id, rating, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		rv.ID,
		rv.UserID,
		rv.ItemType,
		rv.ItemID,
		rv.Rating,
		rv.Body,
	).Scan(&rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting review: %w", err)
	}
	return nil
}

// Get retrieves a review by ID.
func (r *ReviewRepository) Get(ctx context.Context, id uuid.UUID) (*Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`
	rv, err := scanReview(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying review: %w", err)
	}
	return rv, nil
}

// Update rewrites the rating and body of a review owned by rv.UserID.
// Returns ErrNotFound when no such review belongs to that user.
func (r *ReviewRepository) Update(ctx context.Context, rv *Review) error {
	if rv.Rating < 1 || rv.Rating > 5 {
		return ErrInvalidRating
	}
	if strings.TrimSpace(rv.Body) == "" {
		return ErrEmptyBody
	}
	query := `
		UPDATE reviews SET rating = $3, body = $4, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + reviewColumns
	updated, err := scanReview(r.pool.QueryRow(ctx, query, rv.ID, rv.UserID, rv.Rating, rv.Body))
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("updating review: %w", err)
	}
	*rv = *updated
	return nil
}

// Delete removes a review owned by userID along with its comments.
func (r *ReviewRepository) Delete(ctx context.Context, id uuid.UUID, userID string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting review: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListForItem returns reviews of one catalog item, newest first.
func (r *ReviewRepository) ListForItem(ctx context.Context, itemType ItemType, itemID string) ([]Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE item_type = $1 AND item_id = $2
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, itemType, itemID)
}

// ListForUser returns a user's reviews, newest first.
func (r *ReviewRepository) ListForUser(ctx context.Context, userID string) ([]Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, userID)
}

func (r *ReviewRepository) list(ctx context.Context, query string, args ...any) ([]Review, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying reviews: %w", err)
	}
	defer rows.Close()

	reviews := []Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning review: %w", err)
		}
		reviews = append(reviews, *rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reviews: %w", err)
	}
	return reviews, nil
}
