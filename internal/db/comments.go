package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CommentRepository handles review comment database operations.
type CommentRepository struct {
	pool *pgxpool.Pool
}

// Create inserts a comment on an existing review.
func (r *CommentRepository) Create(ctx context.Context, c *Comment) error {
	if strings.TrimSpace(c.Body) == "" {
		return ErrEmptyBody
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	// Selecting from reviews turns a missing review into zero rows
	query := `
		INSERT INTO review_comments (id, review_id, user_id, body, created_at)
		SELECT $1, id, $3, $4, NOW() FROM reviews WHERE id = $2
		RETURNING created_at
	`
	rows, err := r.pool.Query(ctx, query, c.ID, c.ReviewID, c.UserID, c.Body)
	if err != nil {
		return fmt.Errorf("inserting comment: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return fmt.Errorf("inserting comment: %w", err)
		}
		return ErrNotFound
	}
	if err := rows.Scan(&c.CreatedAt); err != nil {
		return fmt.Errorf("scanning comment: %w", err)
	}
	return nil
}

// ListForReview returns a review's comments, oldest first.
func (r *CommentRepository) ListForReview(ctx context.Context, reviewID uuid.UUID) ([]Comment, error) {
	query := `
		SELECT id, review_id, user_id, body, created_at
		FROM review_comments
		WHERE review_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, reviewID)
	if err != nil {
		return nil, fmt.Errorf("querying comments: %w", err)
	}
	defer rows.Close()

	comments := []Comment{}
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.ReviewID, &c.UserID, &c.Body, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating comments: %w", err)
	}
	return comments, nil
}

// Delete removes a comment written by userID.
func (r *CommentRepository) Delete(ctx context.Context, id uuid.UUID, userID string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM review_comments WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting comment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
