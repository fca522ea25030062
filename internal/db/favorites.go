package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// FavoriteRepository handles favorite database operations.
type FavoriteRepository struct {
	pool *pgxpool.Pool
}

// Add saves a favorite. Adding an existing favorite refreshes its name and image.
func (r *FavoriteRepository) Add(ctx context.Context, f *Favorite) error {
	if _, err := ParseItemType(string(f.ItemType)); err != nil {
		return err
	}
	query := `
		INSERT INTO favorites (user_id, item_type, item_id, name, image_url, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id, item_type, item_id) DO UPDATE SET
			name = EXCLUDED.name,
			image_url = EXCLUDED.image_url
		RETURNING created_at
	`
	err := r.pool.QueryRow(ctx, query,
		f.UserID,
		f.ItemType,
		f.ItemID,
		f.Name,
		f.ImageURL,
	).Scan(&f.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting favorite: %w", err)
	}
	return nil
}

// Remove deletes a favorite. Removing a missing favorite is not an error.
func (r *FavoriteRepository) Remove(ctx context.Context, userID string, itemType ItemType, itemID string) error {
	query := `DELETE FROM favorites WHERE user_id = $1 AND item_type = $2 AND item_id = $3`
	if _, err := r.pool.Exec(ctx, query, userID, itemType, itemID); err != nil {
		return fmt.Errorf("deleting favorite: %w", err)
	}
	return nil
}

// List returns a user's favorites, newest first. An empty itemType lists all types.
func (r *FavoriteRepository) List(ctx context.Context, userID string, itemType ItemType) ([]Favorite, error) {
	query := `
		SELECT user_id, item_type, item_id, name, image_url, created_at
		FROM favorites
		WHERE user_id = $1 AND ($2::text = '' OR item_type = $2::text)
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID, string(itemType))
	if err != nil {
		return nil, fmt.Errorf("querying favorites: %w", err)
	}
	defer rows.Close()

	favorites := []Favorite{}
	for rows.Next() {
		var f Favorite
		if err := rows.Scan(&f.UserID, &f.ItemType, &f.ItemID, &f.Name, &f.ImageURL, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning favorite: %w", err)
		}
		favorites = append(favorites, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating favorites: %w", err)
	}
	return favorites, nil
}
