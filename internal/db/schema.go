package db

var schema = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
		id                TEXT PRIMARY KEY,
		display_name      TEXT NOT NULL DEFAULT '',
		bio               TEXT NOT NULL DEFAULT '',
		avatar_uri        TEXT NOT NULL DEFAULT '',
		spotify_connected BOOLEAN NOT NULL DEFAULT FALSE,
		friends           TEXT[] NOT NULL DEFAULT '{}',
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS favorites (
		user_id    TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		item_type  TEXT NOT NULL,
		item_id    TEXT NOT NULL,
		name       TEXT NOT NULL DEFAULT '',
		image_url  TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (user_id, item_type, item_id)
	)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id         UUID PRIMARY KEY,
		user_id    TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		item_type  TEXT NOT NULL,
		item_id    TEXT NOT NULL,
		rating     INT NOT NULL,
		body       TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_item ON reviews (item_type, item_id)`,
	`CREATE TABLE IF NOT EXISTS review_comments (
		id         UUID PRIMARY KEY,
		review_id  UUID NOT NULL REFERENCES reviews(id) ON DELETE CASCADE,
		user_id    TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		body       TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}
