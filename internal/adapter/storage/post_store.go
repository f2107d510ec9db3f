// internal/adapter/storage/post_store.go

package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"creatorpulse/internal/domain/post"
)

const postsSchema = `
	CREATE TABLE IF NOT EXISTS posts (
		id           UUID PRIMARY KEY,
		user_id      TEXT NOT NULL,
		platform     TEXT NOT NULL,
		title        TEXT NOT NULL DEFAULT '',
		views        DOUBLE PRECISION NOT NULL DEFAULT 0,
		likes        DOUBLE PRECISION NOT NULL DEFAULT 0,
		comments     DOUBLE PRECISION NOT NULL DEFAULT 0,
		shares       DOUBLE PRECISION NOT NULL DEFAULT 0,
		duration_sec DOUBLE PRECISION NOT NULL DEFAULT 0,
		posted_at    TIMESTAMPTZ,
		raw          JSONB,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS posts_user_created_idx ON posts (user_id, created_at);
`

// PostStore implements storage for uploaded posts
type PostStore struct {
	db *pgxpool.Pool
}

// NewPostStore creates a new post store
func NewPostStore(db *pgxpool.Pool) *PostStore {
	return &PostStore{
		db: db,
	}
}

// EnsureSchema creates the posts table if it does not exist
func (s *PostStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, postsSchema); err != nil {
		return fmt.Errorf("error creating posts schema: %w", err)
	}
	return nil
}

// SavePosts saves a batch of posts in one transaction
func (s *PostStore) SavePosts(ctx context.Context, posts []post.Post) error {
	query := `
		INSERT INTO posts (
			id, user_id, platform, title,
			views, likes, comments, shares, duration_sec,
			posted_at, raw, created_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8, $9,
			$10, $11, $12
		)
	`

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	for i := range posts {
		p := &posts[i]

		// Set identifiers and timestamps if not provided
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		if p.CreatedAt.IsZero() {
			// Keep upload order stable within the batch
			p.CreatedAt = now.Add(time.Duration(i) * time.Microsecond)
		}

		rawJSON, err := json.Marshal(p.Raw)
		if err != nil {
			return fmt.Errorf("error marshaling raw post: %w", err)
		}

		_, err = tx.Exec(
			ctx,
			query,
			p.ID,
			p.UserID,
			p.Platform,
			p.Title,
			p.Views,
			p.Likes,
			p.Comments,
			p.Shares,
			p.DurationSec,
			p.PostedAt,
			rawJSON,
			p.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("error executing query: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error committing posts: %w", err)
	}

	return nil
}

// FindPostsByUser returns a user's posts in upload order
func (s *PostStore) FindPostsByUser(ctx context.Context, userID string) ([]post.Post, error) {
	query := `
		SELECT
			id, user_id, platform, title,
			views, likes, comments, shares, duration_sec,
			posted_at, raw, created_at
		FROM posts
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var posts []post.Post
	for rows.Next() {
		var p post.Post
		var rawJSON []byte

		err := rows.Scan(
			&p.ID,
			&p.UserID,
			&p.Platform,
			&p.Title,
			&p.Views,
			&p.Likes,
			&p.Comments,
			&p.Shares,
			&p.DurationSec,
			&p.PostedAt,
			&rawJSON,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning post: %w", err)
		}

		if len(rawJSON) > 0 {
			if err := json.Unmarshal(rawJSON, &p.Raw); err != nil {
				return nil, fmt.Errorf("error unmarshaling raw post: %w", err)
			}
		}

		posts = append(posts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}

	return posts, nil
}

// DeletePostsByUser removes every post of a user and returns how many were deleted
func (s *PostStore) DeletePostsByUser(ctx context.Context, userID string) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM posts WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("error deleting posts: %w", err)
	}
	return tag.RowsAffected(), nil
}
