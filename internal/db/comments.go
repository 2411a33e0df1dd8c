package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CommentRepository handles comment database operations.
type CommentRepository struct {
	pool *pgxpool.Pool
}

// Create inserts a new comment.
func (r *CommentRepository) Create(ctx context.Context, comment *Comment) error {
	query := `
		INSERT INTO comments (id, playlist_id, user_id, user_display_name, user_avatar_url, text, likes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, NOW())
		RETURNING likes, created_at
	`
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	err := r.pool.QueryRow(ctx, query,
		comment.ID,
		comment.PlaylistID,
		comment.UserID,
		comment.UserDisplayName,
		comment.UserAvatarURL,
		comment.Text,
	).Scan(&comment.Likes, &comment.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting comment: %w", err)
	}
	return nil
}

// ListForPlaylist returns the newest comments on a playlist, capped at limit.
func (r *CommentRepository) ListForPlaylist(ctx context.Context, playlistID uuid.UUID, limit int) ([]Comment, error) {
	query := `
		SELECT id, playlist_id, user_id, user_display_name, user_avatar_url, text, likes, created_at
		FROM comments
		WHERE playlist_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, playlistID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying comments: %w", err)
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(
			&c.ID,
			&c.PlaylistID,
			&c.UserID,
			&c.UserDisplayName,
			&c.UserAvatarURL,
			&c.Text,
			&c.Likes,
			&c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// IncrementLikes bumps a comment's like counter and returns the new value.
func (r *CommentRepository) IncrementLikes(ctx context.Context, id uuid.UUID) (int, error) {
	query := `UPDATE comments SET likes = likes + 1 WHERE id = $1 RETURNING likes`
	var likes int
	err := r.pool.QueryRow(ctx, query, id).Scan(&likes)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("incrementing comment likes: %w", err)
	}
	return likes, nil
}
