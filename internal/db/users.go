package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles user database operations.
type UserRepository struct {
	pool *pgxpool.Pool
}

const userColumns = `id, spotify_id, display_name, email, avatar_url, access_token, refresh_token, token_expires_at, created_at`

func scanUser(row pgx.Row) (*User, error) {
	var user User
	err := row.Scan(
		&user.ID,
		&user.SpotifyID,
		&user.DisplayName,
		&user.Email,
		&user.AvatarURL,
		&user.AccessToken,
		&user.RefreshToken,
		&user.TokenExpiresAt,
		&user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	return &user, nil
}

// Get retrieves a user by local ID.
func (r *UserRepository) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

// GetBySpotifyID retrieves a user by their Spotify account ID.
func (r *UserRepository) GetBySpotifyID(ctx context.Context, spotifyID string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE spotify_id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, spotifyID))
}

// Upsert creates or updates a user keyed by Spotify account ID, replacing
// profile fields and tokens. The local ID and created_at survive updates;
// after the call the struct reflects the stored row.
func (r *UserRepository) Upsert(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, spotify_id, display_name, email, avatar_url, access_token, refresh_token, token_expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (spotify_id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			email = EXCLUDED.email,
			avatar_url = EXCLUDED.avatar_url,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_expires_at = EXCLUDED.token_expires_at
		RETURNING id, created_at
	`
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	err := r.pool.QueryRow(ctx, query,
		user.ID,
		user.SpotifyID,
		user.DisplayName,
		user.Email,
		user.AvatarURL,
		user.AccessToken,
		user.RefreshToken,
		user.TokenExpiresAt,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return fmt.Errorf("upserting user: %w", err)
	}
	return nil
}

// UpdateTokens replaces the access token and its expiry for a user. The
// refresh token is left alone; the token-renewal flow does not rotate it.
func (r *UserRepository) UpdateTokens(ctx context.Context, id uuid.UUID, accessToken string, expiresAt time.Time) error {
	query := `
		UPDATE users
		SET access_token = $2, token_expires_at = $3
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query, id, accessToken, expiresAt)
	if err != nil {
		return fmt.Errorf("updating tokens: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearTokens removes the stored Spotify tokens for a user (logout). The
// user row itself is kept.
func (r *UserRepository) ClearTokens(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE users
		SET access_token = '', refresh_token = '', token_expires_at = NULL
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("clearing tokens: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateDisplayName changes a user's display name.
func (r *UserRepository) UpdateDisplayName(ctx context.Context, id uuid.UUID, displayName string) error {
	query := `UPDATE users SET display_name = $2 WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, id, displayName)
	if err != nil {
		return fmt.Errorf("updating display name: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
