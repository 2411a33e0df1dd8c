package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PlaylistRepository handles playlist database operations.
type PlaylistRepository struct {
	pool *pgxpool.Pool
}

const playlistColumns = `id, spotify_playlist_id, name, description, cover_image, owner_id, owner_display_name, track_count, is_public, tracks, likes, comments_count, created_at`

func scanPlaylist(row pgx.Row) (*Playlist, error) {
	var pl Playlist
	err := row.Scan(
		&pl.ID,
		&pl.SpotifyPlaylistID,
		&pl.Name,
		&pl.Description,
		&pl.CoverImage,
		&pl.OwnerID,
		&pl.OwnerDisplayName,
		&pl.TrackCount,
		&pl.IsPublic,
		&pl.Tracks,
		&pl.Likes,
		&pl.CommentsCount,
		&pl.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning playlist: %w", err)
	}
	return &pl, nil
}

// Upsert inserts a playlist keyed by its Spotify playlist ID, or replaces the
// imported fields of the existing row. Local counters (likes, comments_count)
// and created_at are set only on first insert and never touched afterwards.
// After the call the struct reflects the stored row, including the surviving
// local fields on an update.
func (r *PlaylistRepository) Upsert(ctx context.Context, pl *Playlist) error {
	query := `
		INSERT INTO playlists (id, spotify_playlist_id, name, description, cover_image, owner_id, owner_display_name, track_count, is_public, tracks, likes, comments_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 0, 0, NOW())
		ON CONFLICT (spotify_playlist_id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			cover_image = EXCLUDED.cover_image,
			owner_id = EXCLUDED.owner_id,
			owner_display_name = EXCLUDED.owner_display_name,
			track_count = EXCLUDED.track_count,
			is_public = EXCLUDED.is_public,
			tracks = EXCLUDED.tracks
		RETURNING id, likes, comments_count, created_at
	`
	if pl.ID == uuid.Nil {
		pl.ID = uuid.New()
	}
	err := r.pool.QueryRow(ctx, query,
		pl.ID,
		pl.SpotifyPlaylistID,
		pl.Name,
		pl.Description,
		pl.CoverImage,
		pl.OwnerID,
		pl.OwnerDisplayName,
		pl.TrackCount,
		pl.IsPublic,
		pl.Tracks,
	).Scan(&pl.ID, &pl.Likes, &pl.CommentsCount, &pl.CreatedAt)
	if err != nil {
		return fmt.Errorf("upserting playlist: %w", err)
	}
	return nil
}

// Get retrieves a playlist by its local ID.
func (r *PlaylistRepository) Get(ctx context.Context, id uuid.UUID) (*Playlist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE id = $1`
	return scanPlaylist(r.pool.QueryRow(ctx, query, id))
}

// GetBySpotifyID retrieves a playlist by its Spotify playlist ID.
func (r *PlaylistRepository) GetBySpotifyID(ctx context.Context, spotifyPlaylistID string) (*Playlist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE spotify_playlist_id = $1`
	return scanPlaylist(r.pool.QueryRow(ctx, query, spotifyPlaylistID))
}

// ListPublic returns the newest public playlists for the feed, capped at limit.
func (r *PlaylistRepository) ListPublic(ctx context.Context, limit int) ([]Playlist, error) {
	query := `
		SELECT ` + playlistColumns + `
		FROM playlists
		WHERE is_public
		ORDER BY created_at DESC
		LIMIT $1
	`
	return r.list(ctx, query, limit)
}

// ListByOwner returns all playlists owned by a user in a stable order
// (oldest import first, ties broken by ID) so that derived reads over the
// flattened track sequences are reproducible.
func (r *PlaylistRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Playlist, error) {
	query := `
		SELECT ` + playlistColumns + `
		FROM playlists
		WHERE owner_id = $1
		ORDER BY created_at ASC, id ASC
	`
	return r.list(ctx, query, ownerID)
}

func (r *PlaylistRepository) list(ctx context.Context, query string, args ...any) ([]Playlist, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying playlists: %w", err)
	}
	defer rows.Close()

	var playlists []Playlist
	for rows.Next() {
		pl, err := scanPlaylist(rows)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, *pl)
	}
	return playlists, rows.Err()
}

// IncrementLikes bumps a playlist's like counter and returns the new value.
func (r *PlaylistRepository) IncrementLikes(ctx context.Context, id uuid.UUID) (int, error) {
	query := `UPDATE playlists SET likes = likes + 1 WHERE id = $1 RETURNING likes`
	var likes int
	err := r.pool.QueryRow(ctx, query, id).Scan(&likes)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("incrementing playlist likes: %w", err)
	}
	return likes, nil
}

// IncrementComments bumps a playlist's comment counter.
func (r *PlaylistRepository) IncrementComments(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE playlists SET comments_count = comments_count + 1 WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("incrementing playlist comments: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
