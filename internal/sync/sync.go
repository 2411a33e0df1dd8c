// Package sync mirrors a user's remote Spotify catalog into local storage
// and serves derived reads over the mirrored data.
package sync

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/lumelabs/lume/internal/db"
	"github.com/lumelabs/lume/internal/spotify"
)

// CatalogClient lists the user's remote playlists and their tracks.
type CatalogClient interface {
	ListPlaylists(ctx context.Context, accessToken string) ([]spotify.PlaylistSummary, error)
	ListPlaylistTracks(ctx context.Context, accessToken, playlistID string) ([]spotify.PlaylistTrack, error)
}

// TokenEnsurer guarantees a usable access token before remote calls.
type TokenEnsurer interface {
	EnsureValid(ctx context.Context, user *db.User) (*db.User, error)
}

// PlaylistStore persists imported playlists and reads them back per owner.
type PlaylistStore interface {
	Upsert(ctx context.Context, pl *db.Playlist) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]db.Playlist, error)
}

// Service imports playlists from Spotify and answers catalog reads.
type Service struct {
	catalog   CatalogClient
	tokens    TokenEnsurer
	playlists PlaylistStore
	logger    *log.Logger
}

// New creates a sync service.
func New(catalog CatalogClient, tokens TokenEnsurer, playlists PlaylistStore, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		catalog:   catalog,
		tokens:    tokens,
		playlists: playlists,
		logger:    logger,
	}
}

// ImportPlaylists mirrors the first page of the user's remote playlists into
// local storage, fetching the first page of tracks for each, and returns the
// stored rows in provider order.
//
// Playlists are processed strictly in sequence and the first failure aborts
// the run; rows upserted before the failure stay committed. Re-importing the
// same remote playlist updates its existing row in place, leaving the local
// like/comment counters and created_at untouched.
func (s *Service) ImportPlaylists(ctx context.Context, user *db.User) ([]db.Playlist, error) {
	user, err := s.tokens.EnsureValid(ctx, user)
	if err != nil {
		return nil, err
	}

	summaries, err := s.catalog.ListPlaylists(ctx, user.AccessToken)
	if err != nil {
		return nil, err
	}

	imported := make([]db.Playlist, 0, len(summaries))
	for _, summary := range summaries {
		entries, err := s.catalog.ListPlaylistTracks(ctx, user.AccessToken, summary.ID)
		if err != nil {
			return nil, err
		}

		pl := projectPlaylist(user, summary)
		pl.Tracks = projectTracks(entries)

		if err := s.playlists.Upsert(ctx, &pl); err != nil {
			return nil, err
		}
		imported = append(imported, pl)
	}

	s.logger.Info("imported playlists", "user", user.ID, "count", len(imported))
	return imported, nil
}
