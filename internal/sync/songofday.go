package sync

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/lumelabs/lume/internal/db"
)

// ErrNoTracks is returned when a user has no imported tracks to choose from.
var ErrNoTracks = errors.New("no tracks available")

// SongOfTheDay deterministically picks one track from the user's imported
// playlists for the given date. All tracks are flattened playlist-by-playlist
// in stored order and the pick is day-of-month (1-31) mod the flattened
// length, so the same date always yields the same track until the catalog
// changes. Index 0 is only hit on days the length divides evenly; that is the
// long-standing selection rule, kept as is.
//
// Purely a read over already-imported rows; no remote calls, no caching.
func (s *Service) SongOfTheDay(ctx context.Context, ownerID uuid.UUID, today time.Time) (db.Track, error) {
	playlists, err := s.playlists.ListByOwner(ctx, ownerID)
	if err != nil {
		return db.Track{}, err
	}

	var all []db.Track
	for _, pl := range playlists {
		all = append(all, pl.Tracks...)
	}
	if len(all) == 0 {
		return db.Track{}, ErrNoTracks
	}

	idx := today.Day() % len(all)
	return all[idx], nil
}
