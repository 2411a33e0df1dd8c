package sync

import (
	"fmt"
	"math"
	"strings"

	"github.com/lumelabs/lume/internal/db"
	"github.com/lumelabs/lume/internal/spotify"
)

// projectPlaylist maps a remote playlist summary onto the local playlist
// shape, stamped with the importing user as owner. Cover image is the first
// image URL when the provider supplies any, else empty.
func projectPlaylist(owner *db.User, summary spotify.PlaylistSummary) db.Playlist {
	coverImage := ""
	if len(summary.Images) > 0 {
		coverImage = summary.Images[0].URL
	}

	return db.Playlist{
		SpotifyPlaylistID: summary.ID,
		Name:              summary.Name,
		Description:       summary.Description,
		CoverImage:        coverImage,
		OwnerID:           owner.ID,
		OwnerDisplayName:  owner.DisplayName,
		TrackCount:        summary.Tracks.Total,
		IsPublic:          summary.Public,
	}
}

// projectTracks maps playlist entries to stored tracks, preserving order.
// Entries whose underlying track was removed are dropped entirely.
func projectTracks(entries []spotify.PlaylistTrack) []db.Track {
	tracks := make([]db.Track, 0, len(entries))
	for _, entry := range entries {
		if entry.Track == nil {
			continue
		}

		names := make([]string, len(entry.Track.Artists))
		for i, a := range entry.Track.Artists {
			names[i] = a.Name
		}

		tracks = append(tracks, db.Track{
			TrackID:  entry.Track.ID,
			Name:     entry.Track.Name,
			Artist:   strings.Join(names, ", "),
			Duration: FormatDuration(entry.Track.DurationMs),
		})
	}
	return tracks
}

// FormatDuration renders a millisecond duration as "M:SS": whole minutes,
// then the remainder rounded to the nearest second and zero-padded below ten.
func FormatDuration(durationMs int) string {
	minutes := durationMs / 60000
	seconds := int(math.Round(float64(durationMs%60000) / 1000))
	if seconds < 10 {
		return fmt.Sprintf("%d:0%d", minutes, seconds)
	}
	return fmt.Sprintf("%d:%d", minutes, seconds)
}
