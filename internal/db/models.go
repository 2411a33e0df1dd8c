package db

import (
	"time"

	"github.com/google/uuid"
)

// User represents a local account linked to a Spotify profile. The Spotify
// tokens live on the user row: the access token is short-lived, the refresh
// token long-lived, and TokenExpiresAt is nil until the first authorization
// exchange completes. Logout clears the token fields but keeps the row.
type User struct {
	ID             uuid.UUID
	SpotifyID      string
	DisplayName    string
	Email          string
	AvatarURL      *string // nullable
	AccessToken    string
	RefreshToken   string
	TokenExpiresAt *time.Time // nullable
	CreatedAt      time.Time
}

// Track is one imported playlist entry; Duration is the display string
// ("M:SS") derived from the provider's millisecond duration at import time.
type Track struct {
	TrackID  string `json:"trackId"`
	Name     string `json:"name"`
	Artist   string `json:"artist"`
	Duration string `json:"duration"`
}

// Playlist mirrors one remote playlist. SpotifyPlaylistID is the upsert key;
// Tracks holds at most the first page fetched at import, in provider order,
// stored as a JSONB array. Likes, CommentsCount and CreatedAt are local-only
// and never touched by re-imports.
type Playlist struct {
	ID                uuid.UUID
	SpotifyPlaylistID string
	Name              string
	Description       string
	CoverImage        string
	OwnerID           uuid.UUID
	OwnerDisplayName  string
	TrackCount        int
	IsPublic          bool
	Tracks            []Track
	Likes             int
	CommentsCount     int
	CreatedAt         time.Time
}

// Comment is a social annotation on a playlist. The author fields are a
// snapshot taken at creation, not a live reference.
type Comment struct {
	ID              uuid.UUID
	PlaylistID      uuid.UUID
	UserID          uuid.UUID
	UserDisplayName string
	UserAvatarURL   *string // nullable
	Text            string
	Likes           int
	CreatedAt       time.Time
}
