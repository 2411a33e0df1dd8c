package web

import (
	"time"

	"github.com/lumelabs/lume/internal/db"
)

// JSON shapes returned to the frontend.

type userView struct {
	ID          string  `json:"id"`
	SpotifyID   string  `json:"spotifyId"`
	DisplayName string  `json:"displayName"`
	Email       string  `json:"email"`
	AvatarURL   *string `json:"avatarUrl"`
}

type playlistView struct {
	ID                string     `json:"id"`
	SpotifyPlaylistID string     `json:"spotifyPlaylistId"`
	Name              string     `json:"name"`
	Description       string     `json:"description"`
	CoverImage        string     `json:"coverImage"`
	OwnerID           string     `json:"ownerId"`
	OwnerDisplayName  string     `json:"ownerDisplayName"`
	TrackCount        int        `json:"trackCount"`
	IsPublic          bool       `json:"isPublic"`
	Tracks            []db.Track `json:"tracks"`
	Likes             int        `json:"likes"`
	CommentsCount     int        `json:"commentsCount"`
	CreatedAt         time.Time  `json:"createdAt"`
}

type commentView struct {
	ID              string    `json:"id"`
	PlaylistID      string    `json:"playlistId"`
	UserID          string    `json:"userId"`
	UserDisplayName string    `json:"userDisplayName"`
	UserAvatarURL   *string   `json:"userAvatarUrl"`
	Text            string    `json:"text"`
	Likes           int       `json:"likes"`
	CreatedAt       time.Time `json:"createdAt"`
}

func toUserView(u *db.User) userView {
	return userView{
		ID:          u.ID.String(),
		SpotifyID:   u.SpotifyID,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		AvatarURL:   u.AvatarURL,
	}
}

func toPlaylistView(p *db.Playlist) playlistView {
	tracks := p.Tracks
	if tracks == nil {
		tracks = []db.Track{}
	}
	return playlistView{
		ID:                p.ID.String(),
		SpotifyPlaylistID: p.SpotifyPlaylistID,
		Name:              p.Name,
		Description:       p.Description,
		CoverImage:        p.CoverImage,
		OwnerID:           p.OwnerID.String(),
		OwnerDisplayName:  p.OwnerDisplayName,
		TrackCount:        p.TrackCount,
		IsPublic:          p.IsPublic,
		Tracks:            tracks,
		Likes:             p.Likes,
		CommentsCount:     p.CommentsCount,
		CreatedAt:         p.CreatedAt,
	}
}

func toPlaylistViews(playlists []db.Playlist) []playlistView {
	views := make([]playlistView, len(playlists))
	for i := range playlists {
		views[i] = toPlaylistView(&playlists[i])
	}
	return views
}

func toCommentView(c *db.Comment) commentView {
	return commentView{
		ID:              c.ID.String(),
		PlaylistID:      c.PlaylistID.String(),
		UserID:          c.UserID.String(),
		UserDisplayName: c.UserDisplayName,
		UserAvatarURL:   c.UserAvatarURL,
		Text:            c.Text,
		Likes:           c.Likes,
		CreatedAt:       c.CreatedAt,
	}
}

func toCommentViews(comments []db.Comment) []commentView {
	views := make([]commentView, len(comments))
	for i := range comments {
		views[i] = toCommentView(&comments[i])
	}
	return views
}
