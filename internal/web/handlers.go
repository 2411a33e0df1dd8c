package web

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/lumelabs/lume/internal/auth"
	"github.com/lumelabs/lume/internal/config"
	"github.com/lumelabs/lume/internal/db"
	"github.com/lumelabs/lume/internal/spotify"
	"github.com/lumelabs/lume/internal/sync"
)

const (
	feedLimit    = 50
	commentLimit = 100
)

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	cfg      *config.Config
	database *db.DB
	spotify  *spotify.Client
	sync     *sync.Service
	issuer   *auth.TokenIssuer
	oauth    *oauth2.Config
	logger   *log.Logger
}

// NewHandlers creates a Handlers instance.
func NewHandlers(cfg *config.Config, database *db.DB, spotifyClient *spotify.Client, syncService *sync.Service, issuer *auth.TokenIssuer, oauthCfg *oauth2.Config, logger *log.Logger) *Handlers {
	return &Handlers{
		cfg:      cfg,
		database: database,
		spotify:  spotifyClient,
		sync:     syncService,
		issuer:   issuer,
		oauth:    oauthCfg,
		logger:   logger,
	}
}

// Root answers the health-check style root route (GET /).
func (h *Handlers) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, "🎵 LuMe API is running")
}

// Login starts the Spotify OAuth flow (GET /api/auth/login).
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	state, err := generateOAuthState()
	if err != nil {
		respondMessage(w, http.StatusInternalServerError, "Failed to generate state")
		return
	}

	// Store state in cookie for validation on callback
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   300, // 5 minutes
	})

	http.Redirect(w, r, h.oauth.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// Callback finishes the OAuth flow (GET /api/auth/callback): exchanges the
// code, mirrors the Spotify profile into the users table and hands the
// frontend a signed API token via redirect.
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || r.URL.Query().Get("state") != stateCookie.Value {
		respondMessage(w, http.StatusBadRequest, "State mismatch")
		return
	}

	// Clear state cookie
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		h.redirectWithError(w, r, errMsg)
		return
	}

	token, err := h.spotify.ExchangeCode(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		h.logger.Warn("code exchange failed", "err", err)
		h.redirectWithError(w, r, "auth_failed")
		return
	}

	profile, err := h.spotify.CurrentProfile(r.Context(), token.AccessToken)
	if err != nil {
		h.logger.Warn("profile fetch failed", "err", err)
		h.redirectWithError(w, r, "auth_failed")
		return
	}

	var avatarURL *string
	if len(profile.Images) > 0 {
		avatarURL = &profile.Images[0].URL
	}
	expiresAt := time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)

	user := &db.User{
		SpotifyID:      profile.ID,
		DisplayName:    profile.DisplayName,
		Email:          profile.Email,
		AvatarURL:      avatarURL,
		AccessToken:    token.AccessToken,
		RefreshToken:   token.RefreshToken,
		TokenExpiresAt: &expiresAt,
	}
	if err := h.database.Users().Upsert(r.Context(), user); err != nil {
		h.respondError(w, r, err)
		return
	}

	appToken, err := h.issuer.Issue(user)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	http.Redirect(w, r, h.cfg.FrontendURI+"/?token="+url.QueryEscape(appToken), http.StatusTemporaryRedirect)
}

func (h *Handlers) redirectWithError(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, h.cfg.FrontendURI+"/?error="+url.QueryEscape(code), http.StatusTemporaryRedirect)
}

// Logout clears the stored Spotify tokens for the current user
// (POST /api/auth/logout). The user row is kept.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if err := h.database.Users().ClearTokens(r.Context(), user.ID); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "Logged out successfully")
}

// Me returns the current user's profile (GET /api/users/me).
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, toUserView(UserFromContext(r.Context())))
}

// UpdateMe updates the current user's display name (PUT /api/users/me).
func (h *Handlers) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var body struct {
		DisplayName string `json:"displayName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user := UserFromContext(r.Context())
	if body.DisplayName != "" {
		if err := h.database.Users().UpdateDisplayName(r.Context(), user.ID, body.DisplayName); err != nil {
			h.respondError(w, r, err)
			return
		}
		user.DisplayName = body.DisplayName
	}
	respondJSON(w, http.StatusOK, map[string]string{"displayName": user.DisplayName})
}

// ImportPlaylists mirrors the user's Spotify playlists into local storage
// (GET /api/playlists/import).
func (h *Handlers) ImportPlaylists(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	imported, err := h.sync.ImportPlaylists(r.Context(), user)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message":   "Playlists imported",
		"playlists": toPlaylistViews(imported),
	})
}

// Feed lists the newest public playlists (GET /api/playlists).
func (h *Handlers) Feed(w http.ResponseWriter, r *http.Request) {
	playlists, err := h.database.Playlists().ListPublic(r.Context(), feedLimit)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toPlaylistViews(playlists))
}

// SongOfTheDay picks today's track from the user's imported playlists
// (GET /api/playlists/song-of-the-day).
func (h *Handlers) SongOfTheDay(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	track, err := h.sync.SongOfTheDay(r.Context(), user.ID, time.Now())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, track)
}

// GetPlaylist fetches one playlist by local ID, falling back to the Spotify
// playlist ID when the path segment is not a UUID (GET /api/playlists/{id}).
func (h *Handlers) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")

	var pl *db.Playlist
	var err error
	if id, parseErr := uuid.Parse(raw); parseErr == nil {
		pl, err = h.database.Playlists().Get(r.Context(), id)
	} else {
		pl, err = h.database.Playlists().GetBySpotifyID(r.Context(), raw)
	}
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toPlaylistView(pl))
}

// LikePlaylist increments a playlist's like counter
// (POST /api/playlists/{id}/like).
func (h *Handlers) LikePlaylist(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondMessage(w, http.StatusNotFound, "Not found")
		return
	}

	likes, err := h.database.Playlists().IncrementLikes(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"likes": likes})
}

// CreateComment adds a comment to a playlist and bumps its comment counter
// (POST /api/comments/{id}).
func (h *Handlers) CreateComment(w http.ResponseWriter, r *http.Request) {
	playlistID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondMessage(w, http.StatusNotFound, "Not found")
		return
	}

	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Text == "" {
		respondMessage(w, http.StatusBadRequest, "Comment text is required")
		return
	}

	playlist, err := h.database.Playlists().Get(r.Context(), playlistID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	user := UserFromContext(r.Context())
	comment := &db.Comment{
		PlaylistID:      playlist.ID,
		UserID:          user.ID,
		UserDisplayName: user.DisplayName,
		UserAvatarURL:   user.AvatarURL,
		Text:            body.Text,
	}
	if err := h.database.Comments().Create(r.Context(), comment); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.database.Playlists().IncrementComments(r.Context(), playlist.ID); err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toCommentView(comment))
}

// ListComments lists the newest comments on a playlist
// (GET /api/comments/{id}).
func (h *Handlers) ListComments(w http.ResponseWriter, r *http.Request) {
	playlistID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondMessage(w, http.StatusNotFound, "Not found")
		return
	}

	comments, err := h.database.Comments().ListForPlaylist(r.Context(), playlistID, commentLimit)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCommentViews(comments))
}

// LikeComment increments a comment's like counter
// (POST /api/comments/{id}/like).
func (h *Handlers) LikeComment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondMessage(w, http.StatusNotFound, "Not found")
		return
	}

	likes, err := h.database.Comments().IncrementLikes(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"likes": likes})
}

// generateOAuthState creates a random state string for OAuth.
func generateOAuthState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
