package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lumelabs/lume/internal/db"
	"github.com/lumelabs/lume/internal/spotify"
	"github.com/lumelabs/lume/internal/sync"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}

// respondError maps domain errors onto HTTP responses: failed token renewal
// asks the client to re-authorize, provider failures surface as a bad
// gateway, missing rows as 404, anything else as a generic 500.
func (h *Handlers) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var authErr *spotify.AuthError
	var apiErr *spotify.APIError

	switch {
	case errors.As(err, &authErr):
		h.logger.Warn("spotify authorization lost", "path", r.URL.Path, "err", err)
		respondJSON(w, http.StatusUnauthorized, map[string]string{
			"message": "Spotify authorization expired, please log in again",
			"error":   authErr.Code,
		})
	case errors.As(err, &apiErr):
		h.logger.Error("spotify api failure", "path", r.URL.Path, "err", err)
		respondMessage(w, http.StatusBadGateway, "Spotify request failed")
	case errors.Is(err, db.ErrNotFound):
		respondMessage(w, http.StatusNotFound, "Not found")
	case errors.Is(err, sync.ErrNoTracks):
		respondMessage(w, http.StatusNotFound, "No tracks available")
	default:
		h.logger.Error("request failed", "path", r.URL.Path, "err", err)
		respondMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}
