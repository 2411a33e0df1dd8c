package web

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/lumelabs/lume/internal/auth"
	"github.com/lumelabs/lume/internal/db"
)

type contextKey int

const userContextKey contextKey = iota

// UserLoader resolves a verified token's subject to a stored user.
type UserLoader interface {
	Get(ctx context.Context, id uuid.UUID) (*db.User, error)
}

// RequireUser is middleware that authenticates requests via a bearer token
// and puts the loaded user on the request context. The identity inside a
// verified token is trusted; only existence of the user row is checked.
func RequireUser(issuer *auth.TokenIssuer, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				respondMessage(w, http.StatusUnauthorized, "Invalid or missing token")
				return
			}

			claims, err := issuer.Verify(token)
			if err != nil {
				respondMessage(w, http.StatusUnauthorized, "Invalid or missing token")
				return
			}

			userID, err := uuid.Parse(claims.UserID)
			if err != nil {
				respondMessage(w, http.StatusUnauthorized, "Invalid or missing token")
				return
			}

			user, err := users.Get(r.Context(), userID)
			if err != nil {
				respondMessage(w, http.StatusUnauthorized, "Invalid or missing token")
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the authenticated user set by RequireUser, or nil.
func UserFromContext(ctx context.Context) *db.User {
	user, _ := ctx.Value(userContextKey).(*db.User)
	return user
}
