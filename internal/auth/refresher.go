// Package auth handles delegated-credential renewal and the API's own
// bearer tokens.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lumelabs/lume/internal/db"
	"github.com/lumelabs/lume/internal/spotify"
)

// TokenExchanger performs the refresh-token grant against the provider.
type TokenExchanger interface {
	RefreshAccessToken(ctx context.Context, refreshToken string) (*spotify.Token, error)
}

// CredentialStore persists renewed access tokens.
type CredentialStore interface {
	UpdateTokens(ctx context.Context, id uuid.UUID, accessToken string, expiresAt time.Time) error
}

// Refresher keeps a user's Spotify access token usable, renewing it through
// the refresh-token grant when it has expired.
type Refresher struct {
	exchanger TokenExchanger
	users     CredentialStore
}

// NewRefresher creates a Refresher.
func NewRefresher(exchanger TokenExchanger, users CredentialStore) *Refresher {
	return &Refresher{exchanger: exchanger, users: users}
}

// EnsureValid returns the user with a usable access token, refreshing and
// persisting first when needed. A token counts as expired at its expiry
// instant, not before; a nil expiry (never fetched) always refreshes.
//
// One attempt per call, no retry. Concurrent calls for the same user are not
// serialized: two requests can both observe an expired token and both
// refresh, with the last write winning. That matches the stored-credential
// semantics this API has always had.
func (r *Refresher) EnsureValid(ctx context.Context, user *db.User) (*db.User, error) {
	if user.TokenExpiresAt != nil && time.Now().Before(*user.TokenExpiresAt) {
		return user, nil
	}

	token, err := r.exchanger.RefreshAccessToken(ctx, user.RefreshToken)
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	if err := r.users.UpdateTokens(ctx, user.ID, token.AccessToken, expiresAt); err != nil {
		return nil, fmt.Errorf("persisting refreshed token: %w", err)
	}

	user.AccessToken = token.AccessToken
	user.TokenExpiresAt = &expiresAt
	return user, nil
}
