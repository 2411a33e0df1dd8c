package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lumelabs/lume/internal/db"
	"github.com/lumelabs/lume/internal/spotify"
)

type fakeExchanger struct {
	calls int
	token *spotify.Token
	err   error
}

func (f *fakeExchanger) RefreshAccessToken(_ context.Context, _ string) (*spotify.Token, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.token, nil
}

type fakeCredentialStore struct {
	calls       int
	accessToken string
	expiresAt   time.Time
	err         error
}

func (f *fakeCredentialStore) UpdateTokens(_ context.Context, _ uuid.UUID, accessToken string, expiresAt time.Time) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.accessToken = accessToken
	f.expiresAt = expiresAt
	return nil
}

func userWithExpiry(t *testing.T, expiresAt *time.Time) *db.User {
	t.Helper()
	return &db.User{
		ID:             uuid.New(),
		SpotifyID:      "spotify-user",
		AccessToken:    "stale-access",
		RefreshToken:   "the-refresh",
		TokenExpiresAt: expiresAt,
	}
}

func TestEnsureValid_NoRefreshWhenValid(t *testing.T) {
	expiry := time.Now().Add(time.Second)
	exchanger := &fakeExchanger{}
	store := &fakeCredentialStore{}
	r := NewRefresher(exchanger, store)

	user, err := r.EnsureValid(context.Background(), userWithExpiry(t, &expiry))
	if err != nil {
		t.Fatalf("EnsureValid() error = %v", err)
	}
	if exchanger.calls != 0 {
		t.Errorf("exchange calls = %d, want 0 for a still-valid token", exchanger.calls)
	}
	if user.AccessToken != "stale-access" {
		t.Errorf("AccessToken = %q, want unchanged", user.AccessToken)
	}
}

func TestEnsureValid_RefreshAtExactExpiry(t *testing.T) {
	// The boundary is at-or-after: a token expiring exactly now must refresh.
	expiry := time.Now()
	exchanger := &fakeExchanger{token: &spotify.Token{AccessToken: "fresh-access", ExpiresIn: 3600}}
	store := &fakeCredentialStore{}
	r := NewRefresher(exchanger, store)

	before := time.Now()
	user, err := r.EnsureValid(context.Background(), userWithExpiry(t, &expiry))
	if err != nil {
		t.Fatalf("EnsureValid() error = %v", err)
	}

	if exchanger.calls != 1 {
		t.Fatalf("exchange calls = %d, want 1", exchanger.calls)
	}
	if user.AccessToken != "fresh-access" {
		t.Errorf("AccessToken = %q, want fresh-access", user.AccessToken)
	}
	if user.RefreshToken != "the-refresh" {
		t.Errorf("RefreshToken = %q, want unchanged", user.RefreshToken)
	}

	// New expiry is now + provider lifetime.
	if user.TokenExpiresAt == nil {
		t.Fatal("TokenExpiresAt is nil after refresh")
	}
	wantMin := before.Add(3600 * time.Second)
	wantMax := time.Now().Add(3600 * time.Second)
	if user.TokenExpiresAt.Before(wantMin) || user.TokenExpiresAt.After(wantMax) {
		t.Errorf("TokenExpiresAt = %v, want within [%v, %v]", user.TokenExpiresAt, wantMin, wantMax)
	}

	// Persisted what it returned.
	if store.calls != 1 || store.accessToken != "fresh-access" {
		t.Errorf("store = %+v, want one UpdateTokens with fresh-access", store)
	}
}

func TestEnsureValid_RefreshWhenNeverFetched(t *testing.T) {
	exchanger := &fakeExchanger{token: &spotify.Token{AccessToken: "fresh-access", ExpiresIn: 3600}}
	store := &fakeCredentialStore{}
	r := NewRefresher(exchanger, store)

	user, err := r.EnsureValid(context.Background(), userWithExpiry(t, nil))
	if err != nil {
		t.Fatalf("EnsureValid() error = %v", err)
	}
	if exchanger.calls != 1 {
		t.Errorf("exchange calls = %d, want 1 for nil expiry", exchanger.calls)
	}
	if user.TokenExpiresAt == nil {
		t.Error("TokenExpiresAt still nil after refresh")
	}
}

func TestEnsureValid_ExchangeFailure(t *testing.T) {
	wantErr := &spotify.AuthError{StatusCode: 400, Code: "invalid_grant"}
	exchanger := &fakeExchanger{err: wantErr}
	store := &fakeCredentialStore{}
	r := NewRefresher(exchanger, store)

	expiry := time.Now().Add(-time.Minute)
	_, err := r.EnsureValid(context.Background(), userWithExpiry(t, &expiry))

	var authErr *spotify.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("EnsureValid() error = %T, want *spotify.AuthError", err)
	}
	if store.calls != 0 {
		t.Errorf("store calls = %d, want 0 after a failed exchange", store.calls)
	}
}

func TestEnsureValid_PersistFailure(t *testing.T) {
	exchanger := &fakeExchanger{token: &spotify.Token{AccessToken: "fresh-access", ExpiresIn: 3600}}
	store := &fakeCredentialStore{err: errors.New("connection reset")}
	r := NewRefresher(exchanger, store)

	expiry := time.Now().Add(-time.Minute)
	_, err := r.EnsureValid(context.Background(), userWithExpiry(t, &expiry))
	if err == nil {
		t.Fatal("EnsureValid() error = nil, want persistence failure")
	}
}
