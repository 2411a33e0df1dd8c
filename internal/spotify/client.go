// Package spotify provides a thin typed HTTP client for the Spotify Web API
// endpoints the application uses: token exchange, profile, playlist listing
// and playlist track listing.
package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lumelabs/lume/internal/config"
)

const (
	apiBaseURL      = "https://api.spotify.com/v1"
	accountsBaseURL = "https://accounts.spotify.com"

	// Listing calls fetch a single page only. Users with more playlists
	// than playlistPageSize, or playlists with more tracks than
	// trackPageSize, are deliberately truncated.
	playlistPageSize = 50
	trackPageSize    = 100
)

// Client issues authenticated calls against the Spotify Web API. It holds the
// application credentials for token exchanges; access tokens for catalog
// calls are supplied per call by the caller.
type Client struct {
	httpClient   *http.Client
	clientID     string
	clientSecret string
	redirectURI  string

	apiBaseURL      string
	accountsBaseURL string
}

// NewClient creates a Spotify client from the application configuration.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		clientID:        cfg.SpotifyClientID,
		clientSecret:    cfg.SpotifyClientSecret,
		redirectURI:     cfg.SpotifyRedirectURI,
		apiBaseURL:      apiBaseURL,
		accountsBaseURL: accountsBaseURL,
	}
}

// ExchangeCode trades an authorization code for an initial token pair.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*Token, error) {
	form := url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {c.redirectURI},
	}
	return c.doTokenRequest(ctx, form)
}

// RefreshAccessToken trades a refresh token for a new access token. The
// provider does not return a new refresh token on this grant.
func (c *Client) RefreshAccessToken(ctx context.Context, refreshToken string) (*Token, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	return c.doTokenRequest(ctx, form)
}

// doTokenRequest posts a form to the token endpoint, authenticated with the
// application's client id/secret via HTTP Basic. Single attempt, no retry.
func (c *Client) doTokenRequest(ctx context.Context, form url.Values) (*Token, error) {
	reqURL := c.accountsBaseURL + "/api/token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &AuthError{Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.clientID, c.clientSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &AuthError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &AuthError{StatusCode: resp.StatusCode, Err: fmt.Errorf("reading response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		authErr := &AuthError{StatusCode: resp.StatusCode}
		var payload tokenErrorBody
		if err := json.Unmarshal(body, &payload); err == nil {
			authErr.Code = payload.Error
			authErr.Description = payload.ErrorDescription
		}
		return nil, authErr
	}

	var token Token
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, &AuthError{StatusCode: resp.StatusCode, Err: fmt.Errorf("parsing token response: %w", err)}
	}
	return &token, nil
}

// CurrentProfile fetches the profile of the user the access token belongs to.
func (c *Client) CurrentProfile(ctx context.Context, accessToken string) (*Profile, error) {
	var profile Profile
	if err := c.getJSON(ctx, accessToken, c.apiBaseURL+"/me", &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ListPlaylists fetches the first page of the user's playlists. No further
// pages are requested.
func (c *Client) ListPlaylists(ctx context.Context, accessToken string) ([]PlaylistSummary, error) {
	reqURL := fmt.Sprintf("%s/me/playlists?limit=%d", c.apiBaseURL, playlistPageSize)
	var page playlistsPage
	if err := c.getJSON(ctx, accessToken, reqURL, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

// ListPlaylistTracks fetches the first page of a playlist's tracks. Entries
// whose underlying track was removed come back with a nil Track.
func (c *Client) ListPlaylistTracks(ctx context.Context, accessToken, playlistID string) ([]PlaylistTrack, error) {
	reqURL := fmt.Sprintf("%s/playlists/%s/tracks?limit=%d", c.apiBaseURL, url.PathEscape(playlistID), trackPageSize)
	var page tracksPage
	if err := c.getJSON(ctx, accessToken, reqURL, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

// getJSON performs an authenticated GET and decodes the response into out.
func (c *Client) getJSON(ctx context.Context, accessToken, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return &APIError{Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{StatusCode: resp.StatusCode, Err: fmt.Errorf("reading response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &APIError{StatusCode: resp.StatusCode, Err: fmt.Errorf("parsing response: %w", err)}
	}
	return nil
}
