// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
)

// DefaultAddr is the default listen address for the API server.
const DefaultAddr = "127.0.0.1:4000"

// Sentinel errors for missing required configuration.
var (
	ErrMissingDatabaseURL  = errors.New("missing DATABASE_URL environment variable")
	ErrMissingClientID     = errors.New("missing SPOTIFY_CLIENT_ID environment variable")
	ErrMissingClientSecret = errors.New("missing SPOTIFY_CLIENT_SECRET environment variable")
	ErrMissingRedirectURI  = errors.New("missing SPOTIFY_REDIRECT_URI environment variable")
	ErrMissingJWTSecret    = errors.New("missing JWT_SECRET environment variable")
)

// Config holds everything the application needs to run. It is built once at
// startup and passed into components explicitly; business logic never reads
// the process environment directly.
type Config struct {
	Addr        string
	DatabaseURL string

	// Spotify application credentials.
	SpotifyClientID     string
	SpotifyClientSecret string
	SpotifyRedirectURI  string

	// Secret used to sign the API's own bearer tokens.
	JWTSecret string

	// FrontendURI is where the OAuth callback redirects after login.
	FrontendURI string
}

// Load reads configuration from the environment. Required variables produce
// sentinel errors when absent; optional ones fall back to defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Addr:                os.Getenv("ADDR"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		SpotifyClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
		SpotifyClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
		SpotifyRedirectURI:  os.Getenv("SPOTIFY_REDIRECT_URI"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		FrontendURI:         os.Getenv("FRONTEND_URI"),
	}

	switch {
	case cfg.DatabaseURL == "":
		return nil, ErrMissingDatabaseURL
	case cfg.SpotifyClientID == "":
		return nil, ErrMissingClientID
	case cfg.SpotifyClientSecret == "":
		return nil, ErrMissingClientSecret
	case cfg.SpotifyRedirectURI == "":
		return nil, ErrMissingRedirectURI
	case cfg.JWTSecret == "":
		return nil, ErrMissingJWTSecret
	}

	if cfg.Addr == "" {
		if port := os.Getenv("PORT"); port != "" {
			cfg.Addr = fmt.Sprintf("127.0.0.1:%s", port)
		} else {
			cfg.Addr = DefaultAddr
		}
	}
	if cfg.FrontendURI == "" {
		cfg.FrontendURI = "http://127.0.0.1:3000"
	}

	return cfg, nil
}
