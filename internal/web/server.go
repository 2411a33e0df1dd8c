// Package web provides the HTTP server and JSON API for LuMe.
package web

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/oauth2"
	oauthspotify "golang.org/x/oauth2/spotify"

	"github.com/lumelabs/lume/internal/auth"
	"github.com/lumelabs/lume/internal/config"
	"github.com/lumelabs/lume/internal/db"
	"github.com/lumelabs/lume/internal/spotify"
	"github.com/lumelabs/lume/internal/sync"
)

// oauthScopes are the Spotify permissions the app asks for at login.
var oauthScopes = []string{
	"user-read-email",
	"playlist-read-private",
	"playlist-read-collaborative",
}

// Server is the HTTP server for the API.
type Server struct {
	router   chi.Router
	server   *http.Server
	handlers *Handlers
	logger   *log.Logger
}

// NewServer wires the application together: Spotify client, token refresher,
// sync service, token issuer and HTTP handlers.
func NewServer(cfg *config.Config, database *db.DB, logger *log.Logger) *Server {
	spotifyClient := spotify.NewClient(cfg)
	refresher := auth.NewRefresher(spotifyClient, database.Users())
	syncService := sync.New(spotifyClient, refresher, database.Playlists(), logger)
	issuer := auth.NewTokenIssuer(cfg.JWTSecret)

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.SpotifyClientID,
		ClientSecret: cfg.SpotifyClientSecret,
		RedirectURL:  cfg.SpotifyRedirectURI,
		Scopes:       oauthScopes,
		Endpoint:     oauthspotify.Endpoint,
	}

	handlers := NewHandlers(cfg, database, spotifyClient, syncService, issuer, oauthCfg, logger)

	router := chi.NewRouter()

	s := &Server{
		router:   router,
		handlers: handlers,
		logger:   logger,
	}

	s.setupMiddleware()
	s.setupRoutes(issuer, database.Users())

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware for the router.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

// setupRoutes configures routes for the API.
func (s *Server) setupRoutes(issuer *auth.TokenIssuer, users *db.UserRepository) {
	requireUser := RequireUser(issuer, users)

	s.router.Get("/", s.handlers.Root)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Get("/login", s.handlers.Login)
			r.Get("/callback", s.handlers.Callback)
			r.With(requireUser).Post("/logout", s.handlers.Logout)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(requireUser)
			r.Get("/me", s.handlers.Me)
			r.Put("/me", s.handlers.UpdateMe)
		})

		r.Route("/playlists", func(r chi.Router) {
			r.Get("/", s.handlers.Feed)
			r.With(requireUser).Get("/import", s.handlers.ImportPlaylists)
			r.With(requireUser).Get("/song-of-the-day", s.handlers.SongOfTheDay)
			r.Get("/{id}", s.handlers.GetPlaylist)
			r.With(requireUser).Post("/{id}/like", s.handlers.LikePlaylist)
		})

		r.Route("/comments", func(r chi.Router) {
			r.Get("/{id}", s.handlers.ListComments)
			r.With(requireUser).Post("/{id}", s.handlers.CreateComment)
			r.With(requireUser).Post("/{id}/like", s.handlers.LikeComment)
		})
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Run starts the server and handles graceful shutdown on interrupt signals.
func (s *Server) Run() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-stop:
		s.logger.Info("shutting down server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}
