package server

import (
	"context"
	"net/http"
	"time"

	"github.com/hongminglow/medtour-be/internal/access"
	"github.com/hongminglow/medtour-be/internal/auth"
	"github.com/hongminglow/medtour-be/internal/config"
	"github.com/hongminglow/medtour-be/internal/http/handlers"
	"github.com/hongminglow/medtour-be/internal/middleware"
	"github.com/hongminglow/medtour-be/internal/storage"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, store storage.Store) *Server {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           Handler(cfg, store),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// Handler builds the full middleware and route stack.
func Handler(cfg config.Config, store storage.Store) http.Handler {
	mux := http.NewServeMux()
	handlers.NewHealthHandler(time.Now(), store).Register(mux)

	tokenManager := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	handlers.NewAuthHandler(store, tokenManager).Register(mux)

	gate := access.NewGate(cfg.SignInPath, cfg.OnboardingPath)
	handlers.NewAccessHandler(gate, store, store).Register(mux)
	handlers.NewStateHandler(store).Register(mux)

	resolver := access.NewResolver(store, store)
	return middleware.CORS(cfg.CORSOrigins, middleware.Logging(middleware.Session(tokenManager, resolver, mux)))
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
