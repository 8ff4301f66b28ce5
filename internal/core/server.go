// Package core provides the API chassis for the riverWatch service. It
// creates a chi router and enforces cross-cutting concerns -- logging,
// request identification, and error handling -- before requests reach
// domain-specific handlers.
package core

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/k-devoe/riverWatch/internal/config"
)

// Server encapsulates the router and cross-cutting dependencies for the
// riverWatch API, allowing for easy injection during testing.
type Server struct {
	Config       *config.Config
	Logger       *slog.Logger
	HealthProbes []HealthProbe

	router *chi.Mux
}

// NewServer initializes the chassis and applies the base middleware chain.
// The caller mounts domain routes on Router() after construction.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	s := &Server{
		Config: cfg,
		Logger: logger,
		router: chi.NewRouter(),
	}

	// Recoverer is outermost so every panic in the chain is caught.
	s.router.Use(s.Recoverer)
	s.router.Use(RequestID)
	s.router.Use(RequestLogger(logger))

	s.router.Get("/health", s.HandleHealth)

	return s, nil
}

// Handler returns the http.Handler interface for the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router returns the underlying chi.Mux for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Shutdown performs a graceful termination of server resources.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Logger.InfoContext(ctx, "server shutdown complete")
	return nil
}
