// Package api provides the HTTP server and handlers for the srp6a API.
//
//nolint:revive // "api" is a clear and appropriate package name
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/nullreceiver/srp6a/internal/config"
	"github.com/nullreceiver/srp6a/internal/logging"
)

// Server represents the HTTP API server. TLS termination, if any, is left
// to a reverse proxy in front of this service.
type Server struct {
	httpServer *http.Server
	logger     *logging.Logger
	config     *config.Config
}

// New creates a new API server instance.
func New(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	mux := http.NewServeMux()

	server := &Server{
		httpServer: &http.Server{
			Addr:              cfg.ListenAddr(),
			Handler:           mux,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
		config: cfg,
	}

	return server, nil
}

// Start begins serving HTTP requests, blocking until ctx is canceled or a
// fatal server error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting HTTP server", map[string]any{
		"address": s.httpServer.Addr,
	})

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// Handler returns the HTTP handler for route registration.
func (s *Server) Handler() *http.ServeMux {
	if mux, ok := s.httpServer.Handler.(*http.ServeMux); ok {
		return mux
	}
	return nil
}

// RegisterRoute registers a handler for a specific HTTP path.
func (s *Server) RegisterRoute(pattern string, handler http.Handler) {
	if mux := s.Handler(); mux != nil {
		mux.Handle(pattern, handler)
	}
}

// RegisterRouteFunc registers a handler function for a specific HTTP path.
func (s *Server) RegisterRouteFunc(pattern string, handler http.HandlerFunc) {
	if mux := s.Handler(); mux != nil {
		mux.HandleFunc(pattern, handler)
	}
}
