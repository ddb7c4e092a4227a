// Package web provides the HTTP front end of juryclean. Uploaded CSVs are
// cleaned in memory and returned as JSON or CSV; nothing is stored.
package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/juryclean/internal/config"
	"github.com/JonMunkholm/juryclean/internal/core"
	"github.com/JonMunkholm/juryclean/internal/csvio"
	webmw "github.com/JonMunkholm/juryclean/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Options configures a Server.
type Options struct {
	Server config.ServerConfig
	Clean  core.Options
	Read   csvio.Options
	Write  csvio.WriteOptions
}

// Server is the HTTP server for cleaning uploads.
type Server struct {
	cfg     config.ServerConfig
	rules   core.RuleSet
	cleaner *core.Cleaner
	read    csvio.Options
	write   csvio.WriteOptions
	limiter *Limiter
	logger  *slog.Logger

	router *chi.Mux
	server *http.Server
}

// NewServer compiles the clean options and sets up routes.
func NewServer(opts Options) (*Server, error) {
	cleaner, err := core.NewCleaner(opts.Clean)
	if err != nil {
		return nil, fmt.Errorf("new server: %w", err)
	}

	logger := opts.Clean.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:     opts.Server,
		rules:   opts.Clean.Rules,
		cleaner: cleaner,
		read:    opts.Read,
		write:   opts.Write,
		limiter: NewLimiter(opts.Server.MaxConcurrent, opts.Server.MaxWaitTime),
		logger:  logger,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         opts.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  opts.Server.ReadTimeout,
		WriteTimeout: opts.Server.WriteTimeout,
		IdleTimeout:  opts.Server.IdleTimeout,
	}
	return s, nil
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(webmw.TrustedRealIP(s.cfg.TrustedProxies))
	s.router.Use(webmw.Logger)
	s.router.Use(middleware.Recoverer)
	if s.cfg.RequestTimeout > 0 {
		s.router.Use(middleware.Timeout(s.cfg.RequestTimeout))
	}
	s.router.Use(securityHeaders)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/clean", s.handleClean)
		r.Get("/rules", s.handleRules)
	})
}

// Start listens on the configured address until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("starting server", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests and waits for running cleans.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return s.limiter.WaitForDrain(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}
