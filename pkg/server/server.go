// Package server provides the HTTP API for PeakMatch.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ChrisMcGann/PeakMatch/pkg/annotate"
	"github.com/ChrisMcGann/PeakMatch/pkg/config"
	"github.com/ChrisMcGann/PeakMatch/pkg/match"
	"github.com/ChrisMcGann/PeakMatch/pkg/tolerance"
)

// maxBodyBytes bounds request bodies; spectra rarely exceed a few thousand peaks.
const maxBodyBytes = 16 << 20

// Server is the HTTP server for the PeakMatch API.
type Server struct {
	config   *config.ServerConfig
	window   tolerance.Window
	matchCfg match.Config
	annotate []annotate.Option
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a server whose request defaults come from cfg.
func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	window, err := cfg.Tolerance.Window()
	if err != nil {
		return nil, fmt.Errorf("invalid default tolerance: %w", err)
	}
	matchCfg, err := cfg.Match.Config()
	if err != nil {
		return nil, fmt.Errorf("invalid match config: %w", err)
	}
	annotateOpts, err := cfg.Annotate.Options()
	if err != nil {
		return nil, fmt.Errorf("invalid annotate config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Server{
		config:   &cfg.Server,
		window:   window,
		matchCfg: matchCfg,
		annotate: annotateOpts,
		logger:   logger,
	}, nil
}

// Router returns the API handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsMiddleware(s.config.AllowedOrigins))

	r.Post("/api/v1/match", s.handleMatch)
	r.Post("/api/v1/annotate", s.handleAnnotate)
	r.Get("/api/v1/ion-types", s.handleIonTypes)
	r.Get("/health", s.handleHealth)

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", s.server.Addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
