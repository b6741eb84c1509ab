// Package admin provides the operator-facing HTTP server: Prometheus
// metrics, the effective configuration and profiling endpoints.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alchemorsel/mealplanner/internal/infrastructure/config"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/mealplanner/internal/infrastructure/monitoring"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Server serves admin endpoints on the metrics port
type Server struct {
	config *config.Config
	logger *zap.Logger
	router *chi.Mux
	server *http.Server
}

// NewServer creates the admin server
func NewServer(cfg *config.Config, logger *zap.Logger, metrics *monitoring.Metrics) *Server {
	s := &Server{
		config: cfg,
		logger: logger.Named("admin-server"),
	}
	s.router = s.setupRouter(metrics)
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Monitoring.MetricsPort),
		Handler:           s.router,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) setupRouter(metrics *monitoring.Metrics) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AdminLogger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NoCache())

	r.Handle("/metrics", metrics.Handler())
	r.Get("/debug/config", s.handleConfig)
	r.Mount("/debug", chimiddleware.Profiler())

	return r
}

// handleConfig serves the running configuration with secrets masked
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.config.Redacted()); err != nil {
		s.logger.Error("Failed to encode config", zap.Error(err))
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("Starting admin server", zap.String("address", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
