package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mselser95/kalshi-arb/internal/risk"
	"github.com/mselser95/kalshi-arb/internal/scheduler"
	"github.com/mselser95/kalshi-arb/pkg/healthprobe"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server is the ops HTTP surface: prometheus metrics, the liveness and
// readiness probes, and the scanner status snapshot.
type Server struct {
	server        *http.Server
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
}

// Config holds server configuration. Limiter and Scheduler are optional;
// without both the status route is not mounted.
type Config struct {
	Port          string
	Logger        *zap.Logger
	HealthChecker *healthprobe.HealthChecker
	Limiter       *risk.Limiter
	Scheduler     *scheduler.Scheduler
	DryRun        bool
}

// New creates a new HTTP server.
func New(cfg *Config) *Server {
	return &Server{
		server: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           newRouter(cfg),
			ReadTimeout:       15 * time.Second,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		logger:        cfg.Logger,
		healthChecker: cfg.HealthChecker,
	}
}

// newRouter assembles the ops routes behind chi's standard middleware.
func newRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/health", cfg.HealthChecker.Health())
	r.Get("/ready", cfg.HealthChecker.Ready())

	if cfg.Limiter != nil && cfg.Scheduler != nil {
		status := NewStatusHandler(cfg.Limiter, cfg.Scheduler, cfg.DryRun, cfg.Logger)
		r.Get("/status", status.HandleStatus)
	}

	return r
}

// Start runs the server until Shutdown is called or listening fails. A
// shutdown-triggered close is not an error.
func (s *Server) Start() error {
	s.logger.Info("http-server-starting", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}

// Shutdown stops accepting connections and drains in-flight requests
// until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http-server-shutting-down")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	s.logger.Info("http-server-shutdown-complete")
	return nil
}
