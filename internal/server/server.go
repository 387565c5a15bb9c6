// Package server exposes the knowledge base over a JSON HTTP API: search,
// record CRUD, learn/import/update triggers, health, and metrics.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mankihq/manki/pkg/config"
	"github.com/mankihq/manki/pkg/health"
	"github.com/mankihq/manki/pkg/logger"
	"github.com/mankihq/manki/pkg/metrics"
	"github.com/mankihq/manki/pkg/middleware"
)

// Server is the HTTP front end for serve mode.
type Server struct {
	cfg     config.ServerConfig
	handler *Handler
	checker *health.Checker
	metrics *metrics.Metrics
	httpSrv *http.Server
	logger  *slog.Logger
}

// New assembles the router and middleware chain around the API handler.
func New(cfg config.ServerConfig, h *Handler, m *metrics.Metrics) *Server {
	checker := health.NewChecker()
	checker.Register("store", func(ctx context.Context) health.ComponentHealth {
		if _, err := h.store.Count(); err != nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		snap := h.idx.Current()
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("version %d, %d docs", snap.Version(), snap.DocCount()),
		}
	})
	checker.Register("cache", func(ctx context.Context) health.ComponentHealth {
		if h.cache == nil {
			return health.ComponentHealth{Status: health.StatusUp, Message: "disabled"}
		}
		if err := h.cache.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", h.handleSearch)
	mux.HandleFunc("GET /api/v1/commands", h.handleListCommands)
	mux.HandleFunc("GET /api/v1/commands/{lang}/{name}", h.handleGetCommand)
	mux.HandleFunc("DELETE /api/v1/commands/{lang}/{name}", h.handleDeleteCommand)
	mux.HandleFunc("GET /api/v1/metadata", h.handleMetadata)
	mux.HandleFunc("GET /api/v1/stats", h.handleStats)
	mux.HandleFunc("POST /api/v1/learn", h.handleLearn)
	mux.HandleFunc("POST /api/v1/import", h.handleImport)
	mux.HandleFunc("POST /api/v1/update", h.handleUpdate)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())
	mux.Handle("GET /metrics", m.Handler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.WriteTimeout)(chain)
	chain = middleware.Metrics(m)(chain)
	chain = middleware.CORS(middleware.DefaultCORSConfig())(chain)
	chain = middleware.RequestID(chain)

	return &Server{
		cfg:     cfg,
		handler: h,
		checker: checker,
		metrics: m,
		httpSrv: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Bind, cfg.Port),
			Handler:      chain,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout + 5*time.Second,
		},
		logger: logger.WithComponent("server"),
	}
}

// Handler returns the assembled middleware chain, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("server shutdown error", "error", err)
		}
	}()

	s.logger.Info("api listening", "addr", s.httpSrv.Addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
