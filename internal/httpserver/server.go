// Package httpserver mounts the catalog API on a chi router.
package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/mcphub/internal/config"
	"github.com/MrSnakeDoc/mcphub/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mcphub/internal/httpserver/mw"
	"github.com/MrSnakeDoc/mcphub/internal/httpserver/routes"
	"github.com/MrSnakeDoc/mcphub/internal/logger"
)

type Server struct {
	http   *http.Server
	logger logger.Logger
}

// NewRouter builds the router with global middlewares and every
// registered route. Tests drive it through httptest.
func NewRouter(cfg *config.Config, loggerClient logger.Logger, d deps.Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.GetHead,
		middleware.RequestID,
		middleware.Recoverer,
		mw.Log(loggerClient),
		mw.Metrics(d.Metrics),
		middleware.Timeout(requestTimeout(cfg)),
		mw.CORS(cfg.AllowedOrigins...),
		mw.Locale(),
	)

	routes.RegisterAll(r, d)
	return r
}

func New(cfg *config.Config, loggerClient logger.Logger, d deps.Deps) *Server {
	timeout := requestTimeout(cfg)
	s := &http.Server{
		Addr:              cfg.ListenPort,
		Handler:           NewRouter(cfg, loggerClient, d),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Must outlive the per-request timeout or slow enrichments get cut.
		WriteTimeout:   timeout + 10*time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	return &Server{http: s, logger: loggerClient}
}

func requestTimeout(cfg *config.Config) time.Duration {
	if cfg.RequestTimeout <= 0 {
		return 90 * time.Second
	}
	return cfg.RequestTimeout
}

// Start blocks until the server fails or Stop is called. A graceful
// shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening",
		logger.String("addr", s.http.Addr),
		logger.Duration("write_timeout", s.http.WriteTimeout))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop waits for in-flight requests until ctx ends.
func (s *Server) Stop(ctx context.Context) error {
	start := time.Now()
	s.logger.Info("HTTP server shutting down...")
	if err := s.http.Shutdown(ctx); err != nil {
		return err
	}
	s.logger.Info("HTTP server stopped", logger.Duration("elapsed", time.Since(start)))
	return nil
}
