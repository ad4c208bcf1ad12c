// Package server wires the sync service into an HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iudanet/deltasync/internal/server/config"
	"github.com/iudanet/deltasync/internal/server/handlers"
	"github.com/iudanet/deltasync/internal/server/middleware"
	serversync "github.com/iudanet/deltasync/internal/server/sync"
)

// Пути HTTP API
const (
	PathHealth    = "/api/v1/health"
	PathSync      = "/api/v1/sync"
	PathBootstrap = "/api/v1/sync/bootstrap"
	PathImport    = "/api/v1/admin/import"
)

// Service операции, которые обслуживает роутер
type Service interface {
	handlers.SyncService
	handlers.AdminService
}

// Server HTTP сервер синхронизации
type Server struct {
	httpServer *http.Server
	limiter    *middleware.RateLimiter
	logger     *slog.Logger
	cfg        config.HTTPConfig
}

// New собирает роутер и HTTP сервер
func New(cfg *config.Config, logger *slog.Logger, svc *serversync.Service, version string) *Server {
	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Requests > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}

	jwtConfig := handlers.JWTConfig{
		Secret:   []byte(cfg.Auth.Secret),
		TokenTTL: cfg.Auth.TokenTTL,
	}

	router := NewRouter(logger, svc, svc, jwtConfig, limiter, version)

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           router,
			ReadTimeout:       cfg.HTTP.ReadTimeout,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      cfg.HTTP.WriteTimeout,
		},
		limiter: limiter,
		logger:  logger,
		cfg:     cfg.HTTP,
	}
}

// NewRouter создает chi роутер со всеми маршрутами.
// limiter == nil отключает rate limiting, пустой секрет отключает аутентификацию
// (и проверку admin токена для административных маршрутов).
func NewRouter(
	logger *slog.Logger,
	svc Service,
	pinger handlers.Pinger,
	jwtConfig handlers.JWTConfig,
	limiter *middleware.RateLimiter,
	version string,
) chi.Router {
	healthHandler := handlers.NewHealthHandler(logger, pinger, version)
	syncHandler := handlers.NewSyncHandler(logger, svc)
	adminHandler := handlers.NewAdminHandler(logger, svc)

	r := chi.NewRouter()
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.LoggingMiddleware(logger, PathHealth))
	r.Use(middleware.RecoveryMiddleware(logger))

	r.Get(PathHealth, healthHandler.Health)

	r.Group(func(r chi.Router) {
		if jwtConfig.Enabled() {
			r.Use(middleware.AuthMiddleware(logger, jwtConfig))
		} else {
			logger.Warn("Authentication disabled: auth.secret is empty")
		}
		if limiter != nil {
			r.Use(middleware.RateLimitMiddleware(limiter, logger))
		}

		r.Get(PathSync, syncHandler.Pull)
		r.Post(PathSync, syncHandler.Push)
		r.Get(PathBootstrap, syncHandler.Bootstrap)

		r.Group(func(r chi.Router) {
			if jwtConfig.Enabled() {
				r.Use(middleware.RequireAdminMiddleware(logger))
			}
			r.Post(PathImport, adminHandler.Import)
		})
	})

	return r
}

// Handler возвращает HTTP handler сервера
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run слушает адрес до отмены ctx, затем корректно останавливает сервер
func (s *Server) Run(ctx context.Context) error {
	defer func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to serve http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server", "timeout", s.cfg.ShutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown http server: %w", err)
	}

	s.logger.Info("HTTP server stopped")
	return nil
}
