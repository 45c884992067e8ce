// Package server собирает HTTP API удаленного хранилища записей.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/fitsync/internal/health"
	"github.com/iudanet/fitsync/internal/server/config"
	"github.com/iudanet/fitsync/internal/server/handlers"
	"github.com/iudanet/fitsync/internal/server/middleware"
	"github.com/iudanet/fitsync/internal/server/storage"
	"github.com/iudanet/fitsync/internal/server/storage/postgres"
	"github.com/iudanet/fitsync/internal/server/storage/sqlite"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
	healthPath        = "/api/v1/health"
)

// Store хранилище записей, которое нужно закрыть при остановке
type Store interface {
	storage.RecordStorage
	io.Closer
}

// RouterConfig зависимости HTTP API
type RouterConfig struct {
	Storage storage.RecordStorage
	Limiter *middleware.RateLimiter
	Logger  *slog.Logger
	JWT     handlers.JWTConfig
}

// NewRouter регистрирует маршруты API:
//
//	GET  /api/v1/health          состояние базы данных, без авторизации
//	GET  /api/v1/ping            проверка токена и базы данных
//	GET  /api/v1/records/{type}  записи с updated_at > since
//	POST /api/v1/records/{type}  запись пакета
func NewRouter(cfg RouterConfig) http.Handler {
	records := handlers.NewRecordsHandler(cfg.Logger, cfg.Storage)
	healthHandler := health.NewHandler(storageChecker(cfg.Storage), cfg.Logger)

	protected := func(h http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(cfg.Logger, cfg.JWT)(
			middleware.RateLimitMiddleware(cfg.Limiter, cfg.Logger)(h),
		)
	}

	mux := http.NewServeMux()
	mux.Handle("GET "+healthPath, healthHandler)
	mux.Handle("/api/v1/ping", protected(records.HandlePing))
	mux.Handle("/api/v1/records/{type}", protected(records.HandleRecords))

	var handler http.Handler = mux
	handler = middleware.LoggingMiddleware(cfg.Logger, healthPath)(handler)
	handler = middleware.RecoveryMiddleware(cfg.Logger)(handler)
	return handler
}

// storageChecker сообщает о доступности базы данных в формате health.Status
func storageChecker(store storage.RecordStorage) health.Checker {
	return health.CheckerFunc(func(ctx context.Context) health.Status {
		if err := store.Ping(ctx); err != nil {
			return health.Status{Configured: true, Error: err.Error()}
		}
		return health.Status{Configured: true, Connected: true}
	})
}

// OpenStorage открывает хранилище, выбранное в конфигурации
func OpenStorage(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		s, err := sqlite.New(ctx, cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverPostgres:
		s, err := postgres.New(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// Run обслуживает HTTP API до отмены ctx, затем корректно останавливает сервер
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	store, err := OpenStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close storage", "error", err)
		}
	}()

	limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
	defer limiter.Stop()

	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: NewRouter(RouterConfig{
			Storage: store,
			Limiter: limiter,
			Logger:  logger,
			JWT:     handlers.JWTConfig{Secret: []byte(cfg.JWTSecret), TokenTTL: cfg.TokenTTL},
		}),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return serve(ctx, srv, logger)
}

func serve(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
