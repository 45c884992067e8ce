package cli

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	clientsync "github.com/iudanet/fitsync/internal/client/sync"
	"github.com/iudanet/fitsync/internal/health"
)

const shutdownTimeout = 5 * time.Second

// daemonScheduler планировщик, которым управляет фоновый режим
type daemonScheduler interface {
	Start(ctx context.Context) error
	Trigger(reason string)
	Status(ctx context.Context) clientsync.Status
}

// daemon фоновый режим: планировщик синхронизации и локальный HTTP endpoint
type daemon struct {
	scheduler daemonScheduler
	checker   health.Checker
	prober    clientsync.Prober
	logger    *slog.Logger
	addr      string
	probeEach time.Duration
}

// handler возвращает маршруты локального endpoint:
// GET /api/v1/health, GET /api/v1/status, POST /api/v1/sync
func (d *daemon) handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /api/v1/health", health.NewHandler(d.checker, d.logger))
	mux.HandleFunc("GET /api/v1/status", func(w http.ResponseWriter, r *http.Request) {
		d.writeJSON(w, http.StatusOK, d.scheduler.Status(r.Context()))
	})
	mux.HandleFunc("POST /api/v1/sync", func(w http.ResponseWriter, r *http.Request) {
		d.scheduler.Trigger(clientsync.ReasonExplicit)
		d.writeJSON(w, http.StatusAccepted, map[string]string{"status": "scheduled"})
	})
	return mux
}

func (d *daemon) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		d.logger.Error("failed to encode response", slog.Any("error", err))
	}
}

// run работает до отмены ctx
func (d *daemon) run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              d.addr,
		Handler:           d.handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := d.scheduler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		d.watchConnectivity(ctx)
		return nil
	})

	g.Go(func() error {
		d.logger.Info("Daemon endpoint listening", "addr", d.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// watchConnectivity запускает проход, когда сервер снова становится доступен
func (d *daemon) watchConnectivity(ctx context.Context) {
	if d.prober == nil || !d.prober.IsSyncConfigured() || d.probeEach <= 0 {
		return
	}

	ticker := time.NewTicker(d.probeEach)
	defer ticker.Stop()

	online := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		connected := d.prober.Probe(ctx).Connected
		if connected && !online {
			d.logger.Info("Server reachable again")
			d.scheduler.Trigger(clientsync.ReasonReconnect)
		}
		online = connected
	}
}
