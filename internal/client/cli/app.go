package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	clientapi "github.com/iudanet/fitsync/internal/client/api"
	"github.com/iudanet/fitsync/internal/client/config"
	"github.com/iudanet/fitsync/internal/client/connectivity"
	"github.com/iudanet/fitsync/internal/client/data"
	"github.com/iudanet/fitsync/internal/client/iocli"
	"github.com/iudanet/fitsync/internal/client/oplog"
	"github.com/iudanet/fitsync/internal/client/storage/boltdb"
	clientsync "github.com/iudanet/fitsync/internal/client/sync"
	"github.com/iudanet/fitsync/internal/crdt"
)

// app зависимости клиента, собранные из конфигурации
type app struct {
	cfg       *config.Config
	store     *boltdb.Storage
	log       *oplog.Log
	monitor   *connectivity.Monitor
	scheduler *clientsync.Scheduler
	data      data.Service
	logger    *slog.Logger
	ownerID   string
	deviceID  string
}

// openApp открывает локальное хранилище и собирает движок синхронизации
func openApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	ownerID, err := cfg.Owner()
	if err != nil {
		return nil, fmt.Errorf("%w. Set owner_id in the config or run 'fitsync login'", err)
	}

	store, err := boltdb.New(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	a, err := assemble(ctx, cfg, store, ownerID, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return a, nil
}

func assemble(ctx context.Context, cfg *config.Config, store *boltdb.Storage, ownerID string, logger *slog.Logger) (*app, error) {
	deviceID, err := ensureDeviceID(ctx, store)
	if err != nil {
		return nil, err
	}

	clock := crdt.NewHybridClock(deviceID)
	last, err := store.MaxUpdatedAt(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to restore clock: %w", err)
	}
	clock.Restore(last)

	log := oplog.New(store, clock)
	remote := clientapi.NewClient(cfg.Server, cfg.Token)
	monitor := connectivity.NewMonitor(remote, cfg.Server, cfg.Token, cfg.Sync.ProbeTimeout.Duration, logger)
	engine := clientsync.NewEngine(remote, store, log, clock, monitor, logger)
	scheduler := clientsync.NewScheduler(engine, log, store, ownerID, clientsync.SchedulerOptions{
		Interval:    cfg.Sync.Interval.Duration,
		BackoffBase: cfg.Sync.BackoffBase.Duration,
		BackoffMax:  cfg.Sync.BackoffMax.Duration,
	}, logger)

	return &app{
		cfg:       cfg,
		store:     store,
		log:       log,
		monitor:   monitor,
		scheduler: scheduler,
		data:      data.NewService(store, log, clock, ownerID),
		logger:    logger,
		ownerID:   ownerID,
		deviceID:  deviceID,
	}, nil
}

// ensureDeviceID возвращает идентификатор устройства, создавая его при первом запуске
func ensureDeviceID(ctx context.Context, store *boltdb.Storage) (string, error) {
	deviceID, err := store.GetDeviceID(ctx)
	if err != nil {
		return "", err
	}
	if deviceID != "" {
		return deviceID, nil
	}

	deviceID = uuid.New().String()
	if err := store.SaveDeviceID(ctx, deviceID); err != nil {
		return "", err
	}
	return deviceID, nil
}

func (a *app) cli(io iocli.IO) *Cli {
	return New(io, a.data, a.scheduler, a.log, a.monitor)
}

func (a *app) Close() error {
	return a.store.Close()
}
