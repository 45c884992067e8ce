// Package cli реализует команды клиента fitsync.
package cli

import (
	"context"

	"github.com/iudanet/fitsync/internal/client/data"
	"github.com/iudanet/fitsync/internal/client/iocli"
	clientsync "github.com/iudanet/fitsync/internal/client/sync"
	"github.com/iudanet/fitsync/internal/health"
	"github.com/iudanet/fitsync/internal/models"
)

//go:generate moq -out syncer_mock.go . Syncer

// Syncer запускает проходы синхронизации и сообщает их состояние
type Syncer interface {
	RunOnce(ctx context.Context) (*clientsync.PassResult, error)
	Status(ctx context.Context) clientsync.Status
}

// PendingReader читает изменения, еще не подтвержденные сервером
type PendingReader interface {
	Snapshot(ctx context.Context, seq uint64) ([]models.MutationLogEntry, error)
}

type Cli struct {
	io      iocli.IO
	data    data.Service
	sync    Syncer
	pending PendingReader
	remote  health.Checker // nil если проверка связи не нужна
}

func New(io iocli.IO, dataService data.Service, syncer Syncer, pending PendingReader, remote health.Checker) *Cli {
	return &Cli{
		io:      io,
		data:    dataService,
		sync:    syncer,
		pending: pending,
		remote:  remote,
	}
}
