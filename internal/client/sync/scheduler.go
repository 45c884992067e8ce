package sync

import (
	"context"
	"errors"
	"log/slog"
	gosync "sync"
	"sync/atomic"
	"time"

	"github.com/sethvargo/go-retry"

	clientapi "github.com/iudanet/fitsync/internal/client/api"
	"github.com/iudanet/fitsync/internal/models"
)

// Причины запуска прохода
const (
	ReasonInterval   = "interval"
	ReasonExplicit   = "explicit"
	ReasonReconnect  = "reconnect"
	ReasonForeground = "foreground"
	ReasonBackoff    = "backoff"
	ReasonRerun      = "rerun"
)

// Состояния планировщика, видимые пользователю
const (
	StatusIdle    = "idle"
	StatusSyncing = "syncing"
	StatusError   = "error"
)

// Значения по умолчанию
const (
	DefaultInterval    = 5 * time.Minute
	DefaultBackoffBase = 2 * time.Second
	DefaultBackoffMax  = 5 * time.Minute

	backoffJitterPercent = 20
)

// Status состояние синхронизации для пользовательского интерфейса
type Status struct {
	LastSuccessAt time.Time `json:"last_success_at"`
	State         string    `json:"state"`
	LastError     string    `json:"last_error,omitempty"`
	Pending       int       `json:"pending"`
	Offline       bool      `json:"offline"`
}

type passRunner interface {
	Run(ctx context.Context, ownerID string) (*PassResult, error)
}

type pendingCounter interface {
	Len(ctx context.Context) (int, error)
}

type cursorReader interface {
	GetCursor(ctx context.Context) (models.SyncCursor, error)
}

// SchedulerOptions параметры планировщика
type SchedulerOptions struct {
	Interval    time.Duration
	BackoffBase time.Duration
	BackoffMax  time.Duration
}

// Scheduler запускает проходы синхронизации по таймеру, по запросу и после ошибок с backoff.
// В каждый момент выполняется не больше одного прохода; запросы во время прохода
// схлопываются в один повторный запуск.
type Scheduler struct {
	engine  passRunner
	pending pendingCounter
	cursors cursorReader
	logger  *slog.Logger
	wake    chan string
	ownerID string
	opts    SchedulerOptions

	running atomic.Bool
	rerun   atomic.Bool

	mu      gosync.Mutex
	status  Status
	backoff retry.Backoff
	retryAt time.Duration // задержка до повторной попытки, 0 если не нужна
}

// NewScheduler создает планировщик для владельца ownerID
func NewScheduler(engine passRunner, pending pendingCounter, cursors cursorReader, ownerID string, opts SchedulerOptions, logger *slog.Logger) *Scheduler {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = DefaultBackoffBase
	}
	if opts.BackoffMax < opts.BackoffBase {
		opts.BackoffMax = max(DefaultBackoffMax, opts.BackoffBase)
	}

	s := &Scheduler{
		engine:  engine,
		pending: pending,
		cursors: cursors,
		logger:  logger,
		wake:    make(chan string, 1),
		ownerID: ownerID,
		opts:    opts,
		status:  Status{State: StatusIdle},
	}
	s.backoff = s.newBackoff()
	return s
}

func (s *Scheduler) newBackoff() retry.Backoff {
	b := retry.NewExponential(s.opts.BackoffBase)
	b = retry.WithJitterPercent(backoffJitterPercent, b)
	return retry.WithCappedDuration(s.opts.BackoffMax, b)
}

// Trigger просит выполнить проход. Несколько запросов подряд дают один проход.
func (s *Scheduler) Trigger(reason string) {
	if s.running.Load() {
		s.rerun.Store(true)
	}
	select {
	case s.wake <- reason:
	default:
	}
}

// Start обслуживает таймер, запросы и повторные попытки до отмены ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	var retryTimer *time.Timer
	var retryC <-chan time.Time
	defer func() {
		if retryTimer != nil {
			retryTimer.Stop()
		}
	}()

	s.logger.Info("Sync scheduler started", "owner_id", s.ownerID, "interval", s.opts.Interval)
	s.Trigger(ReasonExplicit)

	for {
		var reason string
		select {
		case <-ctx.Done():
			s.logger.Info("Sync scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			if retryC != nil {
				// ждем окончания backoff
				continue
			}
			reason = ReasonInterval
		case reason = <-s.wake:
		case <-retryC:
			retryC = nil
			reason = ReasonBackoff
		}

		s.logger.Debug("Sync pass requested", "reason", reason)
		if _, err := s.RunOnce(ctx); errors.Is(err, ErrPassInFlight) {
			continue
		}

		if delay := s.retryDelay(); delay > 0 {
			if retryTimer != nil {
				retryTimer.Stop()
			}
			retryTimer = time.NewTimer(delay)
			retryC = retryTimer.C
		} else if retryTimer != nil {
			retryTimer.Stop()
			retryC = nil
		}
	}
}

// RunOnce выполняет проход немедленно. Если проход уже идет, планирует повтор
// и возвращает ErrPassInFlight.
func (s *Scheduler) RunOnce(ctx context.Context) (*PassResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		s.rerun.Store(true)
		return nil, ErrPassInFlight
	}
	defer func() {
		s.running.Store(false)
		if s.rerun.Swap(false) {
			s.Trigger(ReasonRerun)
		}
	}()

	s.setState(StatusSyncing)

	res, err := s.engine.Run(ctx, s.ownerID)
	s.finish(ctx, res, err)

	return res, err
}

func (s *Scheduler) setState(state string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.State = state
}

// finish обновляет статус и решает, нужен ли backoff
func (s *Scheduler) finish(ctx context.Context, res *PassResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status.Offline = res != nil && res.Disconnected

	switch {
	case err == nil && res != nil && res.Disconnected:
		s.status.State = StatusIdle
		s.status.LastError = res.ProbeError
		s.scheduleRetry()
	case err == nil:
		s.status.State = StatusIdle
		s.status.LastError = ""
		s.backoff = s.newBackoff()
		s.retryAt = 0
	case ctx.Err() != nil:
		s.status.State = StatusIdle
	case isTransient(err):
		s.status.State = StatusError
		s.status.LastError = err.Error()
		s.scheduleRetry()
	default:
		s.status.State = StatusError
		s.status.LastError = err.Error()
		s.retryAt = 0
	}
}

func (s *Scheduler) scheduleRetry() {
	delay, stop := s.backoff.Next()
	if stop {
		delay = s.opts.BackoffMax
	}
	s.retryAt = delay
	s.logger.Info("Sync retry scheduled", "delay", delay)
}

func (s *Scheduler) retryDelay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.retryAt
}

// isTransient сообщает, стоит ли повторить проход с задержкой
func isTransient(err error) bool {
	var transport *clientapi.TransportError
	return errors.As(err, &transport)
}

// Status возвращает состояние синхронизации
func (s *Scheduler) Status(ctx context.Context) Status {
	s.mu.Lock()
	st := s.status
	s.mu.Unlock()

	if n, err := s.pending.Len(ctx); err == nil {
		st.Pending = n
	} else {
		s.logger.Warn("Failed to count pending changes", "error", err)
	}

	if cursor, err := s.cursors.GetCursor(ctx); err == nil {
		st.LastSuccessAt = cursor.LastSuccessAt
	} else {
		s.logger.Warn("Failed to read sync cursor", "error", err)
	}

	return st
}
