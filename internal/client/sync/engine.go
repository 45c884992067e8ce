// Package sync выполняет синхронизацию локального хранилища устройства
// с удаленным хранилищем: отправку журнала изменений, получение чужих изменений
// и разрешение конфликтов.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	gosync "sync"

	"golang.org/x/sync/errgroup"

	"github.com/iudanet/fitsync/internal/client/connectivity"
	"github.com/iudanet/fitsync/internal/client/oplog"
	"github.com/iudanet/fitsync/internal/client/storage"
	"github.com/iudanet/fitsync/internal/crdt"
	"github.com/iudanet/fitsync/internal/models"
	"github.com/iudanet/fitsync/internal/schema"
	"github.com/iudanet/fitsync/internal/timex"
	"github.com/iudanet/fitsync/pkg/api"
)

//go:generate moq -out remotestore_mock.go . RemoteStore

// RemoteStore граница удаленного хранилища
type RemoteStore interface {
	// ReadSince возвращает записи владельца с server_seq > watermark
	// и голову последовательности сервера, прочитанную до записей
	ReadSince(ctx context.Context, ownerID string, t models.EntityType, watermark int64) (*api.ReadResponse, error)

	// WriteBatch записывает пакет записей одного типа
	WriteBatch(ctx context.Context, t models.EntityType, records []api.Record) (*api.WriteResult, error)

	// Ping проверяет доступность хранилища
	Ping(ctx context.Context) error
}

//go:generate moq -out prober_mock.go . Prober

// Prober сообщает, настроена ли синхронизация и доступно ли хранилище
type Prober interface {
	IsSyncConfigured() bool
	Probe(ctx context.Context) connectivity.ProbeResult
}

// Engine выполняет один проход синхронизации за вызов Run.
// Одновременные вызовы Run не допускаются; это гарантирует Scheduler.
type Engine struct {
	remote RemoteStore
	store  storage.LocalStore
	log    *oplog.Log
	clock  *crdt.HybridClock
	prober Prober
	logger *slog.Logger

	mu    gosync.RWMutex
	state State
}

// NewEngine создает движок синхронизации
func NewEngine(remote RemoteStore, store storage.LocalStore, log *oplog.Log, clock *crdt.HybridClock, prober Prober, logger *slog.Logger) *Engine {
	return &Engine{
		remote: remote,
		store:  store,
		log:    log,
		clock:  clock,
		prober: prober,
		logger: logger,
		state:  StateIdle,
	}
}

// State возвращает текущее состояние движка
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// pass состояние одного прохода
type pass struct {
	result   *PassResult
	ownerID  string
	cursor   models.SyncCursor
	pushErr  error
	merged   map[entityKey]models.Entity
	order    []entityKey
	repush   []models.MutationLogEntry
	skipMark int64 // наименьший server_seq пропущенной входящей записи
}

type entityKey struct {
	t  models.EntityType
	id string
}

func (e *Engine) transition(p *pass, s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()

	p.result.Trace = append(p.result.Trace, s)
	e.logger.Debug("Sync state", "state", s, "owner_id", p.ownerID)
}

// Run выполняет проход синхронизации для владельца ownerID.
//
// Если синхронизация не настроена или хранилище недоступно, проход завершается
// в Idle без ошибки и без изменения курсора. Отмена ctx учитывается только
// на границах обращений к удаленному хранилищу; фиксация результата не прерывается.
func (e *Engine) Run(ctx context.Context, ownerID string) (*PassResult, error) {
	p := &pass{
		result:  &PassResult{},
		ownerID: ownerID,
		merged:  make(map[entityKey]models.Entity),
	}

	e.transition(p, StateProbing)

	if !e.prober.IsSyncConfigured() {
		p.result.NotConfigured = true
		e.transition(p, StateIdle)
		return p.result, nil
	}

	probe := e.prober.Probe(ctx)
	if !probe.Connected {
		p.result.Disconnected = true
		p.result.ProbeError = probe.Error
		e.logger.Info("Remote store unreachable, skipping sync", "error", probe.Error)
		e.transition(p, StateIdle)
		return p.result, nil
	}
	if ctx.Err() != nil {
		return e.cancel(p, ctx.Err())
	}

	cursor, err := e.store.GetCursor(ctx)
	if err != nil {
		return e.fail(p, fmt.Errorf("failed to read sync cursor: %w", err))
	}
	p.cursor = cursor

	if err := e.checkCursor(ctx, p); err != nil {
		return e.fail(p, err)
	}

	e.logger.Info("Starting synchronization",
		"owner_id", ownerID,
		"last_pushed_seq", cursor.LastPushedSeq,
		"last_pulled_at", cursor.LastPulledAt)

	e.transition(p, StatePushing)
	if err := e.push(ctx, p); err != nil {
		if ctx.Err() != nil {
			return e.cancel(p, err)
		}
		return e.fail(p, err)
	}

	e.transition(p, StatePulling)
	pulled, err := e.pull(ctx, p)
	if err != nil {
		if ctx.Err() != nil {
			return e.cancel(p, err)
		}
		return e.fail(p, err)
	}
	if ctx.Err() != nil {
		return e.cancel(p, ctx.Err())
	}

	e.transition(p, StateReconciling)
	watermark, err := e.reconcile(ctx, p, pulled)
	if err != nil {
		return e.fail(p, err)
	}

	e.transition(p, StateCommitting)
	if err := e.commit(context.WithoutCancel(ctx), p, watermark); err != nil {
		return e.fail(p, err)
	}

	e.transition(p, StateIdle)

	e.logger.Info("Synchronization completed",
		"pushed", p.result.Pushed,
		"acknowledged", p.result.Acknowledged,
		"rejected", len(p.result.Rejected),
		"skipped", len(p.result.Skipped),
		"pulled", p.result.Pulled,
		"applied", p.result.Applied,
		"flagged", p.result.Flagged,
		"orphaned", p.result.Orphaned,
		"repushed", p.result.Repushed)

	return p.result, nil
}

func (e *Engine) fail(p *pass, err error) (*PassResult, error) {
	e.logger.Error("Synchronization failed", "error", err)
	e.transition(p, StateErrored)
	e.transition(p, StateIdle)
	return p.result, err
}

func (e *Engine) cancel(p *pass, err error) (*PassResult, error) {
	e.logger.Info("Synchronization cancelled", "error", err)
	e.transition(p, StateCancelled)
	e.transition(p, StateIdle)
	return p.result, err
}

// checkCursor обнаруживает курсор, указывающий за конец журнала,
// и сбрасывает его на самую старую хранимую запись с полным повторным чтением.
func (e *Engine) checkCursor(ctx context.Context, p *pass) error {
	stats, err := e.log.Stats(ctx)
	if err != nil {
		return err
	}
	if p.cursor.LastPushedSeq <= stats.Head {
		return nil
	}

	resetTo := oplog.ContiguousAck(stats)
	inconsistency := &CursorInconsistencyError{
		LastPushedSeq: p.cursor.LastPushedSeq,
		Head:          stats.Head,
		ResetTo:       resetTo,
	}

	reset := p.cursor
	reset.LastPushedSeq = resetTo
	reset.LastPulledAt = 0
	if err := e.store.SetCursor(ctx, reset); err != nil {
		return errors.Join(inconsistency, fmt.Errorf("failed to reset sync cursor: %w", err))
	}

	return inconsistency
}

// push отправляет журнал по типам в порядке зависимостей и подтверждает принятое.
// Подтверждение выполняется даже при ошибке или отмене, чтобы не отправлять принятое повторно.
func (e *Engine) push(ctx context.Context, p *pass) error {
	entries, err := e.log.Snapshot(ctx, p.cursor.LastPushedSeq)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	outbound := oplog.Coalesce(entries)
	byType := make(map[models.EntityType][]oplog.Outbound)
	for _, o := range outbound {
		byType[o.EntityType] = append(byType[o.EntityType], o)
	}

	acked := make(map[uint64]struct{})
	var pushErr error

	for _, t := range models.EntityTypes {
		group := byType[t]
		if len(group) == 0 {
			continue
		}

		records := make([]api.Record, 0, len(group))
		seqsByID := make(map[string][]uint64, len(group))

		for _, o := range group {
			rec, err := e.outboundRecord(ctx, p.ownerID, o)
			if err != nil {
				var mismatch *schema.SchemaMismatchError
				if errors.As(err, &mismatch) {
					e.logger.Warn("Skipping record with schema mismatch",
						"entity_type", t, "entity_id", o.EntityID, "error", err)
					p.result.Skipped = append(p.result.Skipped, err)
					continue
				}
				pushErr = err
				break
			}
			records = append(records, rec)
			seqsByID[o.EntityID] = append(seqsByID[o.EntityID], o.Seqs...)
		}
		if pushErr != nil {
			break
		}
		if len(records) == 0 {
			continue
		}

		if err := ctx.Err(); err != nil {
			pushErr = err
			break
		}

		res, err := e.remote.WriteBatch(ctx, t, records)
		if err != nil {
			pushErr = fmt.Errorf("push %s: %w", t, err)
			break
		}
		p.result.Pushed += len(records)

		for _, id := range res.Accepted {
			for _, seq := range seqsByID[id] {
				acked[seq] = struct{}{}
			}
		}
		for _, rej := range res.Rejected {
			r := ConstraintRejection{
				EntityType: t,
				EntityID:   rej.ID,
				Reason:     rej.Reason,
				Detail:     rej.Detail,
				Seqs:       seqsByID[rej.ID],
			}
			e.logger.Warn("Record rejected by remote store",
				"entity_type", t, "entity_id", rej.ID, "reason", rej.Reason, "detail", rej.Detail)
			p.result.Rejected = append(p.result.Rejected, r)
		}
	}

	if err := e.acknowledge(context.WithoutCancel(ctx), p, entries, acked); err != nil {
		return errors.Join(pushErr, err)
	}

	return pushErr
}

// acknowledge удаляет подтвержденные записи журнала, сохраняя неподтвержденные
// с меньшими номерами, и продвигает LastPushedSeq до непрерывно подтвержденного номера.
func (e *Engine) acknowledge(ctx context.Context, p *pass, entries []models.MutationLogEntry, acked map[uint64]struct{}) error {
	if len(acked) == 0 {
		return nil
	}

	var upTo uint64
	for seq := range acked {
		upTo = max(upTo, seq)
	}

	var retain []uint64
	for _, entry := range entries {
		if entry.Seq > upTo {
			break
		}
		if _, ok := acked[entry.Seq]; !ok {
			retain = append(retain, entry.Seq)
		}
	}

	if err := e.log.Acknowledge(ctx, upTo, retain...); err != nil {
		return err
	}
	p.result.Acknowledged += len(acked)

	stats, err := e.log.Stats(ctx)
	if err != nil {
		return err
	}
	p.cursor.LastPushedSeq = oplog.ContiguousAck(stats)

	if err := e.store.SetCursor(ctx, p.cursor); err != nil {
		return fmt.Errorf("failed to save push progress: %w", err)
	}
	return nil
}

// outboundRecord строит удаленную запись для изменения из журнала.
// Для delete отправляется локальная удаленная запись, а если ее нет, минимальный tombstone.
func (e *Engine) outboundRecord(ctx context.Context, ownerID string, o oplog.Outbound) (api.Record, error) {
	entity := o.Payload

	if o.Operation == models.OpDelete {
		local, err := e.store.Get(ctx, o.EntityType, o.EntityID)
		switch {
		case err == nil && local.Sync().IsDeleted():
			entity = local
		case err == nil || errors.Is(err, storage.ErrEntityNotFound):
			owner := ownerID
			if local != nil && local.Sync().OwnerID != "" {
				owner = local.Sync().OwnerID
			}
			tomb, terr := models.Tombstone(o.EntityType, o.EntityID, owner, o.DeviceID,
				o.RecordedAt, timex.Format(crdt.WallTime(o.RecordedAt)))
			if terr != nil {
				return api.Record{}, terr
			}
			entity = tomb
		default:
			return api.Record{}, fmt.Errorf("failed to load %s %q: %w", o.EntityType, o.EntityID, err)
		}
	}

	if entity == nil {
		return api.Record{}, fmt.Errorf("log entry for %s %q has no payload", o.EntityType, o.EntityID)
	}

	return schema.ToRemote(entity)
}

// pull читает изменения всех типов параллельно
func (e *Engine) pull(ctx context.Context, p *pass) ([]*api.ReadResponse, error) {
	pulled := make([]*api.ReadResponse, len(models.EntityTypes))

	g, gctx := errgroup.WithContext(ctx)
	for i, t := range models.EntityTypes {
		g.Go(func() error {
			resp, err := e.remote.ReadSince(gctx, p.ownerID, t, p.cursor.LastPulledAt)
			if err != nil {
				return fmt.Errorf("pull %s: %w", t, err)
			}
			pulled[i] = resp
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, resp := range pulled {
		if resp != nil {
			p.result.Pulled += len(resp.Records)
		}
	}
	return pulled, nil
}

// pulledWatermark возвращает наименьшую голову среди ответов.
// Типы читаются в разные моменты, поэтому полным является только
// префикс последовательности до самой ранней головы.
func pulledWatermark(cursor int64, pulled []*api.ReadResponse) int64 {
	watermark := int64(-1)
	for _, resp := range pulled {
		head := cursor
		if resp != nil {
			head = resp.Watermark
		}
		if watermark < 0 || head < watermark {
			watermark = head
		}
	}
	return max(watermark, cursor)
}

// reconcile сравнивает полученные записи с локальными и собирает пакет для фиксации.
// Возвращает новый водяной знак: server_seq, до которого включительно
// все изменения учтены.
func (e *Engine) reconcile(ctx context.Context, p *pass, pulled []*api.ReadResponse) (int64, error) {
	watermark := pulledWatermark(p.cursor.LastPulledAt, pulled)

	for _, resp := range pulled {
		if resp == nil {
			continue
		}
		for _, rec := range resp.Records {
			e.clock.Observe(rec.UpdatedAt)

			remote, err := schema.ToLocal(rec)
			if err != nil {
				e.logger.Warn("Skipping remote record with schema mismatch",
					"entity_type", rec.EntityType, "entity_id", rec.ID, "error", err)
				p.result.Skipped = append(p.result.Skipped, err)
				if seq := max(rec.ServerSeq, 1); p.skipMark == 0 || seq < p.skipMark {
					p.skipMark = seq
				}
				continue
			}

			key := entityKey{t: remote.Kind(), id: remote.Sync().ID}
			local, err := e.lookup(ctx, p, key)
			if err != nil {
				return 0, err
			}

			d := crdt.Resolve(local, remote)
			if d.Flagged {
				p.result.Flagged++
				e.logger.Warn("Delete and edit collided, keeping data for review",
					"entity_type", key.t, "entity_id", key.id)
			}

			switch {
			case d.Winner == crdt.WinnerRemote:
				e.stage(p, key, d.Merged)
				p.result.Applied++
			case d.Flagged:
				e.stage(p, key, d.Merged)
			}

			if d.Winner == crdt.WinnerLocal && d.Repush {
				op := models.OpUpdate
				if d.Merged.Sync().IsDeleted() {
					op = models.OpDelete
				}
				p.repush = append(p.repush, e.log.NewEntry(key.t, key.id, op, d.Merged))
				p.result.Repushed++
			}
		}
	}

	if err := e.flagOrphans(ctx, p); err != nil {
		return 0, err
	}

	// Пропущенная запись будет прочитана повторно в следующем проходе
	if p.skipMark > 0 && p.skipMark-1 < watermark {
		watermark = max(p.cursor.LastPulledAt, p.skipMark-1)
	}

	return watermark, nil
}

// lookup ищет запись сначала среди уже принятых в этом проходе, затем в локальном хранилище
func (e *Engine) lookup(ctx context.Context, p *pass, key entityKey) (models.Entity, error) {
	if staged, ok := p.merged[key]; ok {
		return staged, nil
	}
	local, err := e.store.Get(ctx, key.t, key.id)
	if errors.Is(err, storage.ErrEntityNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load local %s %q: %w", key.t, key.id, err)
	}
	return local, nil
}

func (e *Engine) stage(p *pass, key entityKey, entity models.Entity) {
	if _, ok := p.merged[key]; !ok {
		p.order = append(p.order, key)
	}
	p.merged[key] = entity
}

// flagOrphans помечает журналы тренировок, чья программа или день удалены.
// Сами журналы не удаляются, чтобы не терять историю пользователя.
func (e *Engine) flagOrphans(ctx context.Context, p *pass) error {
	logs, err := e.store.ReadAll(ctx, models.EntityWorkoutLog)
	if err != nil {
		return err
	}

	candidates := make(map[string]*models.WorkoutLog, len(logs))
	for _, entity := range logs {
		candidates[entity.Sync().ID] = entity.(*models.WorkoutLog)
	}
	for key, entity := range p.merged {
		if key.t == models.EntityWorkoutLog {
			candidates[key.id] = entity.(*models.WorkoutLog)
		}
	}

	ids := make([]string, 0, len(candidates))
	for id := range candidates {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		w := candidates[id]
		if w.IsDeleted() || w.Orphaned {
			continue
		}

		orphaned, err := e.parentDeleted(ctx, p, models.EntityProgram, w.ProgramID)
		if err != nil {
			return err
		}
		if !orphaned {
			orphaned, err = e.parentDeleted(ctx, p, models.EntityTrainingDay, w.DayID)
			if err != nil {
				return err
			}
		}
		if !orphaned {
			continue
		}

		flagged := models.Clone(w).(*models.WorkoutLog)
		flagged.Orphaned = true
		e.stage(p, entityKey{t: models.EntityWorkoutLog, id: id}, flagged)
		p.result.Orphaned++
		e.logger.Info("Workout log orphaned by deleted parent", "workout_log_id", id)
	}

	return nil
}

func (e *Engine) parentDeleted(ctx context.Context, p *pass, t models.EntityType, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	if staged, ok := p.merged[entityKey{t: t, id: id}]; ok {
		return staged.Sync().IsDeleted(), nil
	}
	parent, err := e.store.Get(ctx, t, id)
	if errors.Is(err, storage.ErrEntityNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load %s %q: %w", t, id, err)
	}
	return parent.Sync().IsDeleted(), nil
}

// commit фиксирует принятые записи, записи для повторной отправки и курсор одной транзакцией
func (e *Engine) commit(ctx context.Context, p *pass, watermark int64) error {
	cursor := p.cursor
	cursor.LastPulledAt = max(cursor.LastPulledAt, watermark)
	cursor.LastSuccessAt = timex.Now()

	upserts := make([]models.Entity, 0, len(p.order))
	for _, key := range p.order {
		upserts = append(upserts, p.merged[key])
	}

	batch := &storage.CommitBatch{
		Upserts: upserts,
		Log:     p.repush,
		Cursor:  &cursor,
	}
	if err := e.store.Commit(ctx, batch); err != nil {
		return fmt.Errorf("failed to commit sync batch: %w", err)
	}

	p.cursor = cursor
	return nil
}
