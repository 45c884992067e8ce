// Package oplog реализует журнал локальных изменений, ожидающих отправки
// в удаленное хранилище. Журнал только дописывается; записи удаляются
// после подтверждения приема сервером.
package oplog

import (
	"context"
	"fmt"
	"iter"
	"sort"

	"github.com/iudanet/fitsync/internal/client/storage"
	"github.com/iudanet/fitsync/internal/crdt"
	"github.com/iudanet/fitsync/internal/models"
)

// pageSize количество записей, читаемых за одну транзакцию
const pageSize = 256

// Log журнал изменений одного устройства
type Log struct {
	store storage.LogStore
	clock *crdt.HybridClock
}

// New создает журнал поверх хранилища.
// clock задает идентификатор устройства и метки для удалений.
func New(store storage.LogStore, clock *crdt.HybridClock) *Log {
	return &Log{store: store, clock: clock}
}

// NewEntry строит запись журнала для локального изменения.
// Метка берется из UpdatedAt снимка; без снимка выдается новая.
// Для delete снимок в запись не попадает.
func (l *Log) NewEntry(t models.EntityType, id string, op models.Operation, payload models.Entity) models.MutationLogEntry {
	entry := models.MutationLogEntry{
		EntityType: t,
		EntityID:   id,
		Operation:  op,
		DeviceID:   l.clock.NodeID(),
	}
	if payload == nil {
		entry.RecordedAt = l.clock.Now()
		return entry
	}
	entry.RecordedAt = payload.Sync().UpdatedAt
	if op != models.OpDelete {
		entry.Payload = models.Clone(payload)
	}
	return entry
}

// Append дописывает изменение в журнал и возвращает его номер.
// Запись сохранена на диск к моменту возврата. Безопасно вызывать во время прохода синхронизации.
func (l *Log) Append(ctx context.Context, t models.EntityType, id string, op models.Operation, payload models.Entity) (uint64, error) {
	if !t.Valid() {
		return 0, fmt.Errorf("%w: %q", models.ErrUnknownEntityType, string(t))
	}
	if op != models.OpDelete && payload == nil {
		return 0, fmt.Errorf("operation %s requires a payload", op)
	}

	seq, err := l.store.AppendLog(ctx, l.NewEntry(t, id, op, payload))
	if err != nil {
		return 0, fmt.Errorf("failed to append %s %s: %w", op, t, err)
	}
	return seq, nil
}

// EntriesSince возвращает записи с номером больше seq в порядке номеров.
// Последовательность ленивая и конечная; каждый обход читает журнал заново
// и ничего из него не удаляет. Ошибка чтения передается последним элементом.
func (l *Log) EntriesSince(ctx context.Context, seq uint64) iter.Seq2[models.MutationLogEntry, error] {
	return func(yield func(models.MutationLogEntry, error) bool) {
		after := seq
		for {
			page := make([]models.MutationLogEntry, 0, pageSize)
			err := l.store.ReadLogSince(ctx, after, func(e models.MutationLogEntry) bool {
				page = append(page, e)
				return len(page) < pageSize
			})
			if err != nil {
				yield(models.MutationLogEntry{}, fmt.Errorf("failed to read mutation log: %w", err))
				return
			}

			// yield вызывается вне транзакции чтения
			for _, e := range page {
				if !yield(e, nil) {
					return
				}
			}

			if len(page) < pageSize {
				return
			}
			after = page[len(page)-1].Seq
		}
	}
}

// Snapshot собирает все записи после seq.
func (l *Log) Snapshot(ctx context.Context, seq uint64) ([]models.MutationLogEntry, error) {
	var entries []models.MutationLogEntry
	for e, err := range l.EntriesSince(ctx, seq) {
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Acknowledge удаляет подтвержденные записи с номером не больше upTo.
// Номера из retain (отклоненные и пропущенные записи) остаются в журнале.
func (l *Log) Acknowledge(ctx context.Context, upTo uint64, retain ...uint64) error {
	keep := make(map[uint64]struct{}, len(retain))
	for _, seq := range retain {
		keep[seq] = struct{}{}
	}
	if err := l.store.CompactLog(ctx, upTo, keep); err != nil {
		return fmt.Errorf("failed to acknowledge up to %d: %w", upTo, err)
	}
	return nil
}

// Stats возвращает последний выданный номер, самый старый хранимый номер и число записей.
func (l *Log) Stats(ctx context.Context) (storage.LogStats, error) {
	return l.store.LogStats(ctx)
}

// Head возвращает последний выданный номер.
func (l *Log) Head(ctx context.Context) (uint64, error) {
	stats, err := l.store.LogStats(ctx)
	return stats.Head, err
}

// Len возвращает количество неотправленных записей.
func (l *Log) Len(ctx context.Context) (int, error) {
	stats, err := l.store.LogStats(ctx)
	return stats.Len, err
}

// ContiguousAck возвращает наибольший номер N, для которого все записи <= N подтверждены:
// номер перед самой старой оставшейся записью, либо head для пустого журнала.
func ContiguousAck(stats storage.LogStats) uint64 {
	if stats.Len == 0 || stats.Oldest == 0 {
		return stats.Head
	}
	return stats.Oldest - 1
}

// Outbound изменение одной записи, готовое к отправке.
// Покрывает одну или несколько записей журнала подряд.
type Outbound struct {
	Payload    models.Entity // nil для delete
	EntityType models.EntityType
	EntityID   string
	Operation  models.Operation
	DeviceID   string
	Seqs       []uint64
	RecordedAt int64
}

// MaxSeq возвращает наибольший номер, покрытый изменением.
func (o Outbound) MaxSeq() uint64 {
	var maxSeq uint64
	for _, s := range o.Seqs {
		maxSeq = max(maxSeq, s)
	}
	return maxSeq
}

// Coalesce схлопывает записи журнала по записи (тип, id).
// Подряд идущие create/update дают одно изменение с последним снимком; create остается create.
// Delete поглощает предшествующие правки и всегда отправляется как delete.
// Записи после delete начинают новую серию. Результат упорядочен по первому номеру серии.
func Coalesce(entries []models.MutationLogEntry) []Outbound {
	sorted := make([]models.MutationLogEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Seq < sorted[j].Seq })

	type key struct {
		t  models.EntityType
		id string
	}

	out := make([]Outbound, 0, len(sorted))
	open := make(map[key]int)

	for _, e := range sorted {
		k := key{t: e.EntityType, id: e.EntityID}
		idx, ok := open[k]
		if !ok {
			out = append(out, Outbound{
				Payload:    e.Payload,
				EntityType: e.EntityType,
				EntityID:   e.EntityID,
				Operation:  e.Operation,
				DeviceID:   e.DeviceID,
				Seqs:       []uint64{e.Seq},
				RecordedAt: e.RecordedAt,
			})
			if e.Operation != models.OpDelete {
				open[k] = len(out) - 1
			}
			continue
		}

		run := &out[idx]
		run.Seqs = append(run.Seqs, e.Seq)
		run.RecordedAt = e.RecordedAt
		run.DeviceID = e.DeviceID

		if e.Operation == models.OpDelete {
			run.Operation = models.OpDelete
			run.Payload = nil
			delete(open, k)
			continue
		}

		run.Payload = e.Payload
	}

	return out
}
