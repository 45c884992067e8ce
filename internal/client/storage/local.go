package storage

import (
	"context"

	"github.com/iudanet/fitsync/internal/models"
)

// LocalStore defines the device-local store used by the sync engine.
// Records, the mutation log and the sync cursor live in one database,
// so a user write and its log entry, or a whole sync batch, commit atomically.
type LocalStore interface {
	EntityStore
	LogStore
	MetadataStore

	// Commit applies one reconciled batch in a single transaction:
	// upserts records, appends re-push log entries and stores the cursor.
	Commit(ctx context.Context, batch *CommitBatch) error
}

// EntityStore stores synchronized records keyed by type and id
type EntityStore interface {
	// ReadAll returns all records of a type, tombstones included
	ReadAll(ctx context.Context, t models.EntityType) ([]models.Entity, error)

	// Get returns a record by id
	// Returns ErrEntityNotFound if the record doesn't exist
	Get(ctx context.Context, t models.EntityType, id string) (models.Entity, error)

	// Upsert stores a record as-is
	Upsert(ctx context.Context, e models.Entity) error

	// WriteWithLog stores a record and appends its mutation log entry in one transaction.
	// Returns the assigned sequence number.
	WriteWithLog(ctx context.Context, e models.Entity, entry models.MutationLogEntry) (uint64, error)

	// MaxUpdatedAt returns the greatest UpdatedAt across all records.
	// Used to restore the hybrid clock on start.
	MaxUpdatedAt(ctx context.Context) (int64, error)
}

// LogStore stores the append-only mutation log
type LogStore interface {
	// AppendLog assigns the next sequence number to entry and persists it
	AppendLog(ctx context.Context, entry models.MutationLogEntry) (uint64, error)

	// ReadLogSince calls fn for every entry with Seq > after in sequence order
	// until fn returns false. Runs inside a single read transaction.
	ReadLogSince(ctx context.Context, after uint64, fn func(models.MutationLogEntry) bool) error

	// CompactLog removes entries with Seq <= upTo except the retained ones
	CompactLog(ctx context.Context, upTo uint64, retain map[uint64]struct{}) error

	// LogStats returns the highest assigned sequence number, the oldest retained
	// sequence number (0 when empty) and the number of retained entries
	LogStats(ctx context.Context) (LogStats, error)
}

// MetadataStore stores per-device sync state
type MetadataStore interface {
	// GetCursor returns the stored cursor or a zero cursor before the first pass
	GetCursor(ctx context.Context) (models.SyncCursor, error)

	// SetCursor stores the cursor
	SetCursor(ctx context.Context, cursor models.SyncCursor) error

	// GetDeviceID returns the device id, empty if not yet assigned
	GetDeviceID(ctx context.Context) (string, error)

	// SaveDeviceID stores the device id
	SaveDeviceID(ctx context.Context, deviceID string) error
}

// LogStats сводка по журналу изменений
type LogStats struct {
	Head   uint64 // последний выданный номер (не уменьшается после компакции)
	Oldest uint64 // самый старый хранимый номер, 0 если журнал пуст
	Len    int
}

// CommitBatch результат одного прохода синхронизации
type CommitBatch struct {
	Cursor  *models.SyncCursor
	Upserts []models.Entity
	Log     []models.MutationLogEntry
}
