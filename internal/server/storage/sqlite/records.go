package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/fitsync/internal/models"
	"github.com/iudanet/fitsync/internal/server/storage"
	"github.com/iudanet/fitsync/internal/timex"
	"github.com/iudanet/fitsync/pkg/api"
)

const recordColumns = `entity_type, id, owner_id, device_id, parent_id, unique_key,
	       data, created_at, deleted_at, updated_at, server_seq`

// ReadSince returns records of the owner with server_seq > since, tombstones included.
// The head is read first, so records applied later may also be returned.
func (s *Storage) ReadSince(ctx context.Context, ownerID string, t models.EntityType, since int64) (*api.ReadResponse, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %s", storage.ErrInvalidEntityType, t)
	}

	head, err := serverSeqHead(ctx, s.db)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT ` + recordColumns + `
		FROM records
		WHERE owner_id = ? AND entity_type = ? AND server_seq > ?
		ORDER BY server_seq ASC
	`

	rows, err := s.db.QueryContext(ctx, query, ownerID, string(t), since)
	if err != nil {
		return nil, fmt.Errorf("failed to query records since %d: %w", since, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	records := make([]api.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return &api.ReadResponse{Records: records, Watermark: head}, nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// serverSeqHead возвращает последний выданный номер server_seq
func serverSeqHead(ctx context.Context, q queryRower) (int64, error) {
	var head int64
	if err := q.QueryRowContext(ctx, `SELECT COALESCE(MAX(server_seq), 0) FROM records`).Scan(&head); err != nil {
		return 0, fmt.Errorf("failed to read server sequence: %w", err)
	}
	return head, nil
}

// WriteBatch applies records in one transaction.
// Newer records replace stored ones and get the next server_seq,
// older ones are accepted as stale. SQLite serializes writers,
// so sequence numbers become visible in order.
func (s *Storage) WriteBatch(ctx context.Context, ownerID string, t models.EntityType, records []api.Record) (*api.WriteResult, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %s", storage.ErrInvalidEntityType, t)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	seq, err := serverSeqHead(ctx, tx)
	if err != nil {
		return nil, err
	}

	res := &api.WriteResult{Accepted: []string{}}
	for _, rec := range records {
		if rej := storage.Validate(ownerID, t, rec); rej != nil {
			res.Rejected = append(res.Rejected, *rej)
			continue
		}
		rec.EntityType = string(t)

		existing, found, err := getRecord(ctx, tx, t, rec.ID)
		if err != nil {
			return nil, err
		}
		if found && existing.OwnerID != ownerID {
			res.Rejected = append(res.Rejected, api.Rejection{ID: rec.ID, Reason: api.ReasonForbidden, Detail: "record belongs to another owner"})
			continue
		}

		if storage.ClaimsUniqueKey(rec) {
			taken, err := uniqueKeyTaken(ctx, tx, rec)
			if err != nil {
				return nil, err
			}
			if taken {
				res.Rejected = append(res.Rejected, storage.UniqueConflict(rec))
				continue
			}
		}

		res.Accepted = append(res.Accepted, rec.ID)
		if found && !storage.Supersedes(rec, existing) {
			res.Stale = append(res.Stale, rec.ID)
			continue
		}

		seq++
		rec.ServerSeq = seq
		if err := upsertRecord(ctx, tx, rec); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return res, nil
}

func getRecord(ctx context.Context, tx *sql.Tx, t models.EntityType, id string) (api.Record, bool, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE entity_type = ? AND id = ?`

	rec, err := scanRecord(tx.QueryRowContext(ctx, query, string(t), id))
	if errors.Is(err, sql.ErrNoRows) {
		return api.Record{}, false, nil
	}
	if err != nil {
		return api.Record{}, false, err
	}
	return rec, true, nil
}

func uniqueKeyTaken(ctx context.Context, tx *sql.Tx, rec api.Record) (bool, error) {
	query := `
		SELECT COUNT(*) FROM records
		WHERE entity_type = ? AND unique_key = ? AND id != ? AND deleted_at IS NULL
	`

	var n int
	if err := tx.QueryRowContext(ctx, query, rec.EntityType, rec.UniqueKey, rec.ID).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check unique key: %w", err)
	}
	return n > 0, nil
}

func upsertRecord(ctx context.Context, tx *sql.Tx, rec api.Record) error {
	query := `
		INSERT INTO records (
			entity_type, id, owner_id, device_id, parent_id, unique_key,
			data, created_at, deleted_at, updated_at, server_seq
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (entity_type, id) DO UPDATE SET
			device_id = excluded.device_id,
			parent_id = excluded.parent_id,
			unique_key = excluded.unique_key,
			data = excluded.data,
			created_at = excluded.created_at,
			deleted_at = excluded.deleted_at,
			updated_at = excluded.updated_at,
			server_seq = excluded.server_seq
	`

	_, err := tx.ExecContext(ctx, query,
		rec.EntityType,
		rec.ID,
		rec.OwnerID,
		rec.DeviceID,
		rec.ParentID,
		rec.UniqueKey,
		string(rec.Data),
		timex.Format(rec.CreatedAt),
		optionalTime(rec.DeletedAt),
		rec.UpdatedAt,
		rec.ServerSeq,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert record %s: %w", rec.ID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (api.Record, error) {
	var (
		rec       api.Record
		data      string
		createdAt string
		deletedAt sql.NullString
	)

	err := row.Scan(
		&rec.EntityType,
		&rec.ID,
		&rec.OwnerID,
		&rec.DeviceID,
		&rec.ParentID,
		&rec.UniqueKey,
		&data,
		&createdAt,
		&deletedAt,
		&rec.UpdatedAt,
		&rec.ServerSeq,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return api.Record{}, err
		}
		return api.Record{}, fmt.Errorf("failed to scan record: %w", err)
	}

	rec.Data = []byte(data)
	rec.CreatedAt = timex.ToRequiredTime(createdAt)
	if deletedAt.Valid {
		rec.DeletedAt = timex.ToOptionalTime(deletedAt.String)
	}

	return rec, nil
}

// optionalTime переводит время в значение колонки (NULL для nil)
func optionalTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return timex.Format(*t)
}
