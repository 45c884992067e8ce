package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iudanet/fitsync/internal/models"
	"github.com/iudanet/fitsync/internal/server/storage"
	"github.com/iudanet/fitsync/pkg/api"
)

// uniqueViolation код ошибки PostgreSQL для нарушения уникальности
const uniqueViolation = "23505"

// writeLockKey ключ advisory lock, сериализующего пишущие транзакции.
// Номера server_seq выдаются и становятся видимыми в одном порядке.
const writeLockKey int64 = 0x66697473796e63

const recordColumns = `entity_type, id, owner_id, device_id, parent_id, unique_key,
	       data, created_at, deleted_at, updated_at, server_seq`

// ReadSince returns records of the owner with server_seq > since, tombstones included.
// The head is read first, so records committed later may also be returned.
func (s *Storage) ReadSince(ctx context.Context, ownerID string, t models.EntityType, since int64) (*api.ReadResponse, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %s", storage.ErrInvalidEntityType, t)
	}

	var head int64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(server_seq), 0) FROM records`).Scan(&head); err != nil {
		return nil, fmt.Errorf("failed to read server sequence: %w", err)
	}

	query := `
		SELECT ` + recordColumns + `
		FROM records
		WHERE owner_id = $1 AND entity_type = $2 AND server_seq > $3
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

// WriteBatch applies records in one transaction holding the write lock.
// Each applied record gets the next value of records_server_seq.
// Each upsert runs under a savepoint, so a unique violation raced by
// another writer rejects only that record.
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

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, writeLockKey); err != nil {
		return nil, fmt.Errorf("failed to acquire write lock: %w", err)
	}

	res := &api.WriteResult{Accepted: []string{}}
	for _, rec := range records {
		if rej := storage.Validate(ownerID, t, rec); rej != nil {
			res.Rejected = append(res.Rejected, *rej)
			continue
		}
		rec.EntityType = string(t)

		existing, found, err := getRecordForUpdate(ctx, tx, t, rec.ID)
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

		if found && !storage.Supersedes(rec, existing) {
			res.Accepted = append(res.Accepted, rec.ID)
			res.Stale = append(res.Stale, rec.ID)
			continue
		}

		conflict, err := upsertRecord(ctx, tx, rec)
		if err != nil {
			return nil, err
		}
		if conflict {
			res.Rejected = append(res.Rejected, storage.UniqueConflict(rec))
			continue
		}
		res.Accepted = append(res.Accepted, rec.ID)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return res, nil
}

func getRecordForUpdate(ctx context.Context, tx *sql.Tx, t models.EntityType, id string) (api.Record, bool, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE entity_type = $1 AND id = $2 FOR UPDATE`

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
		SELECT EXISTS (
			SELECT 1 FROM records
			WHERE entity_type = $1 AND unique_key = $2 AND id <> $3 AND deleted_at IS NULL
		)
	`

	var taken bool
	if err := tx.QueryRowContext(ctx, query, rec.EntityType, rec.UniqueKey, rec.ID).Scan(&taken); err != nil {
		return false, fmt.Errorf("failed to check unique key: %w", err)
	}
	return taken, nil
}

// upsertRecord пишет запись; true означает нарушение уникальности
func upsertRecord(ctx context.Context, tx *sql.Tx, rec api.Record) (bool, error) {
	if _, err := tx.ExecContext(ctx, "SAVEPOINT upsert_record"); err != nil {
		return false, fmt.Errorf("failed to create savepoint: %w", err)
	}

	query := `
		INSERT INTO records (
			entity_type, id, owner_id, device_id, parent_id, unique_key,
			data, created_at, deleted_at, updated_at, server_seq
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, nextval('records_server_seq'))
		ON CONFLICT (entity_type, id) DO UPDATE SET
			device_id = EXCLUDED.device_id,
			parent_id = EXCLUDED.parent_id,
			unique_key = EXCLUDED.unique_key,
			data = EXCLUDED.data,
			created_at = EXCLUDED.created_at,
			deleted_at = EXCLUDED.deleted_at,
			updated_at = EXCLUDED.updated_at,
			server_seq = EXCLUDED.server_seq
	`

	var deletedAt sql.NullTime
	if rec.DeletedAt != nil {
		deletedAt = sql.NullTime{Time: rec.DeletedAt.UTC(), Valid: true}
	}

	_, err := tx.ExecContext(ctx, query,
		rec.EntityType,
		rec.ID,
		rec.OwnerID,
		rec.DeviceID,
		rec.ParentID,
		rec.UniqueKey,
		[]byte(rec.Data),
		rec.CreatedAt.UTC(),
		deletedAt,
		rec.UpdatedAt,
	)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT upsert_record"); rbErr != nil {
			return false, fmt.Errorf("failed to roll back savepoint: %w", rbErr)
		}
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to upsert record %s: %w", rec.ID, err)
	}

	if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT upsert_record"); err != nil {
		return false, fmt.Errorf("failed to release savepoint: %w", err)
	}
	return false, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (api.Record, error) {
	var (
		rec       api.Record
		data      []byte
		deletedAt sql.NullTime
	)

	err := row.Scan(
		&rec.EntityType,
		&rec.ID,
		&rec.OwnerID,
		&rec.DeviceID,
		&rec.ParentID,
		&rec.UniqueKey,
		&data,
		&rec.CreatedAt,
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

	rec.Data = data
	rec.CreatedAt = rec.CreatedAt.UTC()
	if deletedAt.Valid {
		t := deletedAt.Time.UTC()
		rec.DeletedAt = &t
	}

	return rec, nil
}
