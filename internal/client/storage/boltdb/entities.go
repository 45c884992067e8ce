package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/fitsync/internal/client/storage"
	"github.com/iudanet/fitsync/internal/models"
)

// ReadAll returns all records of a type, tombstones included
func (s *Storage) ReadAll(ctx context.Context, t models.EntityType) ([]models.Entity, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var entities []models.Entity

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(entityBucket(t))
		if bucket == nil {
			return fmt.Errorf("%w: %q", models.ErrUnknownEntityType, string(t))
		}

		return bucket.ForEach(func(k, v []byte) error {
			e, err := models.DecodeEntity(t, v)
			if err != nil {
				return err
			}
			entities = append(entities, e)
			return nil
		})
	})

	if err != nil {
		return nil, fmt.Errorf("failed to read %s records: %w", t, err)
	}

	return entities, nil
}

// Get returns a record by id
func (s *Storage) Get(ctx context.Context, t models.EntityType, id string) (models.Entity, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var entity models.Entity

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(entityBucket(t))
		if bucket == nil {
			return fmt.Errorf("%w: %q", models.ErrUnknownEntityType, string(t))
		}

		data := bucket.Get([]byte(id))
		if data == nil {
			return storage.ErrEntityNotFound
		}

		var err error
		entity, err = models.DecodeEntity(t, data)
		return err
	})

	if err != nil {
		return nil, err
	}

	return entity, nil
}

// Upsert stores a record as-is
func (s *Storage) Upsert(ctx context.Context, e models.Entity) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		return putEntity(tx, e)
	})

	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}

	return nil
}

// WriteWithLog stores a record and appends its log entry in one transaction
func (s *Storage) WriteWithLog(ctx context.Context, e models.Entity, entry models.MutationLogEntry) (uint64, error) {
	if s.db == nil {
		return 0, storage.ErrStorageClosed
	}

	var seq uint64

	err := s.db.Update(func(tx *bbolt.Tx) error {
		if err := putEntity(tx, e); err != nil {
			return err
		}

		var err error
		seq, err = appendLog(tx, entry)
		return err
	})

	if err != nil {
		return 0, fmt.Errorf("transaction failed: %w", err)
	}

	return seq, nil
}

// MaxUpdatedAt returns the greatest UpdatedAt across all records
func (s *Storage) MaxUpdatedAt(ctx context.Context) (int64, error) {
	if s.db == nil {
		return 0, storage.ErrStorageClosed
	}

	var maxUpdatedAt int64

	err := s.db.View(func(tx *bbolt.Tx) error {
		for _, t := range models.EntityTypes {
			bucket := tx.Bucket(entityBucket(t))
			if bucket == nil {
				continue
			}

			err := bucket.ForEach(func(k, v []byte) error {
				var fields models.SyncFields
				if err := json.Unmarshal(v, &fields); err != nil {
					return fmt.Errorf("failed to unmarshal %s record: %w", t, err)
				}

				if fields.UpdatedAt > maxUpdatedAt {
					maxUpdatedAt = fields.UpdatedAt
				}

				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return 0, fmt.Errorf("failed to get max updated_at: %w", err)
	}

	return maxUpdatedAt, nil
}

// Commit applies one reconciled sync batch atomically
func (s *Storage) Commit(ctx context.Context, batch *storage.CommitBatch) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}
	if batch == nil {
		return nil
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		for _, e := range batch.Upserts {
			if err := putEntity(tx, e); err != nil {
				return err
			}
		}

		for _, entry := range batch.Log {
			if _, err := appendLog(tx, entry); err != nil {
				return err
			}
		}

		if batch.Cursor != nil {
			return putCursor(tx, *batch.Cursor)
		}

		return nil
	})

	if err != nil {
		return fmt.Errorf("commit transaction failed: %w", err)
	}

	return nil
}

func putEntity(tx *bbolt.Tx, e models.Entity) error {
	bucket := tx.Bucket(entityBucket(e.Kind()))
	if bucket == nil {
		return fmt.Errorf("%w: %q", models.ErrUnknownEntityType, string(e.Kind()))
	}

	// Сериализуем запись в JSON
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal %s record: %w", e.Kind(), err)
	}

	// Сохраняем по ключу ID
	if err := bucket.Put([]byte(e.Sync().ID), data); err != nil {
		return fmt.Errorf("failed to save %s record: %w", e.Kind(), err)
	}

	return nil
}
