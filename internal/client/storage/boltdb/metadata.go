package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/fitsync/internal/client/storage"
	"github.com/iudanet/fitsync/internal/models"
)

const (
	keySyncCursor = "sync_cursor"
	keyDeviceID   = "device_id"
)

// GetCursor retrieves the sync cursor
// Returns a zero cursor if no sync has been performed yet
func (s *Storage) GetCursor(ctx context.Context) (models.SyncCursor, error) {
	if s.db == nil {
		return models.SyncCursor{}, storage.ErrStorageClosed
	}

	var cursor models.SyncCursor

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}

		data := bucket.Get([]byte(keySyncCursor))
		if data == nil {
			// Курсора нет - первая синхронизация
			return nil
		}

		return json.Unmarshal(data, &cursor)
	})

	if err != nil {
		return models.SyncCursor{}, fmt.Errorf("failed to get sync cursor: %w", err)
	}

	return cursor, nil
}

// SetCursor saves the sync cursor
func (s *Storage) SetCursor(ctx context.Context, cursor models.SyncCursor) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		return putCursor(tx, cursor)
	})

	if err != nil {
		return fmt.Errorf("failed to save sync cursor: %w", err)
	}

	return nil
}

// GetDeviceID returns the stored device id or an empty string
func (s *Storage) GetDeviceID(ctx context.Context) (string, error) {
	if s.db == nil {
		return "", storage.ErrStorageClosed
	}

	var deviceID string

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}

		deviceID = string(bucket.Get([]byte(keyDeviceID)))
		return nil
	})

	if err != nil {
		return "", fmt.Errorf("failed to get device id: %w", err)
	}

	return deviceID, nil
}

// SaveDeviceID stores the device id
func (s *Storage) SaveDeviceID(ctx context.Context, deviceID string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}

		if err := bucket.Put([]byte(keyDeviceID), []byte(deviceID)); err != nil {
			return fmt.Errorf("failed to save device id: %w", err)
		}

		return nil
	})
}

func putCursor(tx *bbolt.Tx, cursor models.SyncCursor) error {
	bucket := tx.Bucket(bucketMetadata)
	if bucket == nil {
		return fmt.Errorf("metadata bucket not found")
	}

	data, err := json.Marshal(cursor)
	if err != nil {
		return fmt.Errorf("failed to marshal sync cursor: %w", err)
	}

	return bucket.Put([]byte(keySyncCursor), data)
}
