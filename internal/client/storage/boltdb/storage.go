package boltdb

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/fitsync/internal/models"
)

var (
	// BoltDB bucket names
	bucketLog      = []byte("mutation_log")
	bucketMetadata = []byte("metadata")
)

const entityBucketPrefix = "entity:"

// entityBucket имя bucket для записей одного типа
func entityBucket(t models.EntityType) []byte {
	return []byte(entityBucketPrefix + string(t))
}

// Storage represents BoltDB storage implementation for client
type Storage struct {
	db *bbolt.DB
}

// New creates a new BoltDB storage instance
// dbPath is the path to the BoltDB database file
func New(ctx context.Context, dbPath string) (*Storage, error) {
	// Открываем BoltDB
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	storage := &Storage{db: db}

	// Инициализируем buckets
	if err := storage.initBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return storage, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// initBuckets создает необходимые buckets если они не существуют
func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, t := range models.EntityTypes {
			if _, err := tx.CreateBucketIfNotExists(entityBucket(t)); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", t, err)
			}
		}

		if _, err := tx.CreateBucketIfNotExists(bucketLog); err != nil {
			return fmt.Errorf("failed to create mutation log bucket: %w", err)
		}

		if _, err := tx.CreateBucketIfNotExists(bucketMetadata); err != nil {
			return fmt.Errorf("failed to create metadata bucket: %w", err)
		}

		return nil
	})
}
