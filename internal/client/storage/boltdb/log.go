package boltdb

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/fitsync/internal/client/storage"
	"github.com/iudanet/fitsync/internal/models"
)

// seqKey big-endian ключ, чтобы курсор bbolt обходил журнал в порядке номеров
func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}

// AppendLog assigns the next sequence number and persists the entry
func (s *Storage) AppendLog(ctx context.Context, entry models.MutationLogEntry) (uint64, error) {
	if s.db == nil {
		return 0, storage.ErrStorageClosed
	}

	var seq uint64

	err := s.db.Update(func(tx *bbolt.Tx) error {
		var err error
		seq, err = appendLog(tx, entry)
		return err
	})

	if err != nil {
		return 0, fmt.Errorf("failed to append mutation log entry: %w", err)
	}

	return seq, nil
}

// ReadLogSince calls fn for entries with Seq > after in order
func (s *Storage) ReadLogSince(ctx context.Context, after uint64, fn func(models.MutationLogEntry) bool) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketLog)
		if bucket == nil {
			return fmt.Errorf("mutation log bucket not found")
		}

		c := bucket.Cursor()
		for k, v := c.Seek(seqKey(after + 1)); k != nil; k, v = c.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var entry models.MutationLogEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("failed to unmarshal log entry %d: %w", binary.BigEndian.Uint64(k), err)
			}

			if !fn(entry) {
				return nil
			}
		}

		return nil
	})
}

// CompactLog removes entries with Seq <= upTo except the retained ones
func (s *Storage) CompactLog(ctx context.Context, upTo uint64, retain map[uint64]struct{}) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketLog)
		if bucket == nil {
			return fmt.Errorf("mutation log bucket not found")
		}

		// удаление во время обхода курсором пропускает ключи, поэтому сначала собираем
		var stale [][]byte
		c := bucket.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			seq := binary.BigEndian.Uint64(k)
			if seq > upTo {
				break
			}
			if _, keep := retain[seq]; keep {
				continue
			}
			stale = append(stale, append([]byte(nil), k...))
		}

		for _, k := range stale {
			if err := bucket.Delete(k); err != nil {
				return fmt.Errorf("failed to delete log entry %d: %w", binary.BigEndian.Uint64(k), err)
			}
		}

		return nil
	})

	if err != nil {
		return fmt.Errorf("failed to compact mutation log: %w", err)
	}

	return nil
}

// LogStats returns head, oldest retained seq and retained count
func (s *Storage) LogStats(ctx context.Context) (storage.LogStats, error) {
	if s.db == nil {
		return storage.LogStats{}, storage.ErrStorageClosed
	}

	var stats storage.LogStats

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketLog)
		if bucket == nil {
			return fmt.Errorf("mutation log bucket not found")
		}

		stats.Head = bucket.Sequence()
		stats.Len = bucket.Stats().KeyN
		if k, _ := bucket.Cursor().First(); k != nil {
			stats.Oldest = binary.BigEndian.Uint64(k)
		}

		return nil
	})

	if err != nil {
		return storage.LogStats{}, fmt.Errorf("failed to read mutation log stats: %w", err)
	}

	return stats, nil
}

func appendLog(tx *bbolt.Tx, entry models.MutationLogEntry) (uint64, error) {
	bucket := tx.Bucket(bucketLog)
	if bucket == nil {
		return 0, fmt.Errorf("mutation log bucket not found")
	}

	seq, err := bucket.NextSequence()
	if err != nil {
		return 0, fmt.Errorf("failed to allocate log sequence: %w", err)
	}
	entry.Seq = seq

	data, err := json.Marshal(entry)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal log entry: %w", err)
	}

	if err := bucket.Put(seqKey(seq), data); err != nil {
		return 0, fmt.Errorf("failed to save log entry: %w", err)
	}

	return seq, nil
}
