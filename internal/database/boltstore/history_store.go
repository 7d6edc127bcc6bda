package boltstore

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"tangled.org/arabica.social/dialin/internal/database"
	"tangled.org/arabica.social/dialin/internal/models"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

// HistoryStore persists generated recipes in insertion-time order.
type HistoryStore struct {
	db *bolt.DB
}

// historyKey sorts records by creation time; the ID suffix keeps keys unique
// when two records share a timestamp.
func historyKey(rec *models.HistoryRecord) []byte {
	key := make([]byte, 8, 8+len(rec.ID))
	binary.BigEndian.PutUint64(key, uint64(rec.CreatedAt.UnixNano()))
	return append(key, rec.ID...)
}

// Save stores rec, filling in ID and CreatedAt when unset.
func (s *HistoryStore) Save(ctx context.Context, rec *models.HistoryRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketHistory)
		if bucket == nil {
			return fmt.Errorf("bucket not found: %s", BucketHistory)
		}

		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal history record: %w", err)
		}

		return bucket.Put(historyKey(rec), data)
	})
}

// List returns up to limit records, newest first.
func (s *HistoryStore) List(ctx context.Context, limit int) ([]*models.HistoryRecord, error) {
	limit = database.NormalizeLimit(limit)
	var records []*models.HistoryRecord

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketHistory)
		if bucket == nil {
			return nil
		}

		c := bucket.Cursor()
		for k, v := c.Last(); k != nil && len(records) < limit; k, v = c.Prev() {
			var rec models.HistoryRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				continue
			}
			records = append(records, &rec)
		}
		return nil
	})

	return records, err
}

// Count returns the number of stored records.
func (s *HistoryStore) Count(ctx context.Context) (int, error) {
	var count int

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketHistory)
		if bucket == nil {
			return nil
		}
		count = bucket.Stats().KeyN
		return nil
	})

	return count, err
}

// Clear removes every record.
func (s *HistoryStore) Clear(ctx context.Context) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(BucketHistory); err != nil && err != bolt.ErrBucketNotFound {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		_, err := tx.CreateBucket(BucketHistory)
		return err
	})
}
