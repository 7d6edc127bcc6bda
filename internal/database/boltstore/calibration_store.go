package boltstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"tangled.org/arabica.social/dialin/internal/database"
	"tangled.org/arabica.social/dialin/internal/models"

	bolt "go.etcd.io/bbolt"
)

// CalibrationStore keeps one personal baseline dial per grinder and method.
type CalibrationStore struct {
	db *bolt.DB
}

// Set stores cal, replacing any previous calibration for the same pair.
func (s *CalibrationStore) Set(ctx context.Context, cal models.Calibration) error {
	if cal.UpdatedAt.IsZero() {
		cal.UpdatedAt = time.Now().UTC()
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketCalibrations)
		if bucket == nil {
			return fmt.Errorf("bucket not found: %s", BucketCalibrations)
		}

		data, err := json.Marshal(cal)
		if err != nil {
			return fmt.Errorf("failed to marshal calibration: %w", err)
		}

		return bucket.Put([]byte(database.CalibrationKey(cal.Grinder, cal.Method)), data)
	})
}

// Get returns the calibration for grinder and method, or nil if none exists.
func (s *CalibrationStore) Get(ctx context.Context, grinder string, method models.Method) (*models.Calibration, error) {
	var cal *models.Calibration

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketCalibrations)
		if bucket == nil {
			return nil
		}

		data := bucket.Get([]byte(database.CalibrationKey(grinder, method)))
		if data == nil {
			return nil
		}

		cal = &models.Calibration{}
		if err := json.Unmarshal(data, cal); err != nil {
			return fmt.Errorf("failed to unmarshal calibration: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return cal, nil
}

// List returns every calibration ordered by grinder then method.
func (s *CalibrationStore) List(ctx context.Context) ([]models.Calibration, error) {
	var cals []models.Calibration

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketCalibrations)
		if bucket == nil {
			return nil
		}

		return bucket.ForEach(func(k, v []byte) error {
			var cal models.Calibration
			if err := json.Unmarshal(v, &cal); err != nil {
				return nil
			}
			cals = append(cals, cal)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(cals, func(i, j int) bool {
		if cals[i].Grinder != cals[j].Grinder {
			return cals[i].Grinder < cals[j].Grinder
		}
		return cals[i].Method < cals[j].Method
	})

	return cals, nil
}

// Delete removes the calibration for grinder and method. Deleting a missing
// calibration is not an error.
func (s *CalibrationStore) Delete(ctx context.Context, grinder string, method models.Method) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketCalibrations)
		if bucket == nil {
			return nil
		}

		return bucket.Delete([]byte(database.CalibrationKey(grinder, method)))
	})
}
