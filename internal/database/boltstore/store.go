// Package boltstore provides persistent storage using BoltDB (bbolt).
// It implements database.Store for recipe history and per-grinder
// calibrations.
package boltstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tangled.org/arabica.social/dialin/internal/database"
	"tangled.org/arabica.social/dialin/internal/models"

	bolt "go.etcd.io/bbolt"
)

// Bucket names for organizing data
var (
	// BucketHistory stores generated recipes keyed by big-endian unix nanos + ID
	BucketHistory = []byte("history")

	// BucketCalibrations stores dial calibrations keyed by "grinder|METHOD"
	BucketCalibrations = []byte("calibrations")
)

// Store wraps a BoltDB database and provides access to specialized stores.
type Store struct {
	db *bolt.DB
}

var _ database.Store = (*Store)(nil)

// Options configures the BoltDB store.
type Options struct {
	// Path to the database file. Parent directories will be created if needed.
	Path string

	// Timeout for obtaining a file lock on the database.
	// If zero, a default of 5 seconds is used.
	Timeout time.Duration

	// FileMode for creating the database file.
	// If zero, 0600 is used.
	FileMode os.FileMode
}

// DefaultOptions returns sensible defaults for development.
func DefaultOptions() Options {
	return Options{
		Path:     "dialin.db",
		Timeout:  5 * time.Second,
		FileMode: 0600,
	}
}

// Open creates or opens a BoltDB database at the specified path.
// It creates all necessary buckets if they don't exist.
func Open(opts Options) (*Store, error) {
	if opts.Path == "" {
		opts.Path = "dialin.db"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.FileMode == 0 {
		opts.FileMode = 0600
	}

	// Ensure parent directory exists
	dir := filepath.Dir(opts.Path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := bolt.Open(opts.Path, opts.FileMode, &bolt.Options{
		Timeout: opts.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{BucketHistory, BucketCalibrations} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// HistoryStore returns a recipe history store backed by this database.
func (s *Store) HistoryStore() *HistoryStore {
	return &HistoryStore{db: s.db}
}

// CalibrationStore returns a calibration store backed by this database.
func (s *Store) CalibrationStore() *CalibrationStore {
	return &CalibrationStore{db: s.db}
}

func (s *Store) SaveRecord(ctx context.Context, rec *models.HistoryRecord) error {
	return s.HistoryStore().Save(ctx, rec)
}

func (s *Store) ListRecords(ctx context.Context, limit int) ([]*models.HistoryRecord, error) {
	return s.HistoryStore().List(ctx, limit)
}

func (s *Store) CountRecords(ctx context.Context) (int, error) {
	return s.HistoryStore().Count(ctx)
}

func (s *Store) ClearRecords(ctx context.Context) error {
	return s.HistoryStore().Clear(ctx)
}

func (s *Store) SetCalibration(ctx context.Context, cal models.Calibration) error {
	return s.CalibrationStore().Set(ctx, cal)
}

func (s *Store) GetCalibration(ctx context.Context, grinder string, method models.Method) (*models.Calibration, error) {
	return s.CalibrationStore().Get(ctx, grinder, method)
}

func (s *Store) ListCalibrations(ctx context.Context) ([]models.Calibration, error) {
	return s.CalibrationStore().List(ctx)
}

func (s *Store) DeleteCalibration(ctx context.Context, grinder string, method models.Method) error {
	return s.CalibrationStore().Delete(ctx, grinder, method)
}
