package database

import (
	"context"
	"strings"

	"tangled.org/arabica.social/dialin/internal/models"
)

// History list limits.
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// Store defines the interface for all persistence operations.
// This abstraction allows swapping BoltDB for SQLite without touching handlers.
// All methods accept a context.Context as the first parameter to support
// cancellation, timeouts, and request-scoped values.
type Store interface {
	// History operations
	SaveRecord(ctx context.Context, rec *models.HistoryRecord) error
	ListRecords(ctx context.Context, limit int) ([]*models.HistoryRecord, error)
	CountRecords(ctx context.Context) (int, error)
	ClearRecords(ctx context.Context) error

	// Calibration operations
	// GetCalibration returns nil, nil when no calibration is stored.
	SetCalibration(ctx context.Context, cal models.Calibration) error
	GetCalibration(ctx context.Context, grinder string, method models.Method) (*models.Calibration, error)
	ListCalibrations(ctx context.Context) ([]models.Calibration, error)
	DeleteCalibration(ctx context.Context, grinder string, method models.Method) error

	// Close the database connection
	Close() error
}

// NormalizeLimit maps a requested history limit onto [1, MaxHistoryLimit],
// using DefaultHistoryLimit when none was given.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		return MaxHistoryLimit
	}
	return limit
}

// CalibrationKey is the storage key for a grinder/method pair. Grinder names
// are compared case-insensitively with whitespace collapsed.
func CalibrationKey(grinder string, method models.Method) string {
	name := strings.Join(strings.Fields(strings.ToLower(grinder)), " ")
	return name + "|" + string(method)
}
