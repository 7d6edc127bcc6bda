package database

import (
	"context"

	"tangled.org/arabica.social/dialin/internal/models"
)

// MockStore is a mock implementation of the Store interface for testing.
// Uses function fields to allow tests to inject custom behavior.
type MockStore struct {
	// History operations
	SaveRecordFunc   func(ctx context.Context, rec *models.HistoryRecord) error
	ListRecordsFunc  func(ctx context.Context, limit int) ([]*models.HistoryRecord, error)
	CountRecordsFunc func(ctx context.Context) (int, error)
	ClearRecordsFunc func(ctx context.Context) error

	// Calibration operations
	SetCalibrationFunc    func(ctx context.Context, cal models.Calibration) error
	GetCalibrationFunc    func(ctx context.Context, grinder string, method models.Method) (*models.Calibration, error)
	ListCalibrationsFunc  func(ctx context.Context) ([]models.Calibration, error)
	DeleteCalibrationFunc func(ctx context.Context, grinder string, method models.Method) error

	CloseFunc func() error
}

var _ Store = (*MockStore)(nil)

// SaveRecord calls the mock function or returns nil if not set
func (m *MockStore) SaveRecord(ctx context.Context, rec *models.HistoryRecord) error {
	if m.SaveRecordFunc != nil {
		return m.SaveRecordFunc(ctx, rec)
	}
	return nil
}

// ListRecords calls the mock function or returns nil if not set
func (m *MockStore) ListRecords(ctx context.Context, limit int) ([]*models.HistoryRecord, error) {
	if m.ListRecordsFunc != nil {
		return m.ListRecordsFunc(ctx, limit)
	}
	return nil, nil
}

// CountRecords calls the mock function or returns 0 if not set
func (m *MockStore) CountRecords(ctx context.Context) (int, error) {
	if m.CountRecordsFunc != nil {
		return m.CountRecordsFunc(ctx)
	}
	return 0, nil
}

// ClearRecords calls the mock function or returns nil if not set
func (m *MockStore) ClearRecords(ctx context.Context) error {
	if m.ClearRecordsFunc != nil {
		return m.ClearRecordsFunc(ctx)
	}
	return nil
}

// SetCalibration calls the mock function or returns nil if not set
func (m *MockStore) SetCalibration(ctx context.Context, cal models.Calibration) error {
	if m.SetCalibrationFunc != nil {
		return m.SetCalibrationFunc(ctx, cal)
	}
	return nil
}

// GetCalibration calls the mock function or returns nil if not set
func (m *MockStore) GetCalibration(ctx context.Context, grinder string, method models.Method) (*models.Calibration, error) {
	if m.GetCalibrationFunc != nil {
		return m.GetCalibrationFunc(ctx, grinder, method)
	}
	return nil, nil
}

// ListCalibrations calls the mock function or returns nil if not set
func (m *MockStore) ListCalibrations(ctx context.Context) ([]models.Calibration, error) {
	if m.ListCalibrationsFunc != nil {
		return m.ListCalibrationsFunc(ctx)
	}
	return nil, nil
}

// DeleteCalibration calls the mock function or returns nil if not set
func (m *MockStore) DeleteCalibration(ctx context.Context, grinder string, method models.Method) error {
	if m.DeleteCalibrationFunc != nil {
		return m.DeleteCalibrationFunc(ctx, grinder, method)
	}
	return nil
}

// Close calls the mock function or returns nil if not set
func (m *MockStore) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}
