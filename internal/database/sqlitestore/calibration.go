package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tangled.org/arabica.social/dialin/internal/database"
	"tangled.org/arabica.social/dialin/internal/models"
)

// ========== Calibrations ==========

func (s *Store) SetCalibration(ctx context.Context, cal models.Calibration) error {
	if cal.UpdatedAt.IsZero() {
		cal.UpdatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO calibrations (key, grinder, method, dial, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			grinder    = excluded.grinder,
			dial       = excluded.dial,
			updated_at = excluded.updated_at
	`, database.CalibrationKey(cal.Grinder, cal.Method), cal.Grinder, string(cal.Method), cal.Dial,
		cal.UpdatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("set calibration: %w", err)
	}
	return nil
}

func (s *Store) GetCalibration(ctx context.Context, grinder string, method models.Method) (*models.Calibration, error) {
	var cal models.Calibration
	var methodStr, updatedAtStr string
	err := s.db.QueryRowContext(ctx, `
		SELECT grinder, method, dial, updated_at
		FROM calibrations WHERE key = ?
	`, database.CalibrationKey(grinder, method)).Scan(&cal.Grinder, &methodStr, &cal.Dial, &updatedAtStr)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	cal.Method = models.Method(methodStr)
	cal.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAtStr)
	return &cal, nil
}

func (s *Store) ListCalibrations(ctx context.Context) ([]models.Calibration, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT grinder, method, dial, updated_at
		FROM calibrations ORDER BY grinder, method
	`)
	if err != nil {
		return nil, fmt.Errorf("list calibrations: %w", err)
	}
	defer rows.Close()

	var cals []models.Calibration
	for rows.Next() {
		var cal models.Calibration
		var methodStr, updatedAtStr string
		if err := rows.Scan(&cal.Grinder, &methodStr, &cal.Dial, &updatedAtStr); err != nil {
			return nil, err
		}
		cal.Method = models.Method(methodStr)
		cal.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAtStr)
		cals = append(cals, cal)
	}
	return cals, rows.Err()
}

func (s *Store) DeleteCalibration(ctx context.Context, grinder string, method models.Method) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM calibrations WHERE key = ?`, database.CalibrationKey(grinder, method))
	return err
}
