package sqlitestore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tangled.org/arabica.social/dialin/internal/database"
	"tangled.org/arabica.social/dialin/internal/models"

	"github.com/google/uuid"
)

// ========== History ==========

func (s *Store) SaveRecord(ctx context.Context, rec *models.HistoryRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	reqJSON, err := json.Marshal(rec.Request)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	recipeJSON, err := json.Marshal(rec.Recipe)
	if err != nil {
		return fmt.Errorf("failed to marshal recipe: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO history (id, created_at, request, recipe)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			created_at = excluded.created_at,
			request    = excluded.request,
			recipe     = excluded.recipe
	`, rec.ID, rec.CreatedAt.UnixNano(), string(reqJSON), string(recipeJSON))
	if err != nil {
		return fmt.Errorf("save record: %w", err)
	}
	return nil
}

func (s *Store) ListRecords(ctx context.Context, limit int) ([]*models.HistoryRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, request, recipe
		FROM history ORDER BY created_at DESC, id DESC LIMIT ?
	`, database.NormalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []*models.HistoryRecord
	for rows.Next() {
		var rec models.HistoryRecord
		var createdAt int64
		var reqJSON, recipeJSON string
		if err := rows.Scan(&rec.ID, &createdAt, &reqJSON, &recipeJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(reqJSON), &rec.Request); err != nil {
			continue
		}
		if err := json.Unmarshal([]byte(recipeJSON), &rec.Recipe); err != nil {
			continue
		}
		rec.CreatedAt = time.Unix(0, createdAt).UTC()
		records = append(records, &rec)
	}
	return records, rows.Err()
}

func (s *Store) CountRecords(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM history`).Scan(&count)
	return count, err
}

func (s *Store) ClearRecords(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM history`)
	return err
}
