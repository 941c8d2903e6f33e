package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/raine/platescan/internal/analysis"
)

// SaveAnalysis stores a result in the user's history. A missing id or
// timestamp is filled in on the stored copy and on r.
func (s *SQLiteStore) SaveAnalysis(ctx context.Context, userID string, r *analysis.Result) error {
	if r == nil {
		return fmt.Errorf("no analysis to save")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}

	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analysis_history (id, user_id, category, dish_name, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			category = excluded.category,
			dish_name = excluded.dish_name,
			payload = excluded.payload
	`, r.ID, userID, string(r.Category), r.DishName, string(payload), r.Timestamp.UTC())

	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	return nil
}

// ListAnalyses returns the user's history, newest first.
func (s *SQLiteStore) ListAnalyses(ctx context.Context, userID string, limit, offset int) ([]*analysis.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = -1
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT payload FROM analysis_history
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis history: %w", err)
	}
	defer rows.Close()

	var results []*analysis.Result
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		var r analysis.Result
		if err := json.Unmarshal([]byte(payload), &r); err != nil {
			return nil, fmt.Errorf("failed to unmarshal analysis: %w", err)
		}
		results = append(results, &r)
	}

	return results, rows.Err()
}

// DeleteAnalysis removes a history entry by id and user id.
func (s *SQLiteStore) DeleteAnalysis(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `DELETE FROM analysis_history WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete analysis: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("analysis %s: %w", id, ErrNotFound)
	}

	return nil
}
