package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/raine/platescan/internal/models"
)

func (s *SQLiteStore) ListMedications(ctx context.Context, userID string) ([]models.Medication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, dosage, frequency, time_of_day, notes
		FROM medications WHERE user_id = ? ORDER BY created_at, rowid
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query medications: %w", err)
	}
	defer rows.Close()

	meds := []models.Medication{}
	for rows.Next() {
		var m models.Medication
		var times string
		if err := rows.Scan(&m.ID, &m.Name, &m.Dosage, &m.Frequency, &times, &m.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan medication: %w", err)
		}
		if err := json.Unmarshal([]byte(times), &m.TimeOfDay); err != nil {
			return nil, fmt.Errorf("failed to decode time of day for medication %s: %w", m.ID, err)
		}
		meds = append(meds, m.Normalized())
	}

	return meds, rows.Err()
}

// AddMedication stores m under a new id.
func (s *SQLiteStore) AddMedication(ctx context.Context, userID string, m models.Medication) (models.Medication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m = m.Normalized()
	m.ID = uuid.New().String()

	times, err := json.Marshal(m.TimeOfDay)
	if err != nil {
		return models.Medication{}, fmt.Errorf("failed to encode time of day: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO medications (id, user_id, name, dosage, frequency, time_of_day, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, userID, m.Name, m.Dosage, m.Frequency, string(times), m.Notes, time.Now().UTC())
	if err != nil {
		return models.Medication{}, fmt.Errorf("failed to add medication: %w", err)
	}

	return m, nil
}

func (s *SQLiteStore) UpdateMedication(ctx context.Context, userID string, m models.Medication) (models.Medication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m = m.Normalized()
	times, err := json.Marshal(m.TimeOfDay)
	if err != nil {
		return models.Medication{}, fmt.Errorf("failed to encode time of day: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE medications
		SET name = ?, dosage = ?, frequency = ?, time_of_day = ?, notes = ?
		WHERE id = ? AND user_id = ?
	`, m.Name, m.Dosage, m.Frequency, string(times), m.Notes, m.ID, userID)
	if err != nil {
		return models.Medication{}, fmt.Errorf("failed to update medication: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return models.Medication{}, fmt.Errorf("medication %s: %w", m.ID, ErrNotFound)
	}

	return m, nil
}

func (s *SQLiteStore) DeleteMedication(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `DELETE FROM medications WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete medication: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("medication %s: %w", id, ErrNotFound)
	}

	return nil
}
