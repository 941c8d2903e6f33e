package foodapi

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/raine/platescan/internal/models"
)

const medicationsPath = "/api/medications"

type medicationRecord struct {
	ID        flexID   `json:"id"`
	UserID    string   `json:"user_id,omitempty"`
	Name      string   `json:"name"`
	Dosage    string   `json:"dosage"`
	Frequency string   `json:"frequency"`
	TimeOfDay []string `json:"time_of_day"`
	Notes     string   `json:"notes"`
}

func toMedicationRecord(userID string, m models.Medication) medicationRecord {
	m = m.Normalized()
	return medicationRecord{
		ID:        flexID(m.ID),
		UserID:    userID,
		Name:      m.Name,
		Dosage:    m.Dosage,
		Frequency: m.Frequency,
		TimeOfDay: m.TimeOfDay,
		Notes:     m.Notes,
	}
}

func (r medicationRecord) medication() models.Medication {
	return models.Medication{
		ID:        string(r.ID),
		Name:      r.Name,
		Dosage:    r.Dosage,
		Frequency: r.Frequency,
		TimeOfDay: r.TimeOfDay,
		Notes:     r.Notes,
	}.Normalized()
}

func (c *Client) ListMedications(ctx context.Context, userID string) ([]models.Medication, error) {
	var result []medicationRecord
	_, err := handleError(c.req(ctx, &result).
		SetQueryParam("user_id", userID).
		Get(c.backendBaseURL + medicationsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch medications: %w", err)
	}

	meds := make([]models.Medication, 0, len(result))
	for _, r := range result {
		meds = append(meds, r.medication())
	}
	return meds, nil
}

// AddMedication creates a medication with a fresh id and returns the stored
// version.
func (c *Client) AddMedication(ctx context.Context, userID string, m models.Medication) (models.Medication, error) {
	m.ID = uuid.NewString()

	result := &medicationRecord{}
	_, err := handleError(c.req(ctx, result).
		SetBody(toMedicationRecord(userID, m)).
		Post(c.backendBaseURL + medicationsPath))
	if err != nil {
		return models.Medication{}, fmt.Errorf("failed to add medication: %w", err)
	}
	return result.medication(), nil
}

func (c *Client) UpdateMedication(ctx context.Context, userID string, m models.Medication) (models.Medication, error) {
	if m.ID == "" {
		return models.Medication{}, fmt.Errorf("medication id is required")
	}

	result := &medicationRecord{}
	_, err := handleError(c.req(ctx, result).
		SetBody(toMedicationRecord(userID, m)).
		Put(c.backendBaseURL + medicationsPath))
	if err != nil {
		return models.Medication{}, fmt.Errorf("failed to update medication: %w", err)
	}
	return result.medication(), nil
}

func (c *Client) DeleteMedication(ctx context.Context, userID, id string) error {
	_, err := handleError(c.req(ctx, nil).
		SetQueryParams(map[string]string{
			"user_id": userID,
			"id":      id,
		}).
		Delete(c.backendBaseURL + medicationsPath))
	if err != nil {
		return fmt.Errorf("failed to delete medication: %w", err)
	}
	return nil
}
