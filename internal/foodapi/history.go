package foodapi

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/raine/platescan/internal/analysis"
	"github.com/rs/zerolog/log"
)

const historyPath = "/api/analysis-history"

// roundedNutrients are shown as whole numbers when read back from history.
var roundedNutrients = []analysis.Nutrient{
	analysis.Calories,
	analysis.Protein,
	analysis.Carbs,
	analysis.Fats,
	analysis.Fiber,
}

type historyRecord struct {
	ID                 flexID   `json:"id"`
	UserID             string   `json:"user_id"`
	ImageURI           string   `json:"image_uri"`
	DishName           string   `json:"dish_name"`
	Category           string   `json:"category"`
	Confidence         any      `json:"confidence"`
	Description        string   `json:"description"`
	ItemsIdentified    string   `json:"items_identified"`
	NutritionalProfile string   `json:"nutritional_profile"`
	CaloricContent     string   `json:"caloric_content"`
	Macronutrients     string   `json:"macronutrients"`
	ProcessingLevel    string   `json:"processing_level"`
	HealthImplications string   `json:"health_implications"`
	MedicationAlerts   []string `json:"medication_alerts"`
	CreatedAt          string   `json:"created_at"`
}

// historyPayload flattens a result into the backend's snake_case row, with
// every present nutrient under its own wire key.
func historyPayload(userID string, r *analysis.Result) map[string]any {
	id := r.ID
	if id == "" {
		id = uuid.NewString()
	}

	payload := map[string]any{
		"id":                  id,
		"user_id":             userID,
		"image_uri":           r.ImageRef,
		"dish_name":           r.DishName,
		"category":            string(r.Category),
		"confidence":          r.Confidence,
		"description":         r.Description,
		"items_identified":    r.ItemsIdentified,
		"nutritional_profile": r.NutritionalProfile,
		"caloric_content":     r.CaloricContent,
		"macronutrients":      r.Macronutrients,
		"processing_level":    r.ProcessingLevel,
		"health_implications": r.HealthImplications,
		"medication_alerts":   r.MedicationAlerts,
	}
	for _, n := range r.Nutrients.Keys() {
		payload[string(n)] = r.Nutrients[n]
	}
	return payload
}

// SaveAnalysis stores a result in the user's remote history.
func (c *Client) SaveAnalysis(ctx context.Context, userID string, r *analysis.Result) error {
	if r == nil {
		return fmt.Errorf("no analysis to save")
	}

	_, err := handleError(c.req(ctx, nil).
		SetBody(historyPayload(userID, r)).
		Post(c.backendBaseURL + historyPath))
	if err != nil {
		return fmt.Errorf("failed to save analysis history: %w", err)
	}
	return nil
}

// ListAnalyses returns a page of the user's history, newest first as ordered
// by the backend.
func (c *Client) ListAnalyses(ctx context.Context, userID string, limit, offset int) ([]*analysis.Result, error) {
	res, err := handleError(c.req(ctx, nil).
		SetQueryParams(map[string]string{
			"user_id": userID,
			"limit":   strconv.Itoa(limit),
			"offset":  strconv.Itoa(offset),
		}).
		Get(c.backendBaseURL + historyPath))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch analysis history: %w", err)
	}

	results, err := decodeHistory(res.Body())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch analysis history: %w", err)
	}
	return results, nil
}

// DeleteAnalysis removes one history entry.
func (c *Client) DeleteAnalysis(ctx context.Context, userID, id string) error {
	_, err := handleError(c.req(ctx, nil).
		SetQueryParams(map[string]string{
			"id":      id,
			"user_id": userID,
		}).
		Delete(c.backendBaseURL + historyPath))
	if err != nil {
		return fmt.Errorf("failed to delete analysis history: %w", err)
	}
	return nil
}

func decodeHistory(body []byte) ([]*analysis.Result, error) {
	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("invalid history response: %w", err)
	}

	results := make([]*analysis.Result, 0, len(rows))
	for _, row := range rows {
		var rec historyRecord
		if err := json.Unmarshal(row, &rec); err != nil {
			return nil, fmt.Errorf("invalid history row: %w", err)
		}
		var fields map[string]any
		if err := json.Unmarshal(row, &fields); err != nil {
			return nil, fmt.Errorf("invalid history row: %w", err)
		}
		results = append(results, rec.result(fields))
	}
	return results, nil
}

func (rec historyRecord) result(fields map[string]any) *analysis.Result {
	r := &analysis.Result{
		ID:                 string(rec.ID),
		ImageRef:           rec.ImageURI,
		Category:           analysis.NormalizeCategory(rec.Category),
		DishName:           rec.DishName,
		Description:        rec.Description,
		Analysis:           rec.Description,
		ItemsIdentified:    rec.ItemsIdentified,
		CaloricContent:     rec.CaloricContent,
		Macronutrients:     rec.Macronutrients,
		ProcessingLevel:    rec.ProcessingLevel,
		NutritionalProfile: rec.NutritionalProfile,
		HealthImplications: rec.HealthImplications,
		Nutrients:          analysis.Nutrients{},
	}
	if v, ok := numberValue(rec.Confidence); ok {
		r.Confidence = v
	}
	if len(rec.MedicationAlerts) > 0 {
		r.MedicationAlerts = rec.MedicationAlerts
	}
	if ts, ok := parseTimestamp(rec.CreatedAt); ok {
		r.Timestamp = ts
	} else if rec.CreatedAt != "" {
		log.Debug().Str("createdAt", rec.CreatedAt).Msg("unrecognized history timestamp")
	}

	for _, n := range analysis.AllNutrients() {
		v, ok := numberValue(fields[string(n)])
		if !ok {
			continue
		}
		r.Nutrients[n] = v
	}
	for _, n := range roundedNutrients {
		if v, ok := r.Nutrients[n]; ok {
			r.Nutrients[n] = math.Round(v)
		}
	}
	return r
}

// numberValue reads a JSON number that the backend may send as a string
// (numeric columns).
func numberValue(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999-07",
	"2006-01-02 15:04:05",
}

func parseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
