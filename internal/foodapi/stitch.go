package foodapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/raine/platescan/internal/analysis"
	"github.com/rs/zerolog/log"
)

// ItemResponse is the reply of a per-item meal-stitch endpoint.
type ItemResponse struct {
	Status    string `json:"status"`
	Analysis  string `json:"analysis"`
	Timestamp string `json:"timestamp"`

	Parsed analysis.ParsedAnalysis `json:"-"`
}

// SummaryResponse is the reply of the summarize endpoint.
type SummaryResponse struct {
	Status    string `json:"status"`
	Synthesis string `json:"synthesis"`
	Timestamp string `json:"timestamp"`
}

// summaryItem is what the summarize endpoint receives for each item;
// confidence and image index are left out.
type summaryItem struct {
	Category              string `json:"category"`
	ItemsIdentified       string `json:"itemsIdentified"`
	CaloricContent        string `json:"caloricContent"`
	Macronutrients        string `json:"macronutrients"`
	ProcessingLevel       string `json:"processingLevel"`
	NutritionalProfile    string `json:"nutritionalProfile"`
	HealthImplications    string `json:"healthImplications"`
	PortionConsiderations string `json:"portionConsiderations"`
}

type summaryRequest struct {
	Responses struct {
		Items string `json:"items"`
	} `json:"responses"`
}

// DataURL encodes an image as a data URL. Images that are not recognized as
// any image type are labelled as JPEG.
func DataURL(image []byte) string {
	mime := http.DetectContentType(image)
	if !strings.HasPrefix(mime, "image/") {
		mime = "image/jpeg"
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(image))
}

// AnalyzeItem sends one image to the numbered per-item endpoint. Numbers
// start at 1.
func (c *Client) AnalyzeItem(ctx context.Context, image []byte, itemNumber int) (*ItemResponse, error) {
	if itemNumber < 1 {
		return nil, fmt.Errorf("invalid item number %d", itemNumber)
	}

	body, err := newEnvelope(itemContent{Type: requestTypeAnalysis, Image: DataURL(image)}, "")
	if err != nil {
		return nil, err
	}

	log.Info().Int("item", itemNumber).Int("imageBytes", len(image)).Msg("sending meal item analysis request")

	result := &ItemResponse{}
	_, err = handleError(c.req(ctx, result).
		SetBody(body).
		Post(fmt.Sprintf("%s/llm-%d", c.stitchBaseURL, itemNumber)))
	if err != nil {
		return nil, fmt.Errorf("failed to analyze item %d: %w", itemNumber, err)
	}

	result.Parsed = analysis.ParseItem(result.Analysis)
	return result, nil
}

// Summarize asks the endpoint for a synthesis across all analyzed items.
func (c *Client) Summarize(ctx context.Context, items []analysis.ParsedAnalysis) (*SummaryResponse, error) {
	summary := make([]summaryItem, 0, len(items))
	for _, it := range items {
		summary = append(summary, summaryItem{
			Category:              it.Category,
			ItemsIdentified:       it.ItemsIdentified,
			CaloricContent:        it.CaloricContent,
			Macronutrients:        it.Macronutrients,
			ProcessingLevel:       it.ProcessingLevel,
			NutritionalProfile:    it.NutritionalProfile,
			HealthImplications:    it.HealthImplications,
			PortionConsiderations: it.PortionConsiderations,
		})
	}
	encoded, err := json.Marshal(summary)
	if err != nil {
		return nil, fmt.Errorf("failed to encode summary items: %w", err)
	}

	var body summaryRequest
	body.Responses.Items = string(encoded)

	log.Info().Int("items", len(items)).Msg("sending meal summary request")

	result := &SummaryResponse{}
	_, err = handleError(c.req(ctx, result).
		SetBody(body).
		Post(c.stitchBaseURL + "/summarize"))
	if err != nil {
		return nil, fmt.Errorf("failed to summarize meal analysis: %w", err)
	}
	return result, nil
}
