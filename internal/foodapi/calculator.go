package foodapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/raine/platescan/internal/models"
	"github.com/raine/platescan/internal/stream"
	"github.com/rs/zerolog/log"
)

const requestTypeAnalysis = "analysis_request"

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	ID      string `json:"id,omitempty"`
}

type analysisEnvelope struct {
	Messages []message `json:"messages"`
}

type analysisContent struct {
	Type        string              `json:"type"`
	Image       string              `json:"image"`
	Medications []models.Medication `json:"medications"`
}

type itemContent struct {
	Type  string `json:"type"`
	Image string `json:"image"`
}

// newEnvelope wraps content as the single user message the endpoints expect.
// The content itself is a JSON document encoded as a string.
func newEnvelope(content any, id string) (analysisEnvelope, error) {
	b, err := json.Marshal(content)
	if err != nil {
		return analysisEnvelope{}, fmt.Errorf("failed to encode analysis request: %w", err)
	}
	return analysisEnvelope{
		Messages: []message{{Role: "user", Content: string(b), ID: id}},
	}, nil
}

// calculatorContent builds the calculator payload: plain base64 without a
// data URL prefix, medication notes never null.
func calculatorContent(image []byte, meds []models.Medication) analysisContent {
	formatted := make([]models.Medication, 0, len(meds))
	for _, m := range meds {
		formatted = append(formatted, m.Normalized())
	}
	return analysisContent{
		Type:        requestTypeAnalysis,
		Image:       base64.StdEncoding.EncodeToString(image),
		Medications: formatted,
	}
}

// OpenAnalysis posts an image to the calculator endpoint and returns the
// streamed response body. The caller must close it.
func (c *Client) OpenAnalysis(ctx context.Context, image []byte, meds []models.Medication) (io.ReadCloser, error) {
	body, err := newEnvelope(calculatorContent(image, meds), uuid.NewString())
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("imageBytes", len(image)).
		Int("medications", len(meds)).
		Str("url", c.calculatorURL).
		Msg("sending analysis request")

	res, err := c.req(ctx, nil).
		SetHeader("Accept", "text/event-stream, application/json").
		SetDoNotParseResponse(true).
		SetBody(body).
		Post(c.calculatorURL)
	if err != nil {
		return nil, fmt.Errorf("analysis request failed: %w", err)
	}

	raw := res.RawBody()
	if res.IsError() {
		defer raw.Close()
		text, _ := io.ReadAll(io.LimitReader(raw, 64*1024))
		return nil, newAPIError(res, text)
	}

	return raw, nil
}

// Analyze posts an image to the calculator endpoint and collects the whole
// stream.
func (c *Client) Analyze(ctx context.Context, image []byte, meds []models.Medication) (stream.Transcript, error) {
	body, err := c.OpenAnalysis(ctx, image, meds)
	if err != nil {
		return stream.Transcript{}, err
	}
	defer body.Close()

	t, err := stream.Collect(ctx, body)
	if err != nil {
		return stream.Transcript{}, err
	}

	log.Info().
		Int("analysisLength", len(t.Analysis)).
		Int("alerts", len(t.Alerts)).
		Msg("analysis stream complete")
	log.Debug().Str("preview", preview(t.Analysis, 100)).Msg("analysis text")

	return t, nil
}

func preview(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n]
}
