package llm

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/raine/platescan/internal/analysis"
	"github.com/raine/platescan/internal/models"
	"github.com/raine/platescan/internal/stream"
)

// Transcriber produces the raw analysis text and medication alerts for a meal
// photo.
type Transcriber interface {
	Transcribe(ctx context.Context, image []byte, meds []models.Medication) (stream.Transcript, error)
}

// Analyzer turns a meal photo into a typed analysis record.
type Analyzer interface {
	AnalyzeImage(ctx context.Context, image []byte, meds []models.Medication) (*analysis.Result, error)
}

// analyze runs t and parses its transcript into a fresh record.
func analyze(ctx context.Context, t Transcriber, image []byte, meds []models.Medication) (*analysis.Result, error) {
	transcript, err := t.Transcribe(ctx, image, meds)
	if err != nil {
		return nil, err
	}
	return newResult(transcript), nil
}

func newResult(t stream.Transcript) *analysis.Result {
	r := analysis.Build(t.Analysis, t.Alerts)
	r.ID = uuid.New().String()
	r.Timestamp = time.Now()
	return r
}
