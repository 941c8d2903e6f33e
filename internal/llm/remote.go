package llm

import (
	"context"

	"github.com/raine/platescan/internal/analysis"
	"github.com/raine/platescan/internal/models"
	"github.com/raine/platescan/internal/stream"
)

// CalculatorClient is the part of foodapi.Client used for single-image
// analysis.
type CalculatorClient interface {
	Analyze(ctx context.Context, image []byte, meds []models.Medication) (stream.Transcript, error)
}

// RemoteAnalyzer analyzes images with the hosted calculator endpoint.
type RemoteAnalyzer struct {
	client CalculatorClient
}

func NewRemoteAnalyzer(client CalculatorClient) *RemoteAnalyzer {
	return &RemoteAnalyzer{client: client}
}

func (a *RemoteAnalyzer) Transcribe(ctx context.Context, image []byte, meds []models.Medication) (stream.Transcript, error) {
	return a.client.Analyze(ctx, image, meds)
}

func (a *RemoteAnalyzer) AnalyzeImage(ctx context.Context, image []byte, meds []models.Medication) (*analysis.Result, error) {
	return analyze(ctx, a, image, meds)
}
