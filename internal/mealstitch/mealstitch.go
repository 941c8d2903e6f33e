// Package mealstitch analyzes a meal photographed as several separate items
// and combines the per-item results into one summary.
package mealstitch

import (
	"context"
	"errors"
	"fmt"

	"github.com/raine/platescan/internal/alert"
	"github.com/raine/platescan/internal/analysis"
	"github.com/raine/platescan/internal/foodapi"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// MaxItems is the largest number of items one meal can have.
const MaxItems = 5

// Client is the part of foodapi.Client used here.
type Client interface {
	AnalyzeItem(ctx context.Context, image []byte, itemNumber int) (*foodapi.ItemResponse, error)
	Summarize(ctx context.Context, items []analysis.ParsedAnalysis) (*foodapi.SummaryResponse, error)
}

// Meal is a completed multi-item analysis.
type Meal struct {
	Items   []*foodapi.ItemResponse
	Summary *foodapi.SummaryResponse
}

// Parsed returns the parsed record of every item, in item order.
func (m *Meal) Parsed() []analysis.ParsedAnalysis {
	out := make([]analysis.ParsedAnalysis, 0, len(m.Items))
	for _, it := range m.Items {
		out = append(out, it.Parsed)
	}
	return out
}

type Service struct {
	client Client
	alerts alert.Sink
}

// NewService returns a service that reports failures to sink. A nil sink
// logs them.
func NewService(client Client, sink alert.Sink) *Service {
	return &Service{client: client, alerts: alert.OrLog(sink)}
}

// AnalyzeItems analyzes all images in parallel. Image i is sent to item
// endpoint i+1; empty images are skipped but keep their number. The first
// failure cancels the remaining requests.
func (s *Service) AnalyzeItems(ctx context.Context, images [][]byte) ([]*foodapi.ItemResponse, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("no images provided")
	}
	if len(images) > MaxItems {
		return nil, fmt.Errorf("too many items: %d (max %d)", len(images), MaxItems)
	}

	results := make([]*foodapi.ItemResponse, len(images))
	g, gctx := errgroup.WithContext(ctx)
	for i, img := range images {
		if len(img) == 0 {
			continue
		}
		g.Go(func() error {
			itemNumber := i + 1
			res, err := s.client.AnalyzeItem(gctx, img, itemNumber)
			if err != nil {
				// Items stopped because a sibling failed are not failures
				// of their own.
				if errors.Is(err, context.Canceled) && gctx.Err() != nil {
					return err
				}
				s.alerts.Alert(alert.Alert{
					Title:   alert.TitleAnalysisError,
					Message: fmt.Sprintf(alert.MsgAnalyzeItem, itemNumber),
				})
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.alerts.Alert(alert.Alert{Title: alert.TitleAnalysisError, Message: alert.MsgAnalyzeMeal})
		return nil, err
	}

	items := make([]*foodapi.ItemResponse, 0, len(results))
	for _, r := range results {
		if r != nil {
			items = append(items, r)
		}
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("no images provided")
	}

	log.Info().Int("items", len(items)).Msg("meal items analyzed")
	return items, nil
}

// Summarize synthesizes the per-item analyses into one meal summary.
func (s *Service) Summarize(ctx context.Context, items []analysis.ParsedAnalysis) (*foodapi.SummaryResponse, error) {
	summary, err := s.client.Summarize(ctx, items)
	if err != nil {
		s.alerts.Alert(alert.Alert{Title: alert.TitleSummaryError, Message: alert.MsgSummarizeMeal})
		return nil, err
	}
	return summary, nil
}

// Analyze runs the per-item analyses and then the summary.
func (s *Service) Analyze(ctx context.Context, images [][]byte) (*Meal, error) {
	items, err := s.AnalyzeItems(ctx, images)
	if err != nil {
		return nil, err
	}

	meal := &Meal{Items: items}
	summary, err := s.Summarize(ctx, meal.Parsed())
	if err != nil {
		return nil, err
	}
	meal.Summary = summary
	return meal, nil
}
