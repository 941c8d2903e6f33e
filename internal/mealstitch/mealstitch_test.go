package mealstitch

import (
	"context"
	"errors"
	"testing"

	"github.com/raine/platescan/internal/alert"
	"github.com/raine/platescan/internal/analysis"
	"github.com/raine/platescan/internal/foodapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type clientMock struct {
	mock.Mock
}

func (m *clientMock) AnalyzeItem(ctx context.Context, image []byte, itemNumber int) (*foodapi.ItemResponse, error) {
	args := m.Called(ctx, image, itemNumber)
	res, _ := args.Get(0).(*foodapi.ItemResponse)
	return res, args.Error(1)
}

func (m *clientMock) Summarize(ctx context.Context, items []analysis.ParsedAnalysis) (*foodapi.SummaryResponse, error) {
	args := m.Called(ctx, items)
	res, _ := args.Get(0).(*foodapi.SummaryResponse)
	return res, args.Error(1)
}

func itemResponse(n int, category string) *foodapi.ItemResponse {
	return &foodapi.ItemResponse{
		Status: "success",
		Parsed: analysis.ParsedAnalysis{Category: category, ImageIndex: n},
	}
}

func TestAnalyze(t *testing.T) {
	client := new(clientMock)
	client.On("AnalyzeItem", mock.Anything, []byte("a"), 1).Return(itemResponse(1, "Mixed"), nil)
	client.On("AnalyzeItem", mock.Anything, []byte("c"), 3).Return(itemResponse(3, "Borderline"), nil)
	client.On("Summarize", mock.Anything, []analysis.ParsedAnalysis{
		{Category: "Mixed", ImageIndex: 1},
		{Category: "Borderline", ImageIndex: 3},
	}).Return(&foodapi.SummaryResponse{Synthesis: "Overall balanced."}, nil)

	var alerts alert.Recorder
	meal, err := NewService(client, &alerts).Analyze(context.Background(), [][]byte{[]byte("a"), nil, []byte("c")})
	require.NoError(t, err)

	require.Len(t, meal.Items, 2)
	assert.Equal(t, "Mixed", meal.Items[0].Parsed.Category)
	assert.Equal(t, "Borderline", meal.Items[1].Parsed.Category)
	assert.Equal(t, "Overall balanced.", meal.Summary.Synthesis)
	assert.Empty(t, alerts.Alerts())
	client.AssertExpectations(t)
}

func TestAnalyzeItems_Failure(t *testing.T) {
	client := new(clientMock)
	client.On("AnalyzeItem", mock.Anything, []byte("a"), 1).Return(itemResponse(1, "Mixed"), nil)
	client.On("AnalyzeItem", mock.Anything, []byte("b"), 2).Return(nil, errors.New("status 500"))

	var alerts alert.Recorder
	_, err := NewService(client, &alerts).AnalyzeItems(context.Background(), [][]byte{[]byte("a"), []byte("b")})
	require.Error(t, err)

	assert.Equal(t, []alert.Alert{
		{Title: alert.TitleAnalysisError, Message: "Failed to analyze item 2. Please try again."},
		{Title: alert.TitleAnalysisError, Message: "Failed to analyze the complete meal. Please try again."},
	}, alerts.Alerts())
}

func TestAnalyzeItems_FailureAlertsOnlyFailedItem(t *testing.T) {
	waitForCancel := func(args mock.Arguments) {
		<-args.Get(0).(context.Context).Done()
	}

	client := new(clientMock)
	client.On("AnalyzeItem", mock.Anything, []byte("a"), 1).Return(nil, errors.New("status 502"))
	client.On("AnalyzeItem", mock.Anything, []byte("b"), 2).Run(waitForCancel).Return(nil, context.Canceled)
	client.On("AnalyzeItem", mock.Anything, []byte("c"), 3).Run(waitForCancel).Return(nil, context.Canceled)

	var alerts alert.Recorder
	_, err := NewService(client, &alerts).AnalyzeItems(context.Background(), [][]byte{[]byte("a"), []byte("b"), []byte("c")})
	require.EqualError(t, err, "status 502")

	assert.Equal(t, []alert.Alert{
		{Title: alert.TitleAnalysisError, Message: "Failed to analyze item 1. Please try again."},
		{Title: alert.TitleAnalysisError, Message: "Failed to analyze the complete meal. Please try again."},
	}, alerts.Alerts())
}

func TestAnalyzeItems_Limits(t *testing.T) {
	s := NewService(new(clientMock), nil)

	_, err := s.AnalyzeItems(context.Background(), nil)
	assert.Error(t, err)

	_, err = s.AnalyzeItems(context.Background(), make([][]byte, MaxItems+1))
	assert.Error(t, err)

	_, err = s.AnalyzeItems(context.Background(), [][]byte{nil, {}})
	assert.Error(t, err)
}

func TestAnalyze_SummaryFailure(t *testing.T) {
	client := new(clientMock)
	client.On("AnalyzeItem", mock.Anything, mock.Anything, 1).Return(itemResponse(1, "Mixed"), nil)
	client.On("Summarize", mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))

	var alerts alert.Recorder
	_, err := NewService(client, &alerts).Analyze(context.Background(), [][]byte{[]byte("a")})
	require.Error(t, err)
	assert.Equal(t, []alert.Alert{
		{Title: alert.TitleSummaryError, Message: "Failed to summarize the meal analysis. Please try again."},
	}, alerts.Alerts())
}
