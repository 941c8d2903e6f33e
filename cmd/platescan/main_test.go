package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/raine/platescan/config"
	"github.com/raine/platescan/internal/analysis"
	"github.com/raine/platescan/internal/app"
	"github.com/raine/platescan/internal/foodapi"
	"github.com/raine/platescan/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type analyzerMock struct {
	mock.Mock
}

func (m *analyzerMock) AnalyzeImage(ctx context.Context, image []byte, meds []models.Medication) (*analysis.Result, error) {
	args := m.Called(ctx, image, meds)
	res, _ := args.Get(0).(*analysis.Result)
	return res, args.Error(1)
}

type stitchMock struct {
	mock.Mock
}

func (m *stitchMock) AnalyzeItem(ctx context.Context, image []byte, itemNumber int) (*foodapi.ItemResponse, error) {
	args := m.Called(ctx, image, itemNumber)
	res, _ := args.Get(0).(*foodapi.ItemResponse)
	return res, args.Error(1)
}

func (m *stitchMock) Summarize(ctx context.Context, items []analysis.ParsedAnalysis) (*foodapi.SummaryResponse, error) {
	args := m.Called(ctx, items)
	res, _ := args.Get(0).(*foodapi.SummaryResponse)
	return res, args.Error(1)
}

type testCLI struct {
	env      *env
	out      *bytes.Buffer
	errOut   *bytes.Buffer
	analyzer *analyzerMock
	stitch   *stitchMock
	dir      string
}

func setupCLI(t *testing.T) *testCLI {
	t.Helper()
	dir := t.TempDir()
	tc := &testCLI{
		out:      &bytes.Buffer{},
		errOut:   &bytes.Buffer{},
		analyzer: &analyzerMock{},
		stitch:   &stitchMock{},
		dir:      dir,
	}
	cfg := config.Config{
		Analyzer: config.AnalyzerRemote,
		Store:    config.StoreLocal,
		DBPath:   filepath.Join(dir, "platescan.db"),
		User:     config.DefaultUser,
	}
	tc.env = &env{
		out:    tc.out,
		errOut: tc.errOut,
		open: func(ctx context.Context) (*app.Services, error) {
			s, err := app.Open(ctx, cfg)
			if err != nil {
				return nil, err
			}
			s.Analyzer = tc.analyzer
			s.Stitch = tc.stitch
			return s, nil
		},
	}
	return tc
}

func (tc *testCLI) run(t *testing.T, args ...string) error {
	t.Helper()
	tc.out.Reset()
	return newCommand(tc.env).Run(context.Background(), append([]string{"platescan"}, args...))
}

func (tc *testCLI) writeImage(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(tc.dir, name)
	require.NoError(t, os.WriteFile(path, []byte("jpeg:"+name), 0600))
	return path
}

func saladResult() *analysis.Result {
	return &analysis.Result{
		Category:   analysis.CategoryClearlyHealthy,
		Confidence: 90,
		DishName:   "Greek Salad",
		Nutrients:  analysis.Nutrients{analysis.Calories: 320},
		Analysis:   "Category: Clearly Healthy",
	}
}

func TestAnalyze_PrintsReportAndSaves(t *testing.T) {
	tc := setupCLI(t)
	image := tc.writeImage(t, "salad.jpg")

	require.NoError(t, tc.run(t, "meds", "add", "--name", "Warfarin", "--dosage", "5mg", "--time", "morning,evening"))

	tc.analyzer.On("AnalyzeImage", mock.Anything, []byte("jpeg:salad.jpg"), mock.MatchedBy(func(meds []models.Medication) bool {
		return len(meds) == 1 && meds[0].Name == "Warfarin" && assert.ObjectsAreEqual([]string{"morning", "evening"}, meds[0].TimeOfDay)
	})).Return(saladResult(), nil).Once()

	require.NoError(t, tc.run(t, "analyze", "--save", image))
	assert.Contains(t, tc.out.String(), "Greek Salad")
	assert.Contains(t, tc.out.String(), "Category: Clearly Healthy")
	assert.Regexp(t, regexp.MustCompile(`Saved as [0-9a-f-]{36}`), tc.out.String())

	require.NoError(t, tc.run(t, "history", "list"))
	assert.Contains(t, tc.out.String(), "1. 🟢 Greek Salad · 320 kcal")

	tc.analyzer.AssertExpectations(t)
}

func TestAnalyze_JSON(t *testing.T) {
	tc := setupCLI(t)
	image := tc.writeImage(t, "salad.jpg")

	tc.analyzer.On("AnalyzeImage", mock.Anything, mock.Anything, mock.Anything).Return(saladResult(), nil).Once()

	require.NoError(t, tc.run(t, "analyze", "--json", image))
	assert.Contains(t, tc.out.String(), `"dishName": "Greek Salad"`)
	assert.Contains(t, tc.out.String(), `"imageRef": "`+image+`"`)

	// Without --save nothing reaches history.
	require.NoError(t, tc.run(t, "history", "list"))
	assert.Equal(t, "No saved analyses.\n", tc.out.String())
}

func TestAnalyze_Errors(t *testing.T) {
	tc := setupCLI(t)

	assert.ErrorIs(t, tc.run(t, "analyze"), errInvalidArgCount)
	assert.ErrorContains(t, tc.run(t, "analyze", filepath.Join(tc.dir, "missing.jpg")), "failed to read image")

	empty := filepath.Join(tc.dir, "empty.jpg")
	require.NoError(t, os.WriteFile(empty, nil, 0600))
	assert.ErrorContains(t, tc.run(t, "analyze", empty), "is empty")

	image := tc.writeImage(t, "salad.jpg")
	tc.analyzer.On("AnalyzeImage", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("upstream down")).Once()
	assert.ErrorContains(t, tc.run(t, "analyze", image), "analysis failed: upstream down")
}

func TestStitch(t *testing.T) {
	tc := setupCLI(t)
	rice := tc.writeImage(t, "rice.jpg")
	curry := tc.writeImage(t, "curry.jpg")

	tc.stitch.On("AnalyzeItem", mock.Anything, []byte("jpeg:rice.jpg"), 1).Return(&foodapi.ItemResponse{
		Parsed: analysis.ParsedAnalysis{Category: "Borderline", Confidence: 80, ItemsIdentified: "White rice"},
	}, nil).Once()
	tc.stitch.On("AnalyzeItem", mock.Anything, []byte("jpeg:curry.jpg"), 2).Return(&foodapi.ItemResponse{
		Parsed: analysis.ParsedAnalysis{Category: "Mixed", Confidence: 75, ItemsIdentified: "Chicken curry"},
	}, nil).Once()
	tc.stitch.On("Summarize", mock.Anything, mock.Anything).Return(&foodapi.SummaryResponse{
		Synthesis: "A filling but heavy meal.",
	}, nil).Once()

	require.NoError(t, tc.run(t, "stitch", rice, curry))
	out := tc.out.String()
	assert.Contains(t, out, "Item 1: Borderline (80% confidence)")
	assert.Contains(t, out, "Item 2: Mixed (75% confidence)")
	assert.Contains(t, out, "Meal summary:\nA filling but heavy meal.")
	tc.stitch.AssertExpectations(t)
}

func TestStitch_ItemFailureWritesAlerts(t *testing.T) {
	tc := setupCLI(t)
	rice := tc.writeImage(t, "rice.jpg")

	tc.stitch.On("AnalyzeItem", mock.Anything, mock.Anything, 1).Return(nil, errors.New("timeout")).Once()

	assert.ErrorContains(t, tc.run(t, "stitch", rice), "meal analysis failed")
	assert.Contains(t, tc.errOut.String(), "Analysis Error: Failed to analyze item 1. Please try again.")
	assert.Contains(t, tc.errOut.String(), "Analysis Error: Failed to analyze the complete meal. Please try again.")
}

func TestStitch_ArgumentCount(t *testing.T) {
	tc := setupCLI(t)

	assert.ErrorContains(t, tc.run(t, "stitch"), "at least one image")

	paths := make([]string, 0, 6)
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		paths = append(paths, tc.writeImage(t, name+".jpg"))
	}
	assert.ErrorContains(t, tc.run(t, append([]string{"stitch"}, paths...)...), "too many images: 6 (max 5)")
}

func TestMeds(t *testing.T) {
	tc := setupCLI(t)

	require.NoError(t, tc.run(t, "meds", "list"))
	assert.Equal(t, "No medications.\n", tc.out.String())

	require.NoError(t, tc.run(t, "meds", "add", "--name", "Metformin", "--dosage", "500mg", "--frequency", "twice daily", "--notes", "with food"))
	m := regexp.MustCompile(`Added Metformin, 500mg, twice daily \(id ([0-9a-f-]{36})\)`).FindStringSubmatch(tc.out.String())
	require.Len(t, m, 2)
	id := m[1]

	require.NoError(t, tc.run(t, "meds", "list"))
	assert.Equal(t, id+"  Metformin, 500mg, twice daily\n    with food\n", tc.out.String())

	require.NoError(t, tc.run(t, "meds", "remove", id))
	assert.Equal(t, "Removed "+id+"\n", tc.out.String())

	assert.Error(t, tc.run(t, "meds", "remove", id))
	assert.Error(t, tc.run(t, "meds", "add", "--name", "  "))
}

func TestHistoryDelete(t *testing.T) {
	tc := setupCLI(t)
	image := tc.writeImage(t, "salad.jpg")

	tc.analyzer.On("AnalyzeImage", mock.Anything, mock.Anything, mock.Anything).Return(saladResult(), nil).Once()
	require.NoError(t, tc.run(t, "analyze", "--save", image))
	id := regexp.MustCompile(`Saved as (\S+)`).FindStringSubmatch(tc.out.String())[1]

	require.NoError(t, tc.run(t, "history", "delete", id))
	assert.Equal(t, "Deleted "+id+"\n", tc.out.String())

	assert.Error(t, tc.run(t, "history", "delete", id))
	assert.ErrorContains(t, tc.run(t, "history", "list", "--limit", "0"), "--limit")
}
