package foodapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/raine/platescan/internal/analysis"
	"github.com/raine/platescan/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(ts *httptest.Server) *Client {
	return NewClient(ClientOpts{
		CalculatorURL:  ts.URL + "/api/calculator",
		StitchBaseURL:  ts.URL + "/stitch",
		BackendBaseURL: ts.URL,
	})
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func TestAnalyze(t *testing.T) {
	var req *http.Request
	var body []byte
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req = r
		body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, strings.Join([]string{
			`data: {"type":"content","content":"Category: Mixed\n"}`,
			`data: {"type":"separator","content":"MEDICATION_ALERT_START"}`,
			`data: {"type":"medication_alert","content":"Watch sodium with lisinopril"}`,
			`data: {"type":"separator","content":"MEDICATION_ALERT_END"}`,
			`data: {"type":"content","content":"Calories: 450\n"}`,
			`data: [DONE]`,
		}, "\n"))
	}))
	defer ts.Close()

	client := newTestClient(ts)
	meds := []models.Medication{{ID: "1", Name: "Lisinopril"}}
	transcript, err := client.Analyze(context.Background(), []byte("img"), meds)
	require.NoError(t, err)

	assert.Equal(t, "/api/calculator", req.URL.Path)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "Category: Mixed\nCalories: 450\n", transcript.Analysis)
	assert.Equal(t, []string{"Watch sodium with lisinopril"}, transcript.Alerts)

	var envelope analysisEnvelope
	require.NoError(t, json.Unmarshal(body, &envelope))
	require.Len(t, envelope.Messages, 1)
	assert.Equal(t, "user", envelope.Messages[0].Role)
	assert.NotEmpty(t, envelope.Messages[0].ID)

	var content struct {
		Type        string           `json:"type"`
		Image       string           `json:"image"`
		Medications []map[string]any `json:"medications"`
	}
	require.NoError(t, json.Unmarshal([]byte(envelope.Messages[0].Content), &content))
	assert.Equal(t, "analysis_request", content.Type)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("img")), content.Image)
	require.Len(t, content.Medications, 1)
	assert.Equal(t, "Lisinopril", content.Medications[0]["name"])
	assert.Equal(t, "", content.Medications[0]["notes"])
	assert.Equal(t, []any{}, content.Medications[0]["timeOfDay"])
}

func TestAnalyze_NoMedicationsSendsEmptyList(t *testing.T) {
	var body []byte
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		io.WriteString(w, "data: [DONE]\n")
	}))
	defer ts.Close()

	_, err := newTestClient(ts).Analyze(context.Background(), []byte("img"), nil)
	require.NoError(t, err)

	var envelope analysisEnvelope
	require.NoError(t, json.Unmarshal(body, &envelope))
	assert.Contains(t, envelope.Messages[0].Content, `"medications":[]`)
}

func TestAnalyze_ErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "upstream timed out")
	}))
	defer ts.Close()

	_, err := newTestClient(ts).Analyze(context.Background(), []byte("img"), nil)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream timed out", apiErr.Message)
	assert.Contains(t, err.Error(), "502")
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"error field", `{"error":"bad image"}`, "bad image"},
		{"message field", `{"message":"quota exceeded"}`, "quota exceeded"},
		{"non-string error", `{"error":{"code":1},"message":"nested"}`, "nested"},
		{"plain text", "  service unavailable \n", "service unavailable"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorMessage([]byte(tt.body)))
		})
	}
}

func TestErrorMessage_Truncates(t *testing.T) {
	msg := errorMessage([]byte(strings.Repeat("x", 1000)))
	assert.Len(t, msg, maxErrorMessage+3)
}

func TestAnalyzeItem(t *testing.T) {
	var req *http.Request
	var body []byte
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req = r
		body, _ = io.ReadAll(r.Body)
		writeJSON(w, http.StatusOK, `{"status":"success","analysis":"Category: Borderline\nConfidence: 65%\nItems Identified: fries\nImageIndex: 2","timestamp":"2024-05-01T10:00:00Z"}`)
	}))
	defer ts.Close()

	res, err := newTestClient(ts).AnalyzeItem(context.Background(), []byte("img"), 2)
	require.NoError(t, err)

	assert.Equal(t, "/stitch/llm-2", req.URL.Path)
	assert.Equal(t, "success", res.Status)
	assert.Equal(t, analysis.ParsedAnalysis{
		Category:        "Borderline",
		Confidence:      65,
		ItemsIdentified: "fries",
		ImageIndex:      2,
	}, res.Parsed)

	var envelope analysisEnvelope
	require.NoError(t, json.Unmarshal(body, &envelope))
	assert.Contains(t, envelope.Messages[0].Content, `data:image/jpeg;base64,`)
	assert.NotContains(t, envelope.Messages[0].Content, "medications")
}

func TestAnalyzeItem_Failure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, `{"error":"model overloaded"}`)
	}))
	defer ts.Close()

	_, err := newTestClient(ts).AnalyzeItem(context.Background(), []byte("img"), 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to analyze item 3")
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestAnalyzeItem_InvalidNumber(t *testing.T) {
	client := NewClient(ClientOpts{})
	_, err := client.AnalyzeItem(context.Background(), []byte("img"), 0)
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	var req *http.Request
	var body []byte
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req = r
		body, _ = io.ReadAll(r.Body)
		writeJSON(w, http.StatusOK, `{"status":"success","synthesis":"A balanced meal overall.","timestamp":"t"}`)
	}))
	defer ts.Close()

	items := []analysis.ParsedAnalysis{
		{Category: "Mixed", Confidence: 80, ItemsIdentified: "rice", ImageIndex: 1},
		{Category: "Clearly Healthy", ItemsIdentified: "salad", PortionConsiderations: "large"},
	}
	res, err := newTestClient(ts).Summarize(context.Background(), items)
	require.NoError(t, err)
	assert.Equal(t, "/stitch/summarize", req.URL.Path)
	assert.Equal(t, "A balanced meal overall.", res.Synthesis)

	var sent summaryRequest
	require.NoError(t, json.Unmarshal(body, &sent))
	var sentItems []map[string]any
	require.NoError(t, json.Unmarshal([]byte(sent.Responses.Items), &sentItems))
	require.Len(t, sentItems, 2)
	assert.Equal(t, "rice", sentItems[0]["itemsIdentified"])
	assert.Equal(t, "large", sentItems[1]["portionConsiderations"])
	assert.NotContains(t, sentItems[0], "confidence")
	assert.NotContains(t, sentItems[0], "imageIndex")
}

func TestDataURL(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n0000")
	assert.True(t, strings.HasPrefix(DataURL(png), "data:image/png;base64,"))
	assert.True(t, strings.HasPrefix(DataURL([]byte("text")), "data:image/jpeg;base64,"))
}

func TestFlexID(t *testing.T) {
	var v struct {
		A flexID `json:"a"`
		B flexID `json:"b"`
		C flexID `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"abc","b":1717171717171,"c":null}`), &v))
	assert.Equal(t, flexID("abc"), v.A)
	assert.Equal(t, flexID("1717171717171"), v.B)
	assert.Equal(t, flexID(""), v.C)
}
