// Package foodapi talks to the hosted analysis endpoints and the app backend.
package foodapi

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultCalculatorURL  = "https://feature1-food.vercel.app/api/calculator"
	DefaultStitchBaseURL  = "https://image-stitch.vercel.app/api"
	DefaultBackendBaseURL = "https://food-app-backend-psi-eosin.vercel.app"
	DefaultTimeout        = 120 * time.Second
)

type ClientOpts struct {
	CalculatorURL  string
	StitchBaseURL  string
	BackendBaseURL string
	Timeout        time.Duration
}

type Client struct {
	httpClient     *resty.Client
	calculatorURL  string
	stitchBaseURL  string
	backendBaseURL string
}

func NewClient(opts ClientOpts) *Client {
	c := Client{
		calculatorURL:  DefaultCalculatorURL,
		stitchBaseURL:  DefaultStitchBaseURL,
		backendBaseURL: DefaultBackendBaseURL,
	}
	if opts.CalculatorURL != "" {
		c.calculatorURL = opts.CalculatorURL
	}
	if opts.StitchBaseURL != "" {
		c.stitchBaseURL = strings.TrimRight(opts.StitchBaseURL, "/")
	}
	if opts.BackendBaseURL != "" {
		c.backendBaseURL = strings.TrimRight(opts.BackendBaseURL, "/")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c.httpClient = resty.New().
		SetDebug(false).
		SetTimeout(timeout).
		SetHeaders(
			map[string]string{
				"Accept":     "application/json",
				"User-Agent": "platescan",
			},
		)

	return &c
}

func (c *Client) req(ctx context.Context, result any) *resty.Request {
	request := c.httpClient.
		NewRequest().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json")

	if result != nil {
		request.SetResult(result)
	}

	return request
}

// APIError is returned for responses with a status code above 399.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed: %s %s (status: %d)", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("request failed: %s %s (status: %d): %s", e.Method, e.URL, e.StatusCode, e.Message)
}

// handleError turns a failing response (>399 status code) into an *APIError.
// Without this, failing responses would have nil error.
func handleError(res *resty.Response, err error) (*resty.Response, error) {
	if err != nil {
		return res, err
	}
	if res.IsError() {
		return res, newAPIError(res, res.Body())
	}

	return res, nil
}

func newAPIError(res *resty.Response, body []byte) *APIError {
	return &APIError{
		Method:     res.Request.Method,
		URL:        res.Request.URL,
		StatusCode: res.StatusCode(),
		Message:    errorMessage(body),
	}
}

const maxErrorMessage = 300

// errorMessage pulls a readable message out of an error body. JSON bodies with
// an "error" or "message" field use that field; anything else is used as text.
func errorMessage(body []byte) string {
	var payload struct {
		Error   any    `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if s, ok := payload.Error.(string); ok && s != "" {
			return s
		}
		if payload.Message != "" {
			return payload.Message
		}
	}

	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorMessage {
		msg = msg[:maxErrorMessage] + "..."
	}
	return msg
}

// flexID accepts both numeric and string ids; the backend returns either
// depending on the table.
type flexID string

func (id *flexID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*id = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", b, err)
	}
	*id = flexID(n.String())
	return nil
}
