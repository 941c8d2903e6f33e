// Package alert carries user-facing failure notices from library code to
// whichever surface is showing results.
package alert

import (
	"sync"

	"github.com/rs/zerolog/log"
)

const (
	TitleError         = "Error"
	TitleAnalysisError = "Analysis Error"
	TitleSummaryError  = "Summary Error"
)

// User-facing failure messages.
const (
	MsgAnalyzeImage  = "Failed to analyze image. Please try again."
	MsgAnalyzeItem   = "Failed to analyze item %d. Please try again."
	MsgAnalyzeMeal   = "Failed to analyze the complete meal. Please try again."
	MsgSummarizeMeal = "Failed to summarize the meal analysis. Please try again."
)

// Alert is one notice for the user.
type Alert struct {
	Title   string
	Message string
}

// Sink receives alerts. Implementations must be safe for concurrent use.
type Sink interface {
	Alert(a Alert)
}

// Func adapts a function to Sink.
type Func func(a Alert)

func (f Func) Alert(a Alert) { f(a) }

// LogSink writes alerts to the log. It is the default when no surface is
// attached.
type LogSink struct{}

func (LogSink) Alert(a Alert) {
	log.Warn().Str("title", a.Title).Str("message", a.Message).Msg("user alert")
}

// Recorder keeps every alert it receives.
type Recorder struct {
	mu     sync.Mutex
	alerts []Alert
}

func (r *Recorder) Alert(a Alert) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, a)
}

// Alerts returns a copy of the recorded alerts.
func (r *Recorder) Alerts() []Alert {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Alert(nil), r.alerts...)
}

// OrLog returns s, or a LogSink when s is nil.
func OrLog(s Sink) Sink {
	if s == nil {
		return LogSink{}
	}
	return s
}
