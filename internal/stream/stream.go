// Package stream reads the pseudo server-sent-event body returned by the
// analysis endpoint and separates analysis text from medication alerts.
package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
)

// Chunk types emitted by the analysis endpoint.
const (
	TypeContent         = "content"
	TypeSeparator       = "separator"
	TypeMedicationAlert = "medication_alert"
)

// Sentinel markers carried by separator chunks.
const (
	AlertStart = "MEDICATION_ALERT_START"
	AlertEnd   = "MEDICATION_ALERT_END"
)

const (
	dataPrefix = "data: "
	doneMarker = "[DONE]"
	// Lines can carry long analysis paragraphs; bufio's 64KB default is too
	// small for some responses.
	maxLineSize = 1 << 20
)

// Chunk is one decoded "data:" line.
type Chunk struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Transcript is the fully accumulated result of one stream.
type Transcript struct {
	Analysis string
	Alerts   []string // nil when the stream carried no alerts
}

// Decode reads r line by line and calls fn for every well-formed data chunk.
// Malformed chunks are logged and skipped; the terminator is ignored.
func Decode(ctx context.Context, r io.Reader, fn func(Chunk)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Text()
		if !strings.HasPrefix(line, dataPrefix) {
			continue
		}
		data := strings.TrimSpace(line[len(dataPrefix):])
		if data == "" || data == doneMarker {
			continue
		}

		var chunk Chunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			log.Warn().Err(err).Str("data", truncate(data, 120)).Msg("skipping malformed stream chunk")
			continue
		}
		fn(chunk)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read analysis stream: %w", err)
	}
	return nil
}

// Collect decodes a whole stream into a Transcript using a fresh Accumulator.
func Collect(ctx context.Context, r io.Reader) (Transcript, error) {
	acc := NewAccumulator()
	if err := Decode(ctx, r, acc.Feed); err != nil {
		return Transcript{}, err
	}
	return acc.Transcript(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
