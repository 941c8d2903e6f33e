package stream

import "strings"

// SplitInline turns a complete text that carries its alert block inline,
// between sentinel lines, into the chunk sequence the endpoint would have
// streamed. Each non-empty line inside the block becomes one alert.
func SplitInline(text string) []Chunk {
	var (
		chunks []Chunk
		inside bool
	)

	for _, line := range strings.SplitAfter(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.Contains(trimmed, AlertStart):
			inside = true
			chunks = append(chunks, Chunk{Type: TypeSeparator, Content: AlertStart})
		case strings.Contains(trimmed, AlertEnd):
			inside = false
			chunks = append(chunks, Chunk{Type: TypeSeparator, Content: AlertEnd})
		case inside:
			alert := strings.TrimSpace(strings.TrimLeft(trimmed, "-•*"))
			if alert != "" {
				chunks = append(chunks, Chunk{Type: TypeMedicationAlert, Content: alert})
			}
		default:
			chunks = append(chunks, Chunk{Type: TypeContent, Content: line})
		}
	}

	return chunks
}

// CollectInline is Collect for text produced without a stream.
func CollectInline(text string) Transcript {
	acc := NewAccumulator()
	for _, c := range SplitInline(text) {
		acc.Feed(c)
	}
	return acc.Transcript()
}
