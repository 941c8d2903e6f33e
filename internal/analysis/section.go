package analysis

import (
	"regexp"
	"strings"
)

// headerPattern matches a capitalized word immediately followed by a colon,
// which starts a new section.
var headerPattern = regexp.MustCompile(`^[A-Z][a-z]+:`)

// ExtractSection returns the text that belongs to label in text. The value
// may start on the label line and continue over following lines until a blank
// line or the next section header. Lines are trimmed and joined with "\n".
//
// The second return value is false only when the label never occurs.
func ExtractSection(text, label string) (string, bool) {
	key := strings.ToLower(label) + ":"
	lines := splitLines(text)

	for i, line := range lines {
		first, ok := afterLabel(strings.TrimSpace(line), key)
		if !ok {
			continue
		}

		var parts []string
		if first = strings.TrimSpace(first); first != "" {
			parts = append(parts, first)
		}
		for _, next := range lines[i+1:] {
			next = strings.TrimSpace(next)
			if next == "" || isSectionHeader(next) {
				break
			}
			parts = append(parts, next)
		}
		return strings.TrimSpace(strings.Join(parts, "\n")), true
	}

	return "", false
}

// isSectionHeader reports whether a trimmed line opens a new section: either a
// single capitalized word followed by a colon or any known section label.
func isSectionHeader(line string) bool {
	if headerPattern.MatchString(line) {
		return true
	}
	lower := strings.ToLower(line)
	for _, s := range sections {
		if strings.HasPrefix(lower, s.key()) {
			return true
		}
	}
	return false
}

// labelValue returns the remainder of the first line containing label + ":".
func labelValue(lines []string, label string) (string, bool) {
	key := strings.ToLower(label) + ":"
	for _, line := range lines {
		if v, ok := afterLabel(strings.TrimSpace(line), key); ok {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}

// afterLabel returns what follows the case-insensitive key in line. The
// result is a slice of line itself, so the value keeps its original bytes.
func afterLabel(line, key string) (string, bool) {
	idx := indexFold(line, key)
	if idx < 0 {
		return "", false
	}
	return line[idx+len(key):], true
}

// indexFold is strings.Index with case folding. Offsets are in s, which
// lowercasing s first would not guarantee.
func indexFold(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(substr)], substr) {
			return i
		}
	}
	return -1
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
