package analysis

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	leadingFloat   = regexp.MustCompile(`^[+-]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][+-]?\d+)?`)
	leadingInteger = regexp.MustCompile(`^[+-]?\d+`)
	firstNumber    = regexp.MustCompile(`\d+(?:\.\d+)?`)
	firstInteger   = regexp.MustCompile(`\d{1,3}(?:,\d{3})+\b|\d+`)
)

// ExtractNumber finds the first line containing any of the aliases
// (case-insensitive) and parses the number that follows its first colon.
// Lines whose value does not parse are skipped.
func ExtractNumber(text string, aliases ...string) (float64, bool) {
	lowered := make([]string, len(aliases))
	for i, a := range aliases {
		lowered[i] = strings.ToLower(a)
	}

	for _, line := range splitLines(text) {
		trimmed := strings.TrimSpace(line)
		if !containsAny(strings.ToLower(trimmed), lowered) {
			continue
		}
		if v, ok := valueAfterColon(trimmed, false); ok {
			return v, true
		}
	}
	return 0, false
}

// valueAfterColon parses the leading number after the first colon in line.
func valueAfterColon(line string, whole bool) (float64, bool) {
	_, rest, found := strings.Cut(line, ":")
	if !found {
		return 0, false
	}
	return parseLeadingNumber(rest, whole)
}

// parseLeadingNumber reads a number prefix the way a lenient float parser
// would ("20g" is 20). Anything unparseable, NaN or infinite is absent.
func parseLeadingNumber(s string, whole bool) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "~≈ ")

	pattern := leadingFloat
	if whole {
		pattern = leadingInteger
	}
	m := pattern.FindString(s)
	if m == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseConfidence reads the first decimal or integer token anywhere in s and
// clamps it to 0..100.
func parseConfidence(s string) (float64, bool) {
	m := firstNumber.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return math.Min(math.Max(v, 0), 100), true
}

// firstIntegerIn returns the first whole number in s. Comma thousands
// separators are accepted ("1,200 kcal" is 1200).
func firstIntegerIn(s string) (float64, bool) {
	m := firstInteger.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
