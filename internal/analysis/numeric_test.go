package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractNumber(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		aliases []string
		want    float64
		wantOK  bool
	}{
		{"plain value", "Protein: 20", []string{"protein"}, 20, true},
		{"unit suffix", "Protein: 20.5g", []string{"protein"}, 20.5, true},
		{"case-insensitive alias", "VITAMIN B1: 0.4 mg", []string{"vitamin b1", "thiamine"}, 0.4, true},
		{"second alias", "Thiamine: 1.1", []string{"vitamin b1", "thiamine"}, 1.1, true},
		{"approximate marker", "Calcium: ~120 mg", []string{"calcium"}, 120, true},
		{"malformed value is absent", "Iron: unknown", []string{"iron"}, 0, false},
		{"no colon is absent", "Iron is present", []string{"iron"}, 0, false},
		{"missing alias", "Zinc: 3", []string{"iron"}, 0, false},
		{"skips malformed line", "Iron: n/a\nIron: 3.2", []string{"iron"}, 3.2, true},
		{"splits on first colon only", "Sodium: 400: estimated", []string{"sodium"}, 400, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractNumber(tt.text, tt.aliases...)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLeadingNumber(t *testing.T) {
	v, ok := parseLeadingNumber(" 450 kcal", true)
	assert.True(t, ok)
	assert.Equal(t, 450.0, v)

	v, ok = parseLeadingNumber("450.9", true)
	assert.True(t, ok)
	assert.Equal(t, 450.0, v)

	_, ok = parseLeadingNumber("NaN", false)
	assert.False(t, ok)

	_, ok = parseLeadingNumber("", false)
	assert.False(t, ok)
}

func TestParseConfidence(t *testing.T) {
	v, ok := parseConfidence("about 72.5%")
	assert.True(t, ok)
	assert.Equal(t, 72.5, v)

	v, ok = parseConfidence("150")
	assert.True(t, ok)
	assert.Equal(t, 100.0, v)

	_, ok = parseConfidence("high")
	assert.False(t, ok)
}

func TestFirstIntegerIn(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOk bool
	}{
		{"around 700 kcal", 700, true},
		{"approx 1,200 kcal", 1200, true},
		{"12,345,678 total", 12345678, true},
		{"1,2345 odd grouping", 1, true},
		{"no numbers here", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := firstIntegerIn(tt.in)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
