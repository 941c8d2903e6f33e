package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMedication(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Medication
	}{
		{
			name:  "name only",
			input: "Metformin",
			want:  Medication{Name: "Metformin", TimeOfDay: []string{}},
		},
		{
			name:  "all fields",
			input: "Warfarin; 5mg; daily; morning, evening; avoid leafy greens",
			want: Medication{
				Name:      "Warfarin",
				Dosage:    "5mg",
				Frequency: "daily",
				TimeOfDay: []string{"morning", "evening"},
				Notes:     "avoid leafy greens",
			},
		},
		{
			name:  "notes keep semicolons",
			input: "Aspirin;;;; take with food; not on empty stomach",
			want: Medication{
				Name:      "Aspirin",
				TimeOfDay: []string{},
				Notes:     "take with food; not on empty stomach",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMedication(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMedication_RequiresName(t *testing.T) {
	_, err := ParseMedication(" ; 5mg")
	assert.Error(t, err)
}

func TestMedicationString(t *testing.T) {
	m := Medication{Name: "Warfarin", Dosage: "5mg", TimeOfDay: []string{"morning"}}
	assert.Equal(t, "Warfarin, 5mg (morning)", m.String())
}
