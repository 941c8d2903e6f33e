package models

import (
	"fmt"
	"strings"
)

// Medication is one entry of a user's medication list. It is sent with every
// analysis request so the endpoint can flag interactions.
type Medication struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Dosage    string   `json:"dosage"`
	Frequency string   `json:"frequency"`
	TimeOfDay []string `json:"timeOfDay"`
	Notes     string   `json:"notes"`
}

func (m Medication) String() string {
	parts := []string{m.Name}
	if m.Dosage != "" {
		parts = append(parts, m.Dosage)
	}
	if m.Frequency != "" {
		parts = append(parts, m.Frequency)
	}
	s := strings.Join(parts, ", ")
	if len(m.TimeOfDay) > 0 {
		s = fmt.Sprintf("%s (%s)", s, strings.Join(m.TimeOfDay, ", "))
	}
	return s
}

// Normalized returns a copy that is safe to put on the wire: time of day is
// never null.
func (m Medication) Normalized() Medication {
	if m.TimeOfDay == nil {
		m.TimeOfDay = []string{}
	}
	return m
}

// ParseMedication builds a medication from the semicolon separated form
// "name; dosage; frequency; morning, evening; notes". Only the name is
// required.
func ParseMedication(s string) (Medication, error) {
	fields := strings.Split(s, ";")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	m := Medication{Name: fields[0]}
	if m.Name == "" {
		return Medication{}, fmt.Errorf("medication name is required")
	}
	if len(fields) > 1 {
		m.Dosage = fields[1]
	}
	if len(fields) > 2 {
		m.Frequency = fields[2]
	}
	if len(fields) > 3 {
		m.TimeOfDay = SplitTimes(fields[3])
	}
	if len(fields) > 4 {
		m.Notes = strings.Join(fields[4:], "; ")
	}
	return m.Normalized(), nil
}

// SplitTimes splits a comma separated time-of-day list, dropping blanks.
func SplitTimes(s string) []string {
	times := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			times = append(times, t)
		}
	}
	return times
}
