package analysis

import (
	"strings"

	"github.com/rs/zerolog/log"
)

// Empty returns the sentinel result used when a response carried no text.
func Empty() *Result {
	return &Result{
		Category:   CategoryUnknown,
		Confidence: 0,
		Analysis:   NoAnalysisText,
		Nutrients:  Nutrients{},
	}
}

// Parse converts a section-labeled analysis text into a Result. It never
// fails: every field that cannot be found or parsed is left absent, and
// Category/Confidence fall back to Unknown/0.
//
// Parse is pure. ID, Timestamp and MedicationAlerts are left for the caller.
func Parse(text string) *Result {
	if strings.TrimSpace(text) == "" {
		log.Debug().Msg("empty analysis text")
		return Empty()
	}

	r := &Result{
		Category:     CategoryUnknown,
		Analysis:     strings.TrimSpace(text),
		FullResponse: text,
		Nutrients:    Nutrients{},
	}

	lines := splitLines(text)
	var (
		rawCategory      string
		seenCategory     bool
		seenConfidence   bool
		explicitCalories bool
	)

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		lower := strings.ToLower(trimmed)

		if section, ok := matchSection(lower); ok {
			value, _ := afterLabel(trimmed, section.key())
			value = strings.TrimSpace(value)
			switch section {
			case SectionCategory:
				if !seenCategory {
					rawCategory = strings.Trim(value, " *_")
					seenCategory = true
				}
			case SectionConfidence:
				if !seenConfidence {
					if v, ok := parseConfidence(value); ok {
						r.Confidence = v
						seenConfidence = true
					}
				}
			}
			continue
		}

		label, ok := matchNutrient(lower)
		if !ok {
			continue
		}
		if _, set := r.Nutrients[label.Nutrient]; set {
			continue
		}
		if v, ok := valueAfterColon(trimmed, label.Whole); ok {
			r.Nutrients[label.Nutrient] = v
			if label.Nutrient == Calories {
				explicitCalories = true
			}
		}
	}

	r.Category = NormalizeCategory(rawCategory)

	r.ItemsIdentified = section(text, SectionItemsIdentified)
	r.CaloricContent = section(text, SectionCaloricContent)
	r.Macronutrients = section(text, SectionMacronutrients)
	r.ProcessingLevel = section(text, SectionProcessingLevel)
	r.NutritionalProfile = section(text, SectionNutritionalProfile)
	r.HealthImplications = section(text, SectionHealthImplications)

	if !explicitCalories && r.CaloricContent != "" {
		if v, ok := firstIntegerIn(r.CaloricContent); ok {
			r.Nutrients[Calories] = v
		}
	}

	if r.Macronutrients == "" {
		r.Macronutrients = BuildMacronutrients(r.Nutrients)
	}

	r.DishName, _ = labelValue(lines, string(SectionDishName))
	r.Items = bulletItems(lines)
	r.Description = withoutDishName(lines)

	return r
}

// Build parses text and attaches medication alerts. Alerts are carried out of
// band and never come from the labeled text itself.
func Build(text string, alerts []string) *Result {
	r := Parse(text)
	if len(alerts) > 0 {
		r.MedicationAlerts = append([]string(nil), alerts...)
	}
	return r
}

func section(text string, s Section) string {
	v, _ := ExtractSection(text, string(s))
	return v
}

func bulletItems(lines []string) []string {
	var items []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "•") {
			continue
		}
		if item := strings.TrimSpace(strings.TrimPrefix(trimmed, "•")); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// withoutDishName returns the text minus its first Dish Name line.
func withoutDishName(lines []string) string {
	key := SectionDishName.key()
	out := make([]string, 0, len(lines))
	removed := false
	for _, line := range lines {
		if !removed && strings.Contains(strings.ToLower(line), key) {
			removed = true
			continue
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
