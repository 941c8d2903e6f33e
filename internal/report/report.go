// Package report renders analysis records as plain text for chat replies and
// the terminal.
package report

import (
	"fmt"
	"strings"

	"github.com/lithammer/dedent"
	"github.com/raine/platescan/internal/analysis"
)

const (
	Missing       = "-"
	NoInformation = "No information available"
)

// Band is a coarse confidence level.
type Band string

const (
	BandHigh   Band = "high"
	BandMedium Band = "medium"
	BandLow    Band = "low"
)

// ConfidenceBand buckets a 0-100 confidence.
func ConfidenceBand(confidence float64) Band {
	switch {
	case confidence >= 85:
		return BandHigh
	case confidence >= 70:
		return BandMedium
	default:
		return BandLow
	}
}

func categoryIcon(c analysis.HealthCategory) string {
	switch c {
	case analysis.CategoryClearlyHealthy:
		return "🟢"
	case analysis.CategoryBorderline:
		return "🟡"
	case analysis.CategoryMixed:
		return "🟠"
	case analysis.CategoryClearlyUnhealthy:
		return "🔴"
	default:
		return "⚪"
	}
}

func formatText(text string, a ...any) string {
	return fmt.Sprintf(strings.TrimSpace(dedent.Dedent(text)), a...)
}

func orMissing(s string) string {
	if strings.TrimSpace(s) == "" {
		return Missing
	}
	return s
}

func orNoInformation(s string) string {
	if strings.TrimSpace(s) == "" {
		return NoInformation
	}
	return s
}

// nutrientValue formats n with its unit, or Missing when absent.
func nutrientValue(ns analysis.Nutrients, n analysis.Nutrient) string {
	v, ok := ns.Get(n)
	if !ok {
		return Missing
	}
	label, _ := analysis.LabelFor(n)
	if n == analysis.Calories {
		return analysis.FormatNumber(v) + " kcal"
	}
	return analysis.FormatNumber(v) + label.Unit
}

var macroNutrients = []analysis.Nutrient{
	analysis.Protein,
	analysis.Carbs,
	analysis.Fats,
	analysis.Fiber,
}

// ItemLines splits an items-identified text into one entry per item. Text
// listing items with hyphens is split on them; otherwise the bullet items are
// used.
func ItemLines(r *analysis.Result) []string {
	if text := strings.TrimSpace(r.ItemsIdentified); text != "" {
		if !strings.Contains(text, "-") {
			return []string{text}
		}
		var items []string
		for _, part := range strings.Split(text, "-") {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
		return items
	}
	return r.Items
}

// Format renders a full analysis record.
func Format(r *analysis.Result) string {
	var b strings.Builder

	b.WriteString(formatText(`
		%s %s
		Category: %s
		Confidence: %s%% (%s)
		`,
		categoryIcon(r.Category), orMissing(r.DishName),
		r.Category,
		analysis.FormatNumber(r.Confidence), ConfidenceBand(r.Confidence),
	))

	b.WriteString("\n\nCalories: " + nutrientValue(r.Nutrients, analysis.Calories))
	for _, n := range macroNutrients {
		label, _ := analysis.LabelFor(n)
		fmt.Fprintf(&b, "\n%s: %s", label.Label, nutrientValue(r.Nutrients, n))
	}

	if micros := micronutrientLines(r.Nutrients); len(micros) > 0 {
		b.WriteString("\n\nMicronutrients:\n")
		b.WriteString(strings.Join(micros, "\n"))
	}

	b.WriteString("\n\nItems Identified:\n")
	if items := ItemLines(r); len(items) > 0 {
		for _, it := range items {
			b.WriteString("• " + it + "\n")
		}
	} else {
		b.WriteString(NoInformation + "\n")
	}

	sections := []struct {
		label string
		text  string
	}{
		{"Caloric Content", r.CaloricContent},
		{"Processing Level", r.ProcessingLevel},
		{"Nutritional Profile", r.NutritionalProfile},
		{"Health Implications", r.HealthImplications},
	}
	for _, s := range sections {
		fmt.Fprintf(&b, "\n%s:\n%s\n", s.label, orNoInformation(s.text))
	}

	if len(r.MedicationAlerts) > 0 {
		b.WriteString("\n⚠️ Medication alerts:\n")
		for _, a := range r.MedicationAlerts {
			b.WriteString("- " + a + "\n")
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func micronutrientLines(ns analysis.Nutrients) []string {
	var lines []string
	for _, n := range ns.Keys() {
		if n == analysis.Calories || isMacro(n) {
			continue
		}
		label, _ := analysis.LabelFor(n)
		lines = append(lines, fmt.Sprintf("%s: %s", label.Label, nutrientValue(ns, n)))
	}
	return lines
}

func isMacro(n analysis.Nutrient) bool {
	for _, m := range macroNutrients {
		if m == n {
			return true
		}
	}
	return false
}

// Summary renders a one-line history entry.
func Summary(r *analysis.Result) string {
	date := Missing
	if !r.Timestamp.IsZero() {
		date = r.Timestamp.Local().Format("2006-01-02 15:04")
	}
	return fmt.Sprintf("%s %s · %s · %s · %s",
		categoryIcon(r.Category),
		orMissing(r.DishName),
		nutrientValue(r.Nutrients, analysis.Calories),
		date,
		r.ID,
	)
}

// FormatHistory renders a list of history entries.
func FormatHistory(results []*analysis.Result) string {
	if len(results) == 0 {
		return "No analyses yet."
	}
	lines := make([]string, 0, len(results))
	for i, r := range results {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, Summary(r)))
	}
	return strings.Join(lines, "\n")
}

// FormatItem renders one meal-stitch item.
func FormatItem(p analysis.ParsedAnalysis, itemNumber int) string {
	return formatText(`
		Item %d: %s (%s%% confidence)
		Items Identified: %s
		Caloric Content: %s
		Macronutrients: %s
		Processing Level: %s
		Portion Considerations: %s
		`,
		itemNumber, orMissing(p.Category), analysis.FormatNumber(p.Confidence),
		orNoInformation(p.ItemsIdentified),
		orNoInformation(p.CaloricContent),
		orNoInformation(p.Macronutrients),
		orNoInformation(p.ProcessingLevel),
		orNoInformation(p.PortionConsiderations),
	)
}

// FormatMeal renders every item followed by the synthesis.
func FormatMeal(items []analysis.ParsedAnalysis, synthesis string) string {
	parts := make([]string, 0, len(items)+1)
	for i, it := range items {
		parts = append(parts, FormatItem(it, i+1))
	}
	parts = append(parts, "Meal summary:\n"+orNoInformation(synthesis))
	return strings.Join(parts, "\n\n")
}
