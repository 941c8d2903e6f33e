package analysis

import (
	"fmt"
	"strconv"
	"strings"
)

var macroOrder = []struct {
	nutrient Nutrient
	label    string
}{
	{Protein, "Protein"},
	{Carbs, "Carbohydrates"},
	{Fats, "Fats"},
	{Fiber, "Fiber"},
}

// BuildMacronutrients synthesizes a macronutrient summary from the individual
// macro values when the response had no Macronutrients section. Returns ""
// when no macro is present.
func BuildMacronutrients(n Nutrients) string {
	var lines []string
	for _, m := range macroOrder {
		if v, ok := n.Get(m.nutrient); ok {
			lines = append(lines, fmt.Sprintf("%s: %sg", m.label, FormatNumber(v)))
		}
	}
	return strings.Join(lines, "\n")
}

// FormatNumber renders v without trailing zeros (20 -> "20", 20.5 -> "20.5").
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
