package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseItem(t *testing.T) {
	text := fixture(`
		ImageIndex: 2
		Category: Borderline
		Confidence: 76
		Items Identified: French fries, ketchup
		Caloric Content: 365 kcal
		Macronutrients: Protein 4g, Carbs 48g, Fat 17g
		Processing Level: Highly processed
		Nutritional Profile: High in refined starch
		and added salt.
		Health Implications: Occasional treat.
		Portion Considerations: Medium serving, share it.
	`)

	assert.Equal(t, ParsedAnalysis{
		Category:              "Borderline",
		Confidence:            76,
		ItemsIdentified:       "French fries, ketchup",
		CaloricContent:        "365 kcal",
		Macronutrients:        "Protein 4g, Carbs 48g, Fat 17g",
		ProcessingLevel:       "Highly processed",
		NutritionalProfile:    "High in refined starch\nand added salt.",
		HealthImplications:    "Occasional treat.",
		PortionConsiderations: "Medium serving, share it.",
		ImageIndex:            2,
	}, ParseItem(text))
}

func TestParseItem_Empty(t *testing.T) {
	assert.Equal(t, ParsedAnalysis{}, ParseItem(""))
}
