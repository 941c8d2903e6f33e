package analysis

import "strings"

// The label vocabulary below is the contract with the upstream prompt. When
// the prompt changes wording, this is the only file that should need edits.

// Section is a labeled free-text block in an analysis response.
type Section string

const (
	SectionCategory              Section = "Category"
	SectionConfidence            Section = "Confidence"
	SectionDishName              Section = "Dish Name"
	SectionItemsIdentified       Section = "Items Identified"
	SectionCaloricContent        Section = "Caloric Content"
	SectionMacronutrients        Section = "Macronutrients"
	SectionProcessingLevel       Section = "Processing Level"
	SectionNutritionalProfile    Section = "Nutritional Profile"
	SectionHealthImplications    Section = "Health Implications"
	SectionPortionConsiderations Section = "Portion Considerations"
	SectionImageIndex            Section = "ImageIndex"
)

// sections is checked before any nutrient alias, so a section header line is
// never read as a number ("Health Implications: high in sodium").
var sections = []Section{
	SectionCategory,
	SectionConfidence,
	SectionDishName,
	SectionCaloricContent,
	SectionItemsIdentified,
	SectionMacronutrients,
	SectionProcessingLevel,
	SectionNutritionalProfile,
	SectionHealthImplications,
	SectionPortionConsiderations,
	SectionImageIndex,
}

func (s Section) key() string {
	return strings.ToLower(string(s)) + ":"
}

// Nutrient identifies a numeric field. The value doubles as the wire key used
// by the history backend.
type Nutrient string

const (
	Calories   Nutrient = "calories"
	Protein    Nutrient = "protein"
	Carbs      Nutrient = "carbs"
	Fats       Nutrient = "fats"
	Fiber      Nutrient = "fiber"
	VitaminA   Nutrient = "vitamin_a"
	VitaminC   Nutrient = "vitamin_c"
	VitaminD   Nutrient = "vitamin_d"
	VitaminE   Nutrient = "vitamin_e"
	VitaminK   Nutrient = "vitamin_k"
	VitaminB1  Nutrient = "vitamin_b1"
	VitaminB2  Nutrient = "vitamin_b2"
	VitaminB3  Nutrient = "vitamin_b3"
	VitaminB6  Nutrient = "vitamin_b6"
	VitaminB12 Nutrient = "vitamin_b12"
	Folate     Nutrient = "folate"
	Calcium    Nutrient = "calcium"
	Iron       Nutrient = "iron"
	Magnesium  Nutrient = "magnesium"
	Phosphorus Nutrient = "phosphorus"
	Potassium  Nutrient = "potassium"
	Sodium     Nutrient = "sodium"
	Zinc       Nutrient = "zinc"
	Copper     Nutrient = "copper"
	Manganese  Nutrient = "manganese"
	Selenium   Nutrient = "selenium"
)

// NutrientLabel maps a nutrient to the lowercase substrings that identify its
// line in a response.
type NutrientLabel struct {
	Nutrient Nutrient
	Label    string // display label
	Unit     string
	Aliases  []string
	Whole    bool // integer prefix only
}

// nutrientVocabulary is evaluated top to bottom and the first alias hit
// claims the line. B12 sits before B1 because "vitamin b1" is a prefix of it.
var nutrientVocabulary = []NutrientLabel{
	{Nutrient: Calories, Label: "Calories", Unit: "kcal", Aliases: []string{"calories:"}, Whole: true},
	{Nutrient: Protein, Label: "Protein", Unit: "g", Aliases: []string{"protein"}},
	{Nutrient: Carbs, Label: "Carbohydrates", Unit: "g", Aliases: []string{"carbohydrate", "carbs"}},
	{Nutrient: Fats, Label: "Fats", Unit: "g", Aliases: []string{"fat"}},
	{Nutrient: Fiber, Label: "Fiber", Unit: "g", Aliases: []string{"fiber", "fibre"}},
	{Nutrient: VitaminA, Label: "Vitamin A", Unit: "mcg", Aliases: []string{"vitamin a"}},
	{Nutrient: VitaminC, Label: "Vitamin C", Unit: "mg", Aliases: []string{"vitamin c"}},
	{Nutrient: VitaminD, Label: "Vitamin D", Unit: "mcg", Aliases: []string{"vitamin d"}},
	{Nutrient: VitaminE, Label: "Vitamin E", Unit: "mg", Aliases: []string{"vitamin e"}},
	{Nutrient: VitaminK, Label: "Vitamin K", Unit: "mcg", Aliases: []string{"vitamin k"}},
	{Nutrient: VitaminB12, Label: "Vitamin B12", Unit: "mcg", Aliases: []string{"vitamin b12", "cobalamin"}},
	{Nutrient: VitaminB1, Label: "Vitamin B1", Unit: "mg", Aliases: []string{"vitamin b1", "thiamine", "thiamin"}},
	{Nutrient: VitaminB2, Label: "Vitamin B2", Unit: "mg", Aliases: []string{"vitamin b2", "riboflavin"}},
	{Nutrient: VitaminB3, Label: "Vitamin B3", Unit: "mg", Aliases: []string{"vitamin b3", "niacin"}},
	{Nutrient: VitaminB6, Label: "Vitamin B6", Unit: "mg", Aliases: []string{"vitamin b6", "pyridoxine"}},
	{Nutrient: Folate, Label: "Folate", Unit: "mcg", Aliases: []string{"folate", "folic acid"}},
	{Nutrient: Calcium, Label: "Calcium", Unit: "mg", Aliases: []string{"calcium"}},
	{Nutrient: Iron, Label: "Iron", Unit: "mg", Aliases: []string{"iron"}},
	{Nutrient: Magnesium, Label: "Magnesium", Unit: "mg", Aliases: []string{"magnesium"}},
	{Nutrient: Phosphorus, Label: "Phosphorus", Unit: "mg", Aliases: []string{"phosphorus"}},
	{Nutrient: Potassium, Label: "Potassium", Unit: "mg", Aliases: []string{"potassium"}},
	{Nutrient: Sodium, Label: "Sodium", Unit: "mg", Aliases: []string{"sodium"}},
	{Nutrient: Zinc, Label: "Zinc", Unit: "mg", Aliases: []string{"zinc"}},
	{Nutrient: Copper, Label: "Copper", Unit: "mg", Aliases: []string{"copper"}},
	{Nutrient: Manganese, Label: "Manganese", Unit: "mg", Aliases: []string{"manganese"}},
	{Nutrient: Selenium, Label: "Selenium", Unit: "mcg", Aliases: []string{"selenium"}},
}

// Vocabulary returns the nutrient labels in evaluation order.
func Vocabulary() []NutrientLabel {
	out := make([]NutrientLabel, len(nutrientVocabulary))
	copy(out, nutrientVocabulary)
	return out
}

// LabelFor returns the vocabulary entry for n.
func LabelFor(n Nutrient) (NutrientLabel, bool) {
	for _, l := range nutrientVocabulary {
		if l.Nutrient == n {
			return l, true
		}
	}
	return NutrientLabel{}, false
}

// AllNutrients returns every known nutrient in vocabulary order.
func AllNutrients() []Nutrient {
	out := make([]Nutrient, len(nutrientVocabulary))
	for i, l := range nutrientVocabulary {
		out[i] = l.Nutrient
	}
	return out
}

func nutrientRank(n Nutrient) int {
	for i, l := range nutrientVocabulary {
		if l.Nutrient == n {
			return i
		}
	}
	return len(nutrientVocabulary)
}

// matchSection reports which section label, if any, appears in the
// lowercased line.
func matchSection(lower string) (Section, bool) {
	for _, s := range sections {
		if strings.Contains(lower, s.key()) {
			return s, true
		}
	}
	return "", false
}

// matchNutrient returns the first vocabulary entry with an alias in the
// lowercased line.
func matchNutrient(lower string) (NutrientLabel, bool) {
	for _, l := range nutrientVocabulary {
		if containsAny(lower, l.Aliases) {
			return l, true
		}
	}
	return NutrientLabel{}, false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
