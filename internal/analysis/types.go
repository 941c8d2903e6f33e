package analysis

import (
	"sort"
	"time"
)

// HealthCategory is the normalized health verdict for a meal.
type HealthCategory string

const (
	CategoryClearlyHealthy   HealthCategory = "Clearly Healthy"
	CategoryBorderline       HealthCategory = "Borderline"
	CategoryMixed            HealthCategory = "Mixed"
	CategoryClearlyUnhealthy HealthCategory = "Clearly Unhealthy"
	CategoryUnknown          HealthCategory = "Unknown"
)

// NoAnalysisText is used as the analysis body when the response was empty.
const NoAnalysisText = "No analysis available"

// Nutrients holds the numeric fields that were found in a response.
// A missing key means the value was absent or unparseable.
type Nutrients map[Nutrient]float64

// Get returns the value for n and whether it was present.
func (n Nutrients) Get(key Nutrient) (float64, bool) {
	v, ok := n[key]
	return v, ok
}

// Keys returns the present nutrients in vocabulary order.
func (n Nutrients) Keys() []Nutrient {
	keys := make([]Nutrient, 0, len(n))
	for k := range n {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return nutrientRank(keys[i]) < nutrientRank(keys[j])
	})
	return keys
}

// Result is the typed record produced from one analysis response.
type Result struct {
	ID        string    `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
	ImageRef  string    `json:"imageRef,omitempty"`

	Category   HealthCategory `json:"category"`
	Confidence float64        `json:"confidence"`

	DishName    string   `json:"dishName,omitempty"`
	Items       []string `json:"items,omitempty"`
	Description string   `json:"description,omitempty"`

	ItemsIdentified    string `json:"itemsIdentified,omitempty"`
	CaloricContent     string `json:"caloricContent,omitempty"`
	Macronutrients     string `json:"macronutrients,omitempty"`
	ProcessingLevel    string `json:"processingLevel,omitempty"`
	NutritionalProfile string `json:"nutritionalProfile,omitempty"`
	HealthImplications string `json:"healthImplications,omitempty"`

	Nutrients        Nutrients `json:"nutrients,omitempty"`
	MedicationAlerts []string  `json:"medicationAlerts,omitempty"`

	Analysis     string `json:"analysis"`
	FullResponse string `json:"fullResponse,omitempty"`
}

// ParsedAnalysis is the per-image record returned by the meal-stitch endpoints.
type ParsedAnalysis struct {
	Category              string  `json:"category"`
	Confidence            float64 `json:"confidence"`
	ItemsIdentified       string  `json:"itemsIdentified"`
	CaloricContent        string  `json:"caloricContent"`
	Macronutrients        string  `json:"macronutrients"`
	ProcessingLevel       string  `json:"processingLevel"`
	NutritionalProfile    string  `json:"nutritionalProfile"`
	HealthImplications    string  `json:"healthImplications"`
	PortionConsiderations string  `json:"portionConsiderations"`
	ImageIndex            int     `json:"imageIndex"`
}
