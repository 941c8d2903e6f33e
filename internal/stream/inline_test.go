package stream

import (
	"testing"

	"github.com/lithammer/dedent"
	"github.com/stretchr/testify/assert"
)

func TestSplitInline(t *testing.T) {
	text := dedent.Dedent(`
		Category: Mixed
		MEDICATION_ALERT_START
		- Avoid grapefruit with atorvastatin

		• Limit sodium with lisinopril
		MEDICATION_ALERT_END
		Calories: 450
	`)[1:]

	assert.Equal(t, []Chunk{
		{Type: TypeContent, Content: "Category: Mixed\n"},
		{Type: TypeSeparator, Content: AlertStart},
		{Type: TypeMedicationAlert, Content: "Avoid grapefruit with atorvastatin"},
		{Type: TypeMedicationAlert, Content: "Limit sodium with lisinopril"},
		{Type: TypeSeparator, Content: AlertEnd},
		{Type: TypeContent, Content: "Calories: 450\n"},
		{Type: TypeContent, Content: ""},
	}, SplitInline(text))
}

func TestCollectInline_BoldSentinels(t *testing.T) {
	tr := CollectInline("Category: Mixed\n**MEDICATION_ALERT_START**\nAvoid alcohol\n**MEDICATION_ALERT_END**\nCalories: 450\n")
	assert.Equal(t, Transcript{
		Analysis: "Category: Mixed\nCalories: 450\n",
		Alerts:   []string{"Avoid alcohol"},
	}, tr)
}
