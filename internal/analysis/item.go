package analysis

// ParseItem parses the per-image analysis returned by a meal-stitch endpoint.
// Text fields use the same section rules as Parse, so values that wrap onto
// following lines are kept.
func ParseItem(text string) ParsedAnalysis {
	lines := splitLines(text)
	p := ParsedAnalysis{
		ItemsIdentified:       section(text, SectionItemsIdentified),
		CaloricContent:        section(text, SectionCaloricContent),
		Macronutrients:        section(text, SectionMacronutrients),
		ProcessingLevel:       section(text, SectionProcessingLevel),
		NutritionalProfile:    section(text, SectionNutritionalProfile),
		HealthImplications:    section(text, SectionHealthImplications),
		PortionConsiderations: section(text, SectionPortionConsiderations),
	}

	p.Category, _ = labelValue(lines, string(SectionCategory))

	if raw, ok := labelValue(lines, string(SectionConfidence)); ok {
		p.Confidence, _ = parseConfidence(raw)
	}

	if raw, ok := labelValue(lines, string(SectionImageIndex)); ok {
		if v, ok := parseLeadingNumber(raw, true); ok {
			p.ImageIndex = int(v)
		}
	}

	return p
}
