package analysis

import "strings"

// categoryKeywords is checked in order. "unhealthy" must precede "healthy"
// since the latter is a substring of the former.
var categoryKeywords = []struct {
	keyword  string
	category HealthCategory
}{
	{"unhealthy", CategoryClearlyUnhealthy},
	{"borderline", CategoryBorderline},
	{"mixed", CategoryMixed},
	{"healthy", CategoryClearlyHealthy},
}

// NormalizeCategory maps a free-text category label onto HealthCategory by
// substring containment.
func NormalizeCategory(raw string) HealthCategory {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return CategoryUnknown
	}
	for _, k := range categoryKeywords {
		if strings.Contains(normalized, k.keyword) {
			return k.category
		}
	}
	return CategoryUnknown
}
