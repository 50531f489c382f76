package generator

import "strings"

// DefaultCategoryColor is used when no rule matches
const DefaultCategoryColor = "#34495e"

// CategoryRule maps label substrings to a marker color
type CategoryRule struct {
	Name     string
	Keywords []string
	Color    string
}

// rules are checked in order, first match wins
var categoryRules = []CategoryRule{
	{Name: "Earthquakes", Keywords: []string{"earthquake"}, Color: "#d7263d"},
	{Name: "Wildfires", Keywords: []string{"wildfires", "fire"}, Color: "#ef6f00"},
	{Name: "Storms", Keywords: []string{"storm", "cyclone"}, Color: "#145f8a"},
	{Name: "Volcanoes", Keywords: []string{"volcano"}, Color: "#7d4f50"},
	{Name: "Humanitarian", Keywords: []string{"humanitarian"}, Color: "#5b8c5a"},
}

// CategoryRules returns a copy of the ordered rule list
func CategoryRules() []CategoryRule {
	res := make([]CategoryRule, len(categoryRules))
	copy(res, categoryRules)
	return res
}

// CategoryColor returns the display color for a category label
func CategoryColor(label string) string {
	l := strings.ToLower(label)
	for _, r := range categoryRules {
		for _, kw := range r.Keywords {
			if strings.Contains(l, kw) {
				return r.Color
			}
		}
	}
	return DefaultCategoryColor
}
