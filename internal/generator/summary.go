package generator

import (
	"sort"

	"github.com/Zachdehooge/world-brief/internal/fetcher"
)

// UncategorizedLabel groups events without a category
const UncategorizedLabel = "uncategorized"

// CategoryCount is one row of the counts panel
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Summarize counts events per category, most frequent first.
// Ties keep the order in which categories were first seen.
func Summarize(events []fetcher.Event) []CategoryCount {
	index := make(map[string]int)
	var result []CategoryCount
	for _, e := range events {
		cat := e.Category
		if cat == "" {
			cat = UncategorizedLabel
		}
		if i, ok := index[cat]; ok {
			result[i].Count++
			continue
		}
		index[cat] = len(result)
		result = append(result, CategoryCount{Category: cat, Count: 1})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})
	return result
}
