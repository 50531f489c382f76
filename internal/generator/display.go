package generator

import (
	"sort"

	"github.com/Zachdehooge/world-brief/internal/fetcher"
)

// DisplayLimit caps the number of rendered events
const DisplayLimit = 120

// SelectDisplaySet returns up to limit events, newest first. Recency is the raw
// time string compared byte-wise, so it holds for fixed-width ISO-8601 values.
// The input slice is not modified.
func SelectDisplaySet(events []fetcher.Event, limit int) []fetcher.Event {
	if limit <= 0 {
		limit = DisplayLimit
	}
	sorted := make([]fetcher.Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time > sorted[j].Time
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}
