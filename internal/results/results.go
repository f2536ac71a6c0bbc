// Package results filters, aggregates, and exports prediction collections.
package results

import (
	"sort"

	"github.com/sravan-dsai/newslens/internal/classify"
)

// FilterByConfidence returns the predictions whose confidence meets or
// exceeds the threshold. A threshold of 0 keeps every row; a threshold above
// the maximum observed confidence keeps none.
func FilterByConfidence(preds []classify.Prediction, threshold float64) []classify.Prediction {
	filtered := make([]classify.Prediction, 0, len(preds))
	for _, p := range preds {
		if p.Confidence >= threshold {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// CategoryCount is one row of the aggregate category distribution.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// CategoryCounts tallies predictions per category, ordered by count
// descending, then name for stable output.
func CategoryCounts(preds []classify.Prediction) []CategoryCount {
	tally := make(map[string]int)
	for _, p := range preds {
		tally[p.Category]++
	}

	counts := make([]CategoryCount, 0, len(tally))
	for category, count := range tally {
		counts = append(counts, CategoryCount{Category: category, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Category < counts[j].Category
	})
	return counts
}

// MaxConfidence returns the highest confidence in the collection, or 0.
func MaxConfidence(preds []classify.Prediction) float64 {
	max := 0.0
	for _, p := range preds {
		if p.Confidence > max {
			max = p.Confidence
		}
	}
	return max
}
