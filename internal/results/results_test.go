package results

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sravan-dsai/newslens/internal/classify"
)

func samplePreds() []classify.Prediction {
	return []classify.Prediction{
		{Text: "a", Category: "Sports", Confidence: 0.95},
		{Text: "b", Category: "World", Confidence: 0.60},
		{Text: "c", Category: "Sports", Confidence: 0.80},
		{Text: "d", Category: classify.CategoryInvalid, Confidence: 0.0},
	}
}

func TestFilterByConfidence_ZeroKeepsAll(t *testing.T) {
	filtered := FilterByConfidence(samplePreds(), 0.0)
	assert.Len(t, filtered, 4)
}

func TestFilterByConfidence_AboveMaxKeepsNone(t *testing.T) {
	filtered := FilterByConfidence(samplePreds(), 1.01)
	assert.Empty(t, filtered)
}

func TestFilterByConfidence_Threshold(t *testing.T) {
	filtered := FilterByConfidence(samplePreds(), 0.75)
	assert.Len(t, filtered, 2)
	assert.Equal(t, "a", filtered[0].Text)
	assert.Equal(t, "c", filtered[1].Text)
}

func TestFilterByConfidence_InclusiveBoundary(t *testing.T) {
	filtered := FilterByConfidence(samplePreds(), 0.60)
	assert.Len(t, filtered, 3)
}

func TestFilterByConfidence_SentinelOnlyAtZero(t *testing.T) {
	filtered := FilterByConfidence(samplePreds(), 0.01)
	for _, p := range filtered {
		assert.NotEqual(t, classify.CategoryInvalid, p.Category)
	}
}

func TestCategoryCounts(t *testing.T) {
	counts := CategoryCounts(samplePreds())
	assert.Equal(t, []CategoryCount{
		{Category: "Sports", Count: 2},
		{Category: "Invalid/Empty", Count: 1},
		{Category: "World", Count: 1},
	}, counts)
}

func TestCategoryCounts_Empty(t *testing.T) {
	assert.Empty(t, CategoryCounts(nil))
}

func TestMaxConfidence(t *testing.T) {
	assert.InDelta(t, 0.95, MaxConfidence(samplePreds()), 1e-9)
	assert.Equal(t, 0.0, MaxConfidence(nil))
}
