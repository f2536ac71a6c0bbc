// Package classify wraps hosted pretrained text-classification models.
package classify

import (
	"context"
	"strings"
)

// CategoryInvalid is the sentinel category for empty or whitespace-only input.
const CategoryInvalid = "Invalid/Empty"

// Prediction is the result of classifying a single article.
type Prediction struct {
	Text          string             `json:"text"`
	Category      string             `json:"predicted_category"`
	Confidence    float64            `json:"confidence"`
	Probabilities map[string]float64 `json:"raw_probabilities"`
}

// Classifier produces one prediction per input text, in input order.
type Classifier interface {
	Classify(ctx context.Context, texts []string) ([]Prediction, error)
}

// Invalid returns the sentinel prediction for unusable input.
func Invalid(text string) Prediction {
	return Prediction{
		Text:          text,
		Category:      CategoryInvalid,
		Confidence:    0.0,
		Probabilities: map[string]float64{},
	}
}

// IsBlank reports whether a text is empty or whitespace-only.
func IsBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}

// splitBlank partitions texts into the valid subset sent to the model and the
// original positions of each valid entry, so results can be stitched back
// into input order with sentinels in the blank slots.
func splitBlank(texts []string) (valid []string, positions []int) {
	for i, text := range texts {
		if IsBlank(text) {
			continue
		}
		valid = append(valid, text)
		positions = append(positions, i)
	}
	return valid, positions
}

// assemble merges model predictions for the valid subset back into a full
// result list, filling blank slots with the sentinel.
func assemble(texts []string, positions []int, predicted []Prediction) []Prediction {
	results := make([]Prediction, len(texts))
	for i, text := range texts {
		results[i] = Invalid(text)
	}
	for i, pos := range positions {
		results[pos] = predicted[i]
	}
	return results
}

// normalize scales a probability distribution to sum to 1 and returns the
// top category with its probability. Scores from some providers are not
// normalized; a zero-sum distribution yields the sentinel values.
func normalize(probs map[string]float64) (category string, confidence float64) {
	var sum float64
	for _, p := range probs {
		sum += p
	}
	if sum <= 0 {
		return CategoryInvalid, 0.0
	}

	for label, p := range probs {
		probs[label] = p / sum
	}
	for label, p := range probs {
		if p > confidence || (p == confidence && label < category) {
			category = label
			confidence = p
		}
	}
	return category, confidence
}
