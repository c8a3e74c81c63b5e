package imagestudio

import (
	"math"
)

// imageTokenCost approximates what one inline image costs against a
// tokens-per-minute quota.
const imageTokenCost = 1290

// TokenEstimator provides configurable token estimation strategies
type TokenEstimator interface {
	EstimateTokens(text string) int
}

// SimpleTokenEstimator - fast approximation of token usage for quota checks
type SimpleTokenEstimator struct {
	SafetyMargin float64
}

func NewSimpleTokenEstimator() *SimpleTokenEstimator {
	return &SimpleTokenEstimator{
		SafetyMargin: 1.2,
	}
}

func (e *SimpleTokenEstimator) EstimateTokens(text string) int {
	if text == "" {
		return 0
	}

	charCount := len([]rune(text))
	tokenEstimate := float64(charCount) / 4.0
	tokenEstimate *= e.SafetyMargin

	return int(math.Ceil(tokenEstimate)) + 3
}

// EstimateItems sums the estimate over a request's items, charging a flat
// cost per image.
func EstimateItems(e TokenEstimator, items []Item) int {
	total := 0
	for _, it := range items {
		if it.IsImage() {
			total += imageTokenCost
			continue
		}
		total += e.EstimateTokens(it.Text)
	}
	return total
}
