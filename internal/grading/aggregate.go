package grading

import "math"

const (
	lengthScale          = 0.6
	lengthCap            = 1.2
	lengthPenaltyBelow   = 0.7
	contradictionPenalty = 0.8

	shortAnswerWords  = 20
	mediumAnswerWords = 50
)

// Weights are the dimension weights for one reference length bracket. They sum to 1.
type Weights struct {
	Factual      float64 `json:"factual"`
	Semantic     float64 `json:"semantic"`
	Completeness float64 `json:"completeness"`
}

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	return w.Factual + w.Semantic + w.Completeness
}

// Scores holds the three dimension scores.
type Scores struct {
	Factual      float64 `json:"factual_accuracy"`
	Semantic     float64 `json:"semantic_similarity"`
	Completeness float64 `json:"completeness"`
}

// WeightsFor picks weights by reference word count: short answers are judged
// on facts, long ones more on meaning and coverage.
func WeightsFor(refWords int) Weights {
	switch {
	case refWords <= shortAnswerWords:
		return Weights{Factual: 0.7, Semantic: 0.2, Completeness: 0.1}
	case refWords <= mediumAnswerWords:
		return Weights{Factual: 0.5, Semantic: 0.3, Completeness: 0.2}
	default:
		return Weights{Factual: 0.4, Semantic: 0.3, Completeness: 0.3}
	}
}

// LengthRatio is candWords / max(refWords*0.6, 1), capped at 1.2.
func LengthRatio(refWords, candWords int) float64 {
	return math.Min(float64(candWords)/math.Max(float64(refWords)*lengthScale, 1), lengthCap)
}

// Aggregate combines the scores and applies the length and contradiction
// penalties. The result is neither rounded nor clamped.
func Aggregate(s Scores, w Weights, lengthRatio float64, contradicted bool) float64 {
	score := w.Factual*s.Factual + w.Semantic*s.Semantic + w.Completeness*s.Completeness

	if lengthRatio < lengthPenaltyBelow {
		score *= lengthRatio
	}

	if contradicted {
		score *= contradictionPenalty
	}

	return score
}
