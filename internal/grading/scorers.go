package grading

import (
	"context"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/lueurxax/answer-grader/internal/core/embeddings"
	graderrors "github.com/lueurxax/answer-grader/internal/core/errors"
)

// FactualAccuracy is the share of reference concepts that Matches finds in the
// candidate, rounded to 2 decimals. An empty reference scores 1.
func FactualAccuracy(ref, cand ConceptSet) float64 {
	if len(ref) == 0 {
		return 1
	}

	matched := 0

	for concept := range ref {
		if Matches(concept, cand) {
			matched++
		}
	}

	return round(float64(matched)/float64(len(ref)), 2)
}

// Completeness is the share of reference key concepts present in the candidate,
// exactly or (for concepts over three characters) with Ratio above 0.85.
// Rounded to 2 decimals; an empty reference scores 1.
func Completeness(ref, cand ConceptSet) float64 {
	if len(ref) == 0 {
		return 1
	}

	matched := 0

	for concept := range ref {
		if cand.Has(concept) || fuzzyCovered(concept, cand) {
			matched++
		}
	}

	return round(float64(matched)/float64(len(ref)), 2)
}

func fuzzyCovered(concept string, cand ConceptSet) bool {
	if utf8.RuneCountInString(concept) <= fuzzyMinLen {
		return false
	}

	for c := range cand {
		if Ratio(concept, c) > completenessThreshold {
			return true
		}
	}

	return false
}

// SemanticSimilarity embeds both texts in one call and returns their cosine
// similarity rounded to 3 decimals. Two empty texts score 1 and a single empty
// text scores 0, neither calling the client.
func SemanticSimilarity(ctx context.Context, client embeddings.Client, ref, cand string) (float64, error) {
	switch {
	case ref == "" && cand == "":
		return 1, nil
	case ref == "" || cand == "":
		return 0, nil
	}

	res, err := client.Embed(ctx, []string{ref, cand})
	if err != nil {
		return 0, fmt.Errorf("embedding answers: %w", err)
	}

	if len(res.Vectors) != 2 {
		return 0, fmt.Errorf("embedding answers: %w", graderrors.ErrEmptyResponse)
	}

	return round(embeddings.CosineSimilarity(res.Vectors[0], res.Vectors[1]), 3), nil
}

func round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
