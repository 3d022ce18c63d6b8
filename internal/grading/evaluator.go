// Package grading scores a free-text answer against a reference answer.
//
// The pipeline normalizes both answers, annotates them, and scores three
// dimensions: factual accuracy over extracted concepts, semantic similarity of
// sentence embeddings, and completeness over key nouns and verbs. The weighted
// sum is penalized for short answers and numeric contradictions, then mapped
// to a fixed feedback message.
package grading

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lueurxax/answer-grader/internal/core/embeddings"
	graderrors "github.com/lueurxax/answer-grader/internal/core/errors"
	"github.com/lueurxax/answer-grader/internal/core/nlp"
	"github.com/lueurxax/answer-grader/internal/platform/observability"
)

// Error stages, used in wrapped errors and metric labels.
const (
	stageAnnotate = "annotate"
	stageEmbed    = "embed"
)

const (
	dimensionFactual      = "factual"
	dimensionSemantic     = "semantic"
	dimensionCompleteness = "completeness"
)

// Result is the outcome of one evaluation.
type Result struct {
	Score     float64   // rounded to 3 decimals, not clamped
	Feedback  string
	Breakdown Breakdown
}

// Breakdown holds the intermediate values behind a score.
type Breakdown struct {
	Scores
	LengthRatio      float64         `json:"length_ratio"`
	Weights          Weights         `json:"weights"`
	Contradictions   []Contradiction `json:"contradictions"`
	ReferenceWords   int             `json:"reference_words"`
	CandidateWords   int             `json:"candidate_words"`
	FeedbackCategory string          `json:"feedback_category"`
}

// Evaluator grades answers. It is safe for concurrent use.
type Evaluator struct {
	annotator nlp.Annotator
	embedder  embeddings.Client
	logger    *zerolog.Logger
}

// NewEvaluator creates an evaluator from loaded models.
func NewEvaluator(annotator nlp.Annotator, embedder embeddings.Client, logger *zerolog.Logger) *Evaluator {
	return &Evaluator{
		annotator: annotator,
		embedder:  embedder,
		logger:    logger,
	}
}

// Evaluate grades candidate against reference. Empty strings are valid input.
// Annotation or embedding failures wrap ErrInferenceFailed.
func (e *Evaluator) Evaluate(ctx context.Context, reference, candidate string) (Result, error) {
	start := time.Now()

	ref := Normalize(reference)
	cand := Normalize(candidate)

	var (
		refDoc, candDoc *nlp.Doc
		semantic        float64
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error

		refDoc, err = e.annotator.Annotate(gctx, ref)

		return stageError(stageAnnotate, err)
	})

	g.Go(func() error {
		var err error

		candDoc, err = e.annotator.Annotate(gctx, cand)

		return stageError(stageAnnotate, err)
	})

	g.Go(func() error {
		var err error

		semantic, err = SemanticSimilarity(gctx, e.embedder, ref, cand)

		return stageError(stageEmbed, err)
	})

	if err := g.Wait(); err != nil {
		var se *stageErr
		if errors.As(err, &se) {
			observability.EvaluationErrors.WithLabelValues(se.stage).Inc()
		}

		e.logger.Warn().Err(err).Msg("evaluation failed")

		return Result{}, err
	}

	result := score(refDoc, candDoc, ref, cand, semantic)

	observability.EvaluationDuration.Observe(time.Since(start).Seconds())
	observability.EvaluationsTotal.WithLabelValues(result.Breakdown.FeedbackCategory).Inc()
	observability.DimensionScore.WithLabelValues(dimensionFactual).Observe(result.Breakdown.Factual)
	observability.DimensionScore.WithLabelValues(dimensionSemantic).Observe(result.Breakdown.Semantic)
	observability.DimensionScore.WithLabelValues(dimensionCompleteness).Observe(result.Breakdown.Completeness)
	observability.ContradictionsTotal.Add(float64(len(result.Breakdown.Contradictions)))

	e.logger.Debug().
		Float64("score", result.Score).
		Str("feedback", result.Breakdown.FeedbackCategory).
		Dur("duration", time.Since(start)).
		Msg("answer evaluated")

	return result, nil
}

// score runs the pure part of the pipeline on annotated answers.
func score(refDoc, candDoc *nlp.Doc, ref, cand string, semantic float64) Result {
	scores := Scores{
		Factual:      FactualAccuracy(ExtractConcepts(refDoc), ExtractConcepts(candDoc)),
		Semantic:     semantic,
		Completeness: Completeness(ExtractKeyConcepts(refDoc), ExtractKeyConcepts(candDoc)),
	}

	refWords, candWords := WordCount(ref), WordCount(cand)
	lengthRatio := LengthRatio(refWords, candWords)
	weights := WeightsFor(refWords)
	contradictions := DetectContradictions(ExtractNumericFacts(refDoc), ExtractNumericFacts(candDoc))

	raw := Aggregate(scores, weights, lengthRatio, len(contradictions) > 0)

	fb := GenerateFeedback(FeedbackInput{
		Score:          raw,
		Factual:        scores.Factual,
		Completeness:   scores.Completeness,
		LengthRatio:    lengthRatio,
		Contradictions: len(contradictions),
	})

	return Result{
		Score:    round(raw, 3),
		Feedback: fb.Message,
		Breakdown: Breakdown{
			Scores:           scores,
			LengthRatio:      lengthRatio,
			Weights:          weights,
			Contradictions:   contradictions,
			ReferenceWords:   refWords,
			CandidateWords:   candWords,
			FeedbackCategory: fb.Category,
		},
	}
}

type stageErr struct {
	stage string
	err   error
}

func (e *stageErr) Error() string { return e.stage + ": " + e.err.Error() }
func (e *stageErr) Unwrap() error { return e.err }

// stageError tags err with its stage and marks model failures as inference
// failures. Cancellation passes through unmarked.
func stageError(stage string, err error) error {
	if err == nil {
		return nil
	}

	if !errors.Is(err, graderrors.ErrInferenceFailed) &&
		!errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("%w: %w", graderrors.ErrInferenceFailed, err)
	}

	return &stageErr{stage: stage, err: err}
}
