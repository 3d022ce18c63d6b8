package grading

// Feedback messages.
const (
	MsgTooBrief       = "⚠️ Answer is too brief. Provide more details."
	MsgContradiction  = "⚠️ Contains contradictory information. Please check your facts."
	MsgFactualErrors  = "⚠️ Significant factual errors. Requires substantial revision."
	MsgIncomplete     = "⚠️ Answer covers only some key points. Expand your response to include more details."
	MsgExcellent      = "✅ Excellent answer! Well-matched with key facts."
	MsgVeryGood       = "✅ Very good answer! Accurate and well-structured."
	MsgGood           = "👍 Good answer with minor improvements needed."
	MsgPartial        = "🤔 Partially correct. Needs more specific details."
	MsgSomeCorrect    = "⚠️ Answer has some correct elements but needs significant improvement."
	MsgSignificantErr = "⚠️ Significant errors. Requires substantial revision."
)

// Feedback categories, used as metric labels.
const (
	CategoryTooBrief      = "too_brief"
	CategoryContradiction = "contradiction"
	CategoryFactualErrors = "factual_errors"
	CategoryIncomplete    = "incomplete"
	CategoryExcellent     = "excellent"
	CategoryVeryGood      = "very_good"
	CategoryGood          = "good"
	CategoryPartial       = "partial"
	CategorySomeCorrect   = "some_correct"
	CategoryPoor          = "poor"
)

// FeedbackInput is what the feedback rules look at.
type FeedbackInput struct {
	Score          float64 // unrounded final score
	Factual        float64
	Completeness   float64
	LengthRatio    float64
	Contradictions int
}

// Feedback is one message and its category.
type Feedback struct {
	Category string
	Message  string
}

type scoreBand struct {
	above    float64
	category string
	message  string
}

var scoreBands = []scoreBand{
	{0.9, CategoryExcellent, MsgExcellent},
	{0.8, CategoryVeryGood, MsgVeryGood},
	{0.7, CategoryGood, MsgGood},
	{0.5, CategoryPartial, MsgPartial},
	{0.3, CategorySomeCorrect, MsgSomeCorrect},
}

// GenerateFeedback applies the rules in order; the first match wins.
func GenerateFeedback(in FeedbackInput) Feedback {
	switch {
	case in.LengthRatio < 0.5:
		return Feedback{CategoryTooBrief, MsgTooBrief}
	case in.Contradictions > 0:
		return Feedback{CategoryContradiction, MsgContradiction}
	case in.Factual < 0.4:
		return Feedback{CategoryFactualErrors, MsgFactualErrors}
	case in.Completeness < 0.4 && in.Factual > 0.7:
		return Feedback{CategoryIncomplete, MsgIncomplete}
	}

	for _, band := range scoreBands {
		if in.Score > band.above {
			return Feedback{band.category, band.message}
		}
	}

	return Feedback{CategoryPoor, MsgSignificantErr}
}
