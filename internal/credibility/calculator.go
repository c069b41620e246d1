package credibility

import (
	"github.com/tendhq/tend/internal/domain"
)

// DeltaFor computes the score delta for a task outcome. Pure: an on-time
// approval never yields a negative delta, a late or rejected submission
// never yields a positive one.
func DeltaFor(outcome domain.TaskOutcome) int {
	switch outcome {
	case domain.OutcomeOnTime:
		return DeltaOnTime
	case domain.OutcomeLate:
		return DeltaLate
	case domain.OutcomeRejected:
		return DeltaRejected
	}
	return 0
}

// Apply folds a delta into a score, clamping to the valid range.
func Apply(score int, outcome domain.TaskOutcome) int {
	return domain.ClampCredibility(score + DeltaFor(outcome))
}
