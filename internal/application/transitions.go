package application

import dErrors "vault/pkg/domain-errors"

// legalTransitions is the single source of truth for the workflow state
// machine. Cancellation is legal from every pre-approval state; approved
// moves only to issued, and the three terminal states have no exits.
var legalTransitions = map[Status][]Status{
	StatusDraft:        {StatusSubmitted, StatusCancelled},
	StatusSubmitted:    {StatusUnderReview, StatusCancelled},
	StatusUnderReview:  {StatusInfoRequired, StatusApproved, StatusRejected, StatusCancelled},
	StatusInfoRequired: {StatusUnderReview, StatusCancelled},
	StatusApproved:     {StatusIssued},
	StatusRejected:     {},
	StatusIssued:       {},
	StatusCancelled:    {},
}

// IsTerminal reports whether no further transition is permitted.
func (s Status) IsTerminal() bool {
	return len(legalTransitions[s]) == 0
}

// CanTransition reports whether from → to is a legal move.
func CanTransition(from, to Status) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// EnsureTransition returns CodeInvalidTransition naming the illegal pair.
func EnsureTransition(from, to Status) error {
	if !CanTransition(from, to) {
		return dErrors.Newf(dErrors.CodeInvalidTransition, "illegal transition from %s to %s", from, to)
	}
	return nil
}
