package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "vault/pkg/domain-errors"
)

func TestLegalTransitions(t *testing.T) {
	legal := []struct{ from, to Status }{
		{StatusDraft, StatusSubmitted},
		{StatusDraft, StatusCancelled},
		{StatusSubmitted, StatusUnderReview},
		{StatusSubmitted, StatusCancelled},
		{StatusUnderReview, StatusInfoRequired},
		{StatusUnderReview, StatusApproved},
		{StatusUnderReview, StatusRejected},
		{StatusUnderReview, StatusCancelled},
		{StatusInfoRequired, StatusUnderReview},
		{StatusInfoRequired, StatusCancelled},
		{StatusApproved, StatusIssued},
	}
	for _, tc := range legal {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s must be legal", tc.from, tc.to)
	}
}

func TestIllegalTransitions(t *testing.T) {
	illegal := []struct{ from, to Status }{
		{StatusDraft, StatusApproved},
		{StatusSubmitted, StatusApproved},
		{StatusSubmitted, StatusIssued},
		{StatusApproved, StatusCancelled},
		{StatusApproved, StatusRejected},
		{StatusRejected, StatusUnderReview},
		{StatusIssued, StatusCancelled},
		{StatusCancelled, StatusSubmitted},
	}
	for _, tc := range illegal {
		assert.False(t, CanTransition(tc.from, tc.to), "%s -> %s must be illegal", tc.from, tc.to)

		err := EnsureTransition(tc.from, tc.to)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))
		assert.Contains(t, err.Error(), string(tc.from))
		assert.Contains(t, err.Error(), string(tc.to))
	}
}

func TestTerminalStates(t *testing.T) {
	for _, status := range []Status{StatusRejected, StatusIssued, StatusCancelled} {
		assert.True(t, status.IsTerminal(), "%s must be terminal", status)
	}
	for _, status := range []Status{StatusDraft, StatusSubmitted, StatusUnderReview, StatusInfoRequired, StatusApproved} {
		assert.False(t, status.IsTerminal(), "%s must not be terminal", status)
	}
}
