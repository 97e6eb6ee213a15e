package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeStorageUnavailable, "grant store write failed")

	assert.True(t, HasCode(err, CodeStorageUnavailable))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "grant store write failed")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestHasCode(t *testing.T) {
	err := New(CodeNotOwner, "document belongs to someone else")

	assert.True(t, HasCode(err, CodeNotOwner))
	assert.False(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(nil, CodeNotOwner))
	assert.False(t, HasCode(errors.New("plain"), CodeNotOwner))

	// The code survives fmt wrapping.
	wrapped := fmt.Errorf("revoke: %w", err)
	assert.True(t, HasCode(wrapped, CodeNotOwner))
}

func TestCodeOfDefaultsToInternal(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
	assert.Equal(t, CodeGrantInactive, CodeOf(New(CodeGrantInactive, "expired")))
}

func TestNewfFormatsMessage(t *testing.T) {
	err := Newf(CodeInvalidInput, "unknown permission %q", "print")
	var de *Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, `unknown permission "print"`, de.Message)
}

func TestRetryable(t *testing.T) {
	retryable := []Code{CodeLedgerUnavailable, CodeStorageUnavailable, CodeConcurrentModification, CodeTimeout}
	for _, code := range retryable {
		assert.True(t, Retryable(New(code, "x")), string(code))
	}
	terminal := []Code{CodeInvalidInput, CodeNotFound, CodeNotOwner, CodeAlreadyRevoked, CodeInvalidTransition}
	for _, code := range terminal {
		assert.False(t, Retryable(New(code, "x")), string(code))
	}
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeInvalidInput:           http.StatusBadRequest,
		CodeIncompleteApplication:  http.StatusBadRequest,
		CodeNoPermissions:          http.StatusBadRequest,
		CodeUnauthorized:           http.StatusUnauthorized,
		CodeNotFound:               http.StatusNotFound,
		CodeInvalidTransition:      http.StatusConflict,
		CodeAlreadyRevoked:         http.StatusConflict,
		CodeConcurrentModification: http.StatusConflict,
		CodeGrantInactive:          http.StatusConflict,
		CodeLedgerUnavailable:      http.StatusServiceUnavailable,
		CodeTimeout:                http.StatusGatewayTimeout,
		CodeInternal:               http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(code), string(code))
	}
}

// Ownership denials must not confirm the resource exists, so NotOwner reads
// as 404 rather than 403 from outside.
func TestNotOwnerReadsAsNotFound(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, ToHTTPStatus(CodeNotOwner))
	assert.Equal(t, ToHTTPStatus(CodeNotFound), ToHTTPStatus(CodeNotOwner))
}
