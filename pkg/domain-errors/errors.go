// Package domainerrors provides code-based errors shared by all vault modules.
//
// Services return these so transport layers can map them to HTTP statuses
// without string matching. Infrastructure layers return pkg/platform/sentinel
// errors instead; services translate at the boundary.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies the class of failure independent of transport.
type Code string

const (
	// Validation errors: caller mistakes, no side effect committed.
	CodeInvalidInput          Code = "invalid_input"
	CodeInvalidPayload        Code = "invalid_payload"
	CodeIncompleteApplication Code = "incomplete_application"
	CodeNoPermissions         Code = "no_permissions_selected"

	// State-conflict errors: the entity exists but is in the wrong state.
	CodeInvalidTransition      Code = "invalid_transition"
	CodeAlreadyAnchored        Code = "already_anchored"
	CodeAlreadyRevoked         Code = "already_revoked"
	CodeApplicationNotApproved Code = "application_not_approved"
	CodeConcurrentModification Code = "concurrent_modification"
	CodeGrantInactive          Code = "grant_inactive"

	// Authorization errors: deny without leaking resource existence.
	CodeUnauthorized Code = "unauthorized"
	CodeNotOwner     Code = "not_owner"

	// Resource-not-found errors.
	CodeNotFound    Code = "not_found"
	CodeNotAnchored Code = "not_anchored"

	// Dependency errors: transient, nothing partially committed, safe to retry.
	CodeLedgerUnavailable  Code = "ledger_unavailable"
	CodeStorageUnavailable Code = "storage_unavailable"

	// Transport-level codes.
	CodeBadRequest Code = "bad_request"
	CodeTimeout    Code = "timeout"
	CodeInternal   Code = "internal"
)

// Error carries a machine-readable code alongside a human message.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a domain error with the given code and message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a domain error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is an alias for HasCode kept for call-site readability.
func Is(err error, code Code) bool { return HasCode(err, code) }

// CodeOf extracts the code from err, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// Retryable reports whether the failure class is transient. Dependency errors
// and lost optimistic-concurrency races are safe to retry after a re-read.
func Retryable(err error) bool {
	switch CodeOf(err) {
	case CodeLedgerUnavailable, CodeStorageUnavailable, CodeConcurrentModification, CodeTimeout:
		return true
	}
	return false
}

// ToHTTPStatus maps a code to its HTTP status. Note NotOwner maps to 404
// rather than 403: denials must not confirm the resource exists.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput, CodeInvalidPayload, CodeIncompleteApplication, CodeNoPermissions, CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound, CodeNotAnchored, CodeNotOwner:
		return http.StatusNotFound
	case CodeInvalidTransition, CodeAlreadyAnchored, CodeAlreadyRevoked,
		CodeApplicationNotApproved, CodeConcurrentModification, CodeGrantInactive:
		return http.StatusConflict
	case CodeLedgerUnavailable, CodeStorageUnavailable:
		return http.StatusServiceUnavailable
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
