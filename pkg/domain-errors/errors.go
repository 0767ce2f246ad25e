// Package domainerrors provides coded errors for the audit/slashing engine.
// Every failure surfaced to a caller carries a stable machine-readable code
// plus a human-readable reason; transports map codes to status codes without
// inspecting messages.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a stable machine-readable error kind.
type Code string

const (
	// Ledger-level codes. These are terminal: the caller decides whether to
	// resubmit, the engine never retries on its own.
	CodeDuplicateContent      Code = "duplicate_content"
	CodeContentNotFound       Code = "content_not_found"
	CodeContentAlreadyAudited Code = "content_already_audited"
	CodeInvalidScoreRange     Code = "invalid_score_range"
	CodeUnauthorized          Code = "unauthorized"
	CodeZeroAmount            Code = "zero_amount"
	CodeNotOwner              Code = "not_owner"
	CodeAgentNotRegistered    Code = "agent_not_registered"
	CodeInsufficientStake     Code = "insufficient_stake"
	CodeInvalidTreasury       Code = "invalid_treasury"

	// CodeVerifierUnavailable is recoverable: the orchestrator absorbs it by
	// falling back to the local heuristic, it never reaches callers.
	CodeVerifierUnavailable Code = "verifier_unavailable"

	// Transport-level codes.
	CodeBadRequest Code = "bad_request"
	CodeNotFound   Code = "not_found"
	CodeTimeout    Code = "timeout"
	CodeInternal   Code = "internal"
)

// Error is the coded error type used across services and handlers.
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

// New builds a coded error with a human-readable reason.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf builds a coded error with a formatted reason.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and reason to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for errors
// that did not originate in this package.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps an error code to an HTTP status for the JSON envelope.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeDuplicateContent, CodeContentAlreadyAudited:
		return http.StatusConflict
	case CodeContentNotFound, CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized, CodeNotOwner:
		return http.StatusForbidden
	case CodeInvalidScoreRange, CodeZeroAmount, CodeInvalidTreasury, CodeBadRequest:
		return http.StatusBadRequest
	case CodeAgentNotRegistered, CodeInsufficientStake:
		return http.StatusUnprocessableEntity
	case CodeVerifierUnavailable:
		return http.StatusServiceUnavailable
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
