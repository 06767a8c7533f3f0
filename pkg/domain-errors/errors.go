// Package domainerrors provides tagged domain errors. Services create and
// wrap errors with a Code; transport translates codes to HTTP statuses in one
// place so handlers never hand-pick status codes.
package domainerrors

import (
	"errors"
	"net/http"
)

// Code classifies a domain error for callers and for HTTP translation.
type Code string

const (
	CodeValidation         Code = "validation_error"
	CodeInvalidInput       Code = "invalid_input"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeInvalidState       Code = "invalid_state"
	CodeGateNotSatisfied   Code = "gate_not_satisfied"
	CodeStaleState         Code = "stale_state"
	CodeMissingReviewNotes Code = "missing_review_notes"
	CodePayloadTooLarge    Code = "payload_too_large"
	CodeUnsupportedMedia   Code = "unsupported_media_type"
	CodeUnauthorized       Code = "unauthorized"
	CodeUpstreamUnavailable Code = "upstream_unavailable"
	CodeTimeout            Code = "timeout"
	CodeInvariantViolation Code = "invariant_violation"
	CodeInternal           Code = "internal_error"
)

// Error carries a code, a caller-safe message, and an optional cause.
// Details holds machine-readable context, e.g. the missing submission steps
// behind a gate_not_satisfied error.
type Error struct {
	Code    Code
	Message string
	Details []string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewWithDetails creates a domain error carrying machine-readable details.
func NewWithDetails(code Code, message string, details []string) *Error {
	return &Error{Code: code, Message: message, Details: details}
}

// Wrap attaches a code and message to an underlying cause. The cause stays
// reachable through errors.Is/As for logging; only Message crosses the API
// boundary.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err or any wrapped error carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		if de.cause == nil {
			break
		}
		err = de.cause
	}
	return false
}

// CodeOf returns the outermost domain code, or CodeInternal for untagged errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// DetailsOf returns the outermost details slice, if any.
func DetailsOf(err error) []string {
	var de *Error
	if errors.As(err, &de) {
		return de.Details
	}
	return nil
}

// ToHTTPStatus maps a domain code to an HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeValidation, CodeInvalidInput, CodeMissingReviewNotes:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeInvalidState, CodeStaleState:
		return http.StatusConflict
	case CodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case CodeUnsupportedMedia:
		return http.StatusUnsupportedMediaType
	case CodeGateNotSatisfied:
		return http.StatusUnprocessableEntity
	case CodeUpstreamUnavailable:
		return http.StatusBadGateway
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
