// Package domainerrors gives consent failures a stable, transport-neutral
// code. Stores and services return these; httputil maps codes to statuses.
package domainerrors

import "errors"

type Code string

// Caller mistakes.
const (
	CodeBadRequest             Code = "bad_request"
	CodeValidation             Code = "validation_failed"
	CodeInvariantViolation     Code = "invariant_violation"
	CodeNotFound               Code = "not_found"
	CodeInvalidStateTransition Code = "invalid_state_transition"
	CodeConflict               Code = "conflict"
)

// Server or dependency failures. Only CodeInternal hides its message from clients.
const (
	CodeInternal    Code = "internal_error"
	CodeUnavailable Code = "unavailable"
	CodeTimeout     Code = "timeout"
)

// Error is a coded failure. Message is safe to show to API clients unless
// Code is CodeInternal; Err keeps the underlying cause for logs.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes errors.Is(err, &Error{Code: c}) a code comparison.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches msg to err. A coded err keeps its code; anything else gets code.
func Wrap(err error, code Code, msg string) error {
	if inner, ok := asError(err); ok {
		code = inner.Code
	}
	return &Error{Code: code, Message: msg, Err: err}
}

func HasCode(err error, code Code) bool {
	e, ok := asError(err)
	return ok && e.Code == code
}

// CodeOf reports the code carried by err. Uncoded errors count as internal.
func CodeOf(err error) Code {
	if e, ok := asError(err); ok {
		return e.Code
	}
	return CodeInternal
}

func asError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
