package scheduling

import (
	"errors"
	"fmt"

	"homeserve/models"
)

// Error codes carried by *Error.
const (
	CodeNotFound            = "notFound"
	CodeSlotUnavailable     = "slotUnavailable"
	CodeConcurrencyConflict = "concurrencyConflict"
	CodeInvalidRequest      = "invalidRequest"
	CodeForbidden           = "forbidden"
)

// Error is the failure type returned by the scheduling service. Conflicts found
// during booking are not errors; they come back in a BookingResult.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same code, so the bare sentinels below work
// with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Sentinels for errors.Is.
var (
	ErrNotFound            = &Error{Code: CodeNotFound}
	ErrSlotUnavailable     = &Error{Code: CodeSlotUnavailable}
	ErrConcurrencyConflict = &Error{Code: CodeConcurrencyConflict}
	ErrInvalidRequest      = &Error{Code: CodeInvalidRequest}
	ErrForbidden           = &Error{Code: CodeForbidden}
)

func newError(code string, err error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

func notFound(entity, id string) error {
	return newError(CodeNotFound, models.ErrRecordNotFound, "%s %s not found", entity, id)
}

func invalid(format string, args ...any) error {
	return newError(CodeInvalidRequest, nil, format, args...)
}

// lookup converts a repository miss into a NotFound error and wraps anything else.
func lookup(entity, id string, err error) error {
	if errors.Is(err, models.ErrRecordNotFound) {
		return notFound(entity, id)
	}
	return fmt.Errorf("load %s %s: %w", entity, id, err)
}

// commitErr maps a storage exclusion-constraint violation to ConcurrencyConflict.
func commitErr(op string, err error) error {
	if errors.Is(err, models.ErrOverlapConstraint) {
		return newError(CodeConcurrencyConflict, err, "%s: another booking took this window, retry or pick an alternative", op)
	}
	return fmt.Errorf("%s: %w", op, err)
}
