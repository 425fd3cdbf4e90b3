// Package apperr classifies failures of the booking core so the HTTP layer
// can map each kind to a status deterministically.
package apperr

import (
	"errors"
	"fmt"
)

// Kind sentinels. Match them with errors.Is.
var (
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrTransientStore  = errors.New("store unavailable")
)

const (
	CodeValidation      = "validation_failed"
	CodeConflict        = "conflict"
	CodeSlotTaken       = "slot_taken"
	CodeForbidden       = "forbidden"
	CodeNotFound        = "not_found"
	CodeUnauthenticated = "unauthenticated"
	CodeUnavailable     = "unavailable"
)

// Error carries a kind, a stable machine code and a message safe to show
// to clients. Err holds the underlying cause and is never shown.
type Error struct {
	Kind    error
	Code    string
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func Validation(field, reason string) *Error {
	message := reason
	if field != "" {
		message = field + " " + reason
	}
	return &Error{Kind: ErrValidation, Code: CodeValidation, Field: field, Message: message}
}

func Conflict(code, message string, cause error) *Error {
	if code == "" {
		code = CodeConflict
	}
	return &Error{Kind: ErrConflict, Code: code, Message: message, Err: cause}
}

func Forbidden(message string) *Error {
	return &Error{Kind: ErrForbidden, Code: CodeForbidden, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: ErrNotFound, Code: CodeNotFound, Message: message}
}

func Unauthenticated(message string) *Error {
	return &Error{Kind: ErrUnauthenticated, Code: CodeUnauthenticated, Message: message}
}

func Transient(message string, cause error) *Error {
	return &Error{Kind: ErrTransientStore, Code: CodeUnavailable, Message: message, Err: cause}
}

// As returns the classified error in err's chain, if any.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
