package domain

import (
	"errors"
	"fmt"
)

// Error kinds. The API layer maps these to transport status codes with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("access forbidden")
	ErrNotFound     = errors.New("not found")
)

var (
	ErrUsernameTaken      = fmt.Errorf("%w: username is already taken", ErrConflict)
	ErrEmailTaken         = fmt.Errorf("%w: email is already taken", ErrConflict)
	ErrDuplicateUser      = fmt.Errorf("%w: user already exists", ErrConflict)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	ErrInvalidToken       = fmt.Errorf("%w: invalid token", ErrUnauthorized)
	ErrUserNotFound       = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrStudentNotFound    = fmt.Errorf("%w: student not found", ErrNotFound)
)

// ValidationError reports caller-supplied data that violates a record invariant.
// Code is a stable tag used for metrics; Reason is shown to the caller as-is.
type ValidationError struct {
	Code   string
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError builds a ValidationError.
func NewValidationError(code, reason string) *ValidationError {
	return &ValidationError{Code: code, Reason: reason}
}
