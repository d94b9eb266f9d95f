package models

import (
	"errors"
	"fmt"
)

var (
	// ErrIllegalState is returned when a caller asks for a transition that correct callers never make,
	// such as scoring a match whose sides are still pending
	ErrIllegalState = errors.New("illegal state")
	// ErrMatchLocked is returned when a result can no longer change because later matches depend on it
	ErrMatchLocked = errors.New("match is locked")
	ErrNotFound    = errors.New("not found")
)

// ValidationError reports a precondition that was not met before any state was touched
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// Invalid builds a ValidationError with a formatted reason
func Invalid(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IllegalState wraps ErrIllegalState with some detail
func IllegalState(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrIllegalState, fmt.Sprintf(format, args...))
}

// IsValidation reports whether err is, or wraps, a ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
