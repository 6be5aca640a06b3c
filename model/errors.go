package model

import "fmt"

// ValidationError reports bad input on a single field of a request.
// It is surfaced to the caller and never retried.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func Invalid(field, message string) ValidationError {
	return ValidationError{Field: field, Message: message}
}

// NotFoundError marks an unknown entity or scope id.
type NotFoundError struct {
	Entity string
	ID     int
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// IntegrityError wraps a uniqueness violation. Reaching one through
// the public API is a logic bug, not a user error.
type IntegrityError struct {
	Cause error
}

func (e IntegrityError) Error() string {
	return "integrity violation: " + e.Cause.Error()
}

func (e IntegrityError) Unwrap() error {
	return e.Cause
}

// ConcurrencyError is returned when a write transaction still cannot
// acquire its locks after retries. Transient: the caller may retry.
type ConcurrencyError struct {
	Cause error
}

func (e ConcurrencyError) Error() string {
	return "transaction conflict: " + e.Cause.Error()
}

func (e ConcurrencyError) Unwrap() error {
	return e.Cause
}
