// Package apperrors holds the error taxonomy shared by services and handlers.
package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound   = errors.New("resource not found")
	ErrConflict   = errors.New("resource already exists")
	ErrValidation = errors.New("validation failed")
)

// FieldError is one rejected input field. Field is a dotted path using the
// request's JSON names, e.g. "zonePricing[zoneA].basePrice".
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field error collected for a request.
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}

	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Field == "" {
			parts = append(parts, f.Message)
			continue
		}
		parts = append(parts, f.Field+": "+f.Message)
	}
	return e.Message + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func NewValidation(message string, fields ...FieldError) *ValidationError {
	if message == "" {
		message = "validation failed"
	}
	return &ValidationError{Message: message, Fields: fields}
}

// Invalid reports a single bad field.
func Invalid(field, message string) *ValidationError {
	return NewValidation("validation failed", FieldError{Field: field, Message: message})
}

func NotFound(resource string) error {
	return fmt.Errorf("%s: %w", resource, ErrNotFound)
}

type conflictError struct {
	message string
}

func (e *conflictError) Error() string { return e.message }

func (e *conflictError) Unwrap() error { return ErrConflict }

// Conflict reports a state clash. The message is shown to the client as is.
func Conflict(format string, args ...interface{}) error {
	return &conflictError{message: fmt.Sprintf(format, args...)}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// AsValidation unwraps a ValidationError from err, if present.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
