// Package quizerr defines the error taxonomy shared by the scheduling core.
package quizerr

import (
	"errors"
	"fmt"
)

// ErrInvalidInput matches every *InvalidInputError via errors.Is.
var ErrInvalidInput = errors.New("invalid input")

// InvalidInputError reports a bad argument passed to a core operation.
// It is always returned to the caller; the core never corrects input silently.
type InvalidInputError struct {
	Field  string
	Value  any
	Reason string
}

// Invalid builds an InvalidInputError.
func Invalid(field string, value any, reason string) *InvalidInputError {
	return &InvalidInputError{Field: field, Value: value, Reason: reason}
}

func (e *InvalidInputError) Error() string {
	if e == nil {
		return ErrInvalidInput.Error()
	}
	if e.Value == nil {
		return fmt.Sprintf("invalid input: %s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid input: %s=%v %s", e.Field, e.Value, e.Reason)
}

// Is lets errors.Is(err, ErrInvalidInput) match.
func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// IsInvalidInput reports whether err carries an InvalidInputError.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
