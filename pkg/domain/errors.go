package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a record or admin does not exist.
	ErrNotFound = errors.New("not found")

	// ErrStateDesync means the conversation state does not match the requested operation,
	// e.g. confirm without a completed draft or a step without an active stage.
	ErrStateDesync = errors.New("conversation state desync")
)

// Validation failure reasons. The router maps each one to a corrective message.
const (
	ReasonLength        = "length"
	ReasonEmpty         = "empty"
	ReasonDateFormat    = "date_format"
	ReasonDateNotFuture = "date_not_future"
	ReasonNotNumeric    = "not_numeric"
	ReasonAwaitConfirm  = "await_confirm"
)

// ValidationError reports user input that was rejected for the current stage.
type ValidationError struct {
	Field  string
	Reason string
	Input  string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("invalid %s (%s): %q", e.Field, e.Reason, e.Input)
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field, reason, input string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason, Input: input}
}

// AsValidation unwraps err into a ValidationError when possible.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) && ve != nil {
		return ve, true
	}
	return nil, false
}
