package workflow

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the target item or claim does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition is returned when an action is not allowed from the
	// entity's current status. Nothing is changed.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrItemNotClaimable is returned when a claim targets an item that is
	// not approved.
	ErrItemNotClaimable = errors.New("item is not open for claims")

	// ErrValidation is wrapped by every ValidationError.
	ErrValidation = errors.New("validation failed")
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
