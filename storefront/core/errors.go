package core

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrValidation marks input that was rejected before any persistence.
	ErrValidation = errors.New("validation failed")

	// ErrForbiddenTransition is returned when the actor's role does not allow the requested status change.
	ErrForbiddenTransition = errors.New("forbidden status transition")

	// ErrNotOrderOwner is returned when a customer acts on an order that belongs to someone else.
	ErrNotOrderOwner = errors.New("requester does not own the order")

	// ErrAdminOnly is returned when a non-admin invokes an administrative operation.
	ErrAdminOnly = errors.New("operation requires the admin role")

	// ErrQuickConfirmNotApplicable is returned when quick-confirm is called on an order that is not pending.
	ErrQuickConfirmNotApplicable = errors.New("quick-confirm only applies to pending orders")

	// ErrOrderNotCancelled is returned when removing an order that is not cancelled.
	ErrOrderNotCancelled = errors.New("only cancelled orders can be removed")

	// ErrDeliveryUnavailable is returned when no fee exists for the chosen region, method, and speed.
	ErrDeliveryUnavailable = errors.New("delivery is unavailable for the chosen region, method, and speed")
)

// ValidationError carries field-level messages keyed by wire field name.
// errors.Is(err, ErrValidation) holds for every ValidationError.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns an empty ValidationError; add fields with Add.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records the first message for a field; later messages for the same field are ignored.
func (e *ValidationError) Add(field, message string) {
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

// HasFields reports whether any field was rejected.
func (e *ValidationError) HasFields() bool {
	return len(e.Fields) > 0
}

// OrNil returns nil if no field was rejected, so callers can return it unconditionally.
func (e *ValidationError) OrNil() error {
	if !e.HasFields() {
		return nil
	}

	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}

	return ErrValidation.Error() + ": " + strings.Join(parts, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
