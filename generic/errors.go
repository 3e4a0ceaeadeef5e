/*
errors.go - Centralized error kinds for the dose engine

PURPOSE:
  All error kinds in one place for consistency and discoverability.
  The fraction and drug packages return these sentinels, usually wrapped in
  one of the structured errors below so callers get the offending field.

ERROR KINDS:
  1. ErrInvalidArgument - a value outside the legal domain for the current state
  2. ErrInvalidState    - an operation that makes no sense for the current configuration
  3. ErrFormat          - text that does not parse as a fraction
  4. ErrNullInput       - a required argument was absent
  5. ErrDrugNotFound    - store lookups (collaborator side only)

USAGE:
  All of these are contract violations reported to the immediate caller.
  Nothing is retried or recovered internally:

    if errors.Is(err, generic.ErrInvalidArgument) {
        // re-prompt the user
    }

SEE ALSO:
  - fraction/parse.go: ParseError
  - drug/recurrence.go: UnimplementedError
  - api/handlers.go: HTTP status mapping
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidArgument is returned when a caller supplied a value outside the
	// legal domain (denominator <= 0, out-of-range recurrence argument, ...).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidState is returned when the requested operation does not apply to
	// the current configuration (e.g. a recurrence argument on a daily schedule).
	ErrInvalidState = errors.New("invalid state")

	// ErrFormat is returned when text does not match the fraction grammar.
	ErrFormat = errors.New("format error")

	// ErrNullInput is returned when a required argument is absent.
	ErrNullInput = errors.New("null input")

	// ErrDrugNotFound is returned by stores when a drug id is unknown.
	ErrDrugNotFound = errors.New("drug not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// FieldError names the field and value that were rejected.
type FieldError struct {
	Field  string
	Value  any
	Reason string
	Kind   error // one of the sentinels above
}

func (e *FieldError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%v: %s=%v", e.Kind, e.Field, e.Value)
	}
	return fmt.Sprintf("%v: %s=%v: %s", e.Kind, e.Field, e.Value, e.Reason)
}

func (e *FieldError) Unwrap() error {
	return e.Kind
}

// InvalidArgument builds a FieldError of kind ErrInvalidArgument.
func InvalidArgument(field string, value any, reason string) error {
	return &FieldError{Field: field, Value: value, Reason: reason, Kind: ErrInvalidArgument}
}

// InvalidState builds a FieldError of kind ErrInvalidState.
func InvalidState(field string, value any, reason string) error {
	return &FieldError{Field: field, Value: value, Reason: reason, Kind: ErrInvalidState}
}

// NullInput builds a FieldError of kind ErrNullInput.
func NullInput(field string) error {
	return &FieldError{Field: field, Value: nil, Reason: "required", Kind: ErrNullInput}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidArgument) ||
		errors.Is(err, ErrFormat) ||
		errors.Is(err, ErrNullInput)
}

// IsStateError returns true if the request conflicts with the current configuration.
func IsStateError(err error) bool {
	return errors.Is(err, ErrInvalidState)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDrugNotFound)
}
