package models

import (
	"errors"
	"fmt"
)

// ErrorType identifies the category of error that occurred.
type ErrorType string

const (
	// Spec loading
	ErrSpecParse ErrorType = "spec_parse_error"

	// Build phase
	ErrMissingDependency ErrorType = "missing_dependency"
	ErrBuildFailure      ErrorType = "build_failure"

	// Execution phase
	ErrTimeout     ErrorType = "timeout"
	ErrNonZeroExit ErrorType = "non_zero_exit"

	// Validation phase
	ErrOutputMismatch ErrorType = "output_mismatch"

	// Sampling subsystem; fatal to the whole run
	ErrMeasurementUnavailable ErrorType = "measurement_unavailable"

	// Catch-all
	ErrInternal ErrorType = "internal_error"
)

// HarnessError is an error tagged with its category and the spec it
// originated from.
type HarnessError struct {
	Type    ErrorType
	Spec    SpecKey
	Message string
}

func (e *HarnessError) Error() string {
	if e.Spec == (SpecKey{}) {
		return fmt.Sprintf("%s: %s", e.Type, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Spec, e.Type, e.Message)
}

// NewHarnessError builds a HarnessError with a formatted message.
func NewHarnessError(t ErrorType, spec SpecKey, format string, args ...any) *HarnessError {
	return &HarnessError{
		Type:    t,
		Spec:    spec,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorTypeOf extracts the category from err, or ErrInternal when err
// is not a HarnessError.
func ErrorTypeOf(err error) ErrorType {
	var he *HarnessError
	if errors.As(err, &he) {
		return he.Type
	}
	return ErrInternal
}
