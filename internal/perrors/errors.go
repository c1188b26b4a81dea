// Package perrors defines the error taxonomy for the distributed query
// parallelizer (spec 7): PlanSetupError, ForemanSetupError, and
// InvalidConfig, each carrying a code, a message, an optional wrapped
// cause, and the offending major-fragment id when known.
package perrors

import (
	"errors"
	"fmt"
)

// Error codes for PlanSetupError.
const (
	CodeCycle                    = "CYCLE"
	CodeWidthUnsatisfiable       = "WIDTH_UNSATISFIABLE"
	CodeUnavailablePinnedEndpoint = "UNAVAILABLE_PINNED_ENDPOINT"
	CodeRootTypeMismatch         = "ROOT_TYPE_MISMATCH"
	CodeSerialization            = "SERIALIZATION"
)

// Error codes for ForemanSetupError.
const (
	CodeRootWidth = "ROOT_WIDTH"
)

// Error code for InvalidConfig.
const (
	CodeInvalidConfig = "INVALID_CONFIG"
)

// noFragment marks that no major-fragment id is attached to an error.
const noFragment int32 = -1

// PlanSetupError reports a failure discovered while building the
// dependency graph, sizing a fragment, or assigning endpoints (spec 7).
type PlanSetupError struct {
	Code       string
	Message    string
	MajorID    int32
	hasMajorID bool
	Err        error
}

// Error implements the error interface.
func (e *PlanSetupError) Error() string {
	frag := ""
	if e.hasMajorID {
		frag = fmt.Sprintf(" fragment=%d", e.MajorID)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s]%s %s: %v", e.Code, frag, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s]%s %s", e.Code, frag, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *PlanSetupError) Unwrap() error { return e.Err }

// Is compares by code, matching the teacher's AppError equality semantics.
func (e *PlanSetupError) Is(target error) bool {
	t, ok := target.(*PlanSetupError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewPlanSetupError creates a PlanSetupError without a major-fragment id.
func NewPlanSetupError(code, message string) *PlanSetupError {
	return &PlanSetupError{Code: code, Message: message, MajorID: noFragment}
}

// NewPlanSetupErrorForFragment creates a PlanSetupError attached to a
// specific major-fragment id, per spec 7's propagation policy.
func NewPlanSetupErrorForFragment(code, message string, majorID int32) *PlanSetupError {
	return &PlanSetupError{Code: code, Message: message, MajorID: majorID, hasMajorID: true}
}

// WrapPlanSetupError wraps an underlying error (e.g. a serialization
// failure) as a PlanSetupError attached to a major-fragment id.
func WrapPlanSetupError(code, message string, majorID int32, err error) *PlanSetupError {
	return &PlanSetupError{Code: code, Message: message, MajorID: majorID, hasMajorID: true, Err: err}
}

// ForemanSetupError reports a policy violation discovered at emission time
// (spec 7), such as the root fragment not having width 1.
type ForemanSetupError struct {
	Code    string
	Message string
	MajorID int32
}

// Error implements the error interface.
func (e *ForemanSetupError) Error() string {
	return fmt.Sprintf("[%s] fragment=%d %s", e.Code, e.MajorID, e.Message)
}

// Is compares by code.
func (e *ForemanSetupError) Is(target error) bool {
	t, ok := target.(*ForemanSetupError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewForemanSetupError creates a ForemanSetupError for majorID.
func NewForemanSetupError(code, message string, majorID int32) *ForemanSetupError {
	return &ForemanSetupError{Code: code, Message: message, MajorID: majorID}
}

// InvalidConfig reports a parallelization parameter outside its declared
// range, detected eagerly on entry (spec 6, 7).
type InvalidConfig struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *InvalidConfig) Error() string {
	return fmt.Sprintf("[%s] %s: %s", CodeInvalidConfig, e.Field, e.Message)
}

// NewInvalidConfig creates an InvalidConfig error for field.
func NewInvalidConfig(field, message string) *InvalidConfig {
	return &InvalidConfig{Field: field, Message: message}
}

// GetPlanSetupCode extracts the PlanSetupError code from err, if any.
func GetPlanSetupCode(err error) (string, bool) {
	var pse *PlanSetupError
	if errors.As(err, &pse) {
		return pse.Code, true
	}
	return "", false
}

// MajorIDOf extracts the offending major-fragment id from err, if the
// error kind carries one.
func MajorIDOf(err error) (int32, bool) {
	var pse *PlanSetupError
	if errors.As(err, &pse) && pse.hasMajorID {
		return pse.MajorID, true
	}
	var fse *ForemanSetupError
	if errors.As(err, &fse) {
		return fse.MajorID, true
	}
	return 0, false
}
