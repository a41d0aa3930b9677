package errors

import (
	stderrors "errors"
	"fmt"
)

// Error codes shared by the statistics engine, the geometry model and the
// HTTP layer.
const (
	CodeEmptySample          = "EMPTY_SAMPLE"
	CodeInvalidConfiguration = "INVALID_CONFIGURATION"
	CodeDegenerateGeometry   = "DEGENERATE_GEOMETRY"
	CodeOutOfRangeAngle      = "OUT_OF_RANGE_ANGLE"
	CodeComputation          = "COMPUTATION"
	CodeNotFound             = "NOT_FOUND"
	CodeInternal             = "INTERNAL_ERROR"
)

// Sentinels for errors.Is. Any AppError carrying the same code matches.
var (
	ErrEmptySample          = New(CodeEmptySample, "undefined: empty sample")
	ErrInvalidConfiguration = New(CodeInvalidConfiguration, "invalid configuration")
	ErrDegenerateGeometry   = New(CodeDegenerateGeometry, "undefined geometry: no data scale established")
	ErrOutOfRangeAngle      = New(CodeOutOfRangeAngle, "angle is not finite")
	ErrComputation          = New(CodeComputation, "computation produced a non-finite result")
	ErrNotFound             = New(CodeNotFound, "not found")
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an AppError with the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new AppError with a formatted message
func Newf(code, format string, args ...interface{}) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an error with additional context, keeping its code.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    CodeInternal,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// EmptySample reports a statistic requested over zero observations.
func EmptySample(statistic string) error {
	return Newf(CodeEmptySample, "cannot compute %s: no data", statistic)
}

// InvalidConfiguration reports a violated configuration invariant.
func InvalidConfiguration(format string, args ...interface{}) error {
	return Newf(CodeInvalidConfiguration, "invalid configuration: "+format, args...)
}

// DegenerateGeometry reports a radius requested before a scale exists.
func DegenerateGeometry(format string, args ...interface{}) error {
	return Newf(CodeDegenerateGeometry, "undefined geometry: "+format, args...)
}

// OutOfRangeAngle reports a non-finite angle.
func OutOfRangeAngle(value float64) error {
	return Newf(CodeOutOfRangeAngle, "angle %v is not finite", value)
}

// Computation reports a non-finite intermediate result.
func Computation(format string, args ...interface{}) error {
	return Newf(CodeComputation, "computation error: "+format, args...)
}

// NotFound reports a missing entity.
func NotFound(kind, id string) error {
	return Newf(CodeNotFound, "%s not found: %s", kind, id)
}

// CodeOf returns the code of the first AppError in err's chain, or
// CodeInternal.
func CodeOf(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}
