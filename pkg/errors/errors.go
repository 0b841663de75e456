// Package errors provides structured error types for the floorplanner.
//
// Every failure that aborts a floorplan run carries a machine-readable
// [Code] so that the CLI and the HTTP API can report it consistently:
//
//   - INVALID_*: the configuration or module list is unusable
//   - PLACEMENT_FAILED: no legal site exists for a module
//   - PIN_LAYOUT_MISMATCH / TRACK_SATURATION: a pin interface cannot be routed
//   - UNSUPPORTED_ORIENTATION: an element transform is outside the known set
//
// # Usage
//
//	err := errors.New(errors.ErrCodePlacementFailed, "module %q couldn't be placed", name)
//	if errors.Is(err, errors.ErrCodePlacementFailed) {
//	    // adjust the module list
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidInput, origErr, "read %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the different failure classes.
const (
	// Input errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidModule Code = "INVALID_MODULE"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeFileNotFound  Code = "FILE_NOT_FOUND"

	// Placement errors
	ErrCodePlacementFailed Code = "PLACEMENT_FAILED"

	// Track allocation errors
	ErrCodeInvalidPinSpec    Code = "INVALID_PIN_SPEC"
	ErrCodePinLayoutMismatch Code = "PIN_LAYOUT_MISMATCH"
	ErrCodeTrackSaturation   Code = "TRACK_SATURATION"

	// Geometry errors
	ErrCodeUnsupportedOrientation Code = "UNSUPPORTED_ORIENTATION"

	// Output errors
	ErrCodeRenderFailed Code = "RENDER_FAILED"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// The outermost *Error in the chain decides.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
