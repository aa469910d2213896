// Package errors provides structured error types for stackplot.
//
// Configuration mistakes (an invalid orientation, a negative tick length, a
// second axis assigned to the same slot) are reported through coded errors
// at the call that introduced them. Recoverable conditions such as missing
// data or duplicate dataset keys are not errors and never reach this package.
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: configuration and input validation failures
//   - ALREADY_*: lifecycle violations on components and slots
//   - NOT_*: lookups and deregistrations of unknown things
//   - *_FAILED: failures of the outer pipeline (loading, rendering)
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidOrientation, "unsupported orientation %q", o)
//	if errors.Is(err, errors.ErrCodeInvalidOrientation) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeLoadFailed, origErr, "read %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Configuration errors
	ErrCodeInvalidConfig      Code = "INVALID_CONFIG"
	ErrCodeInvalidOrientation Code = "INVALID_ORIENTATION"
	ErrCodeInvalidFormat      Code = "INVALID_FORMAT"
	ErrCodeInvalidManifest    Code = "INVALID_MANIFEST"
	ErrCodeInvalidPath        Code = "INVALID_PATH"
	ErrCodeWeightNotSettable  Code = "WEIGHT_NOT_SETTABLE"
	ErrCodeUnsupportedValue   Code = "UNSUPPORTED_VALUE"

	// Lifecycle errors
	ErrCodeAlreadyAssigned Code = "ALREADY_ASSIGNED"
	ErrCodeAlreadyAnchored Code = "ALREADY_ANCHORED"
	ErrCodeCellOccupied    Code = "CELL_OCCUPIED"
	ErrCodeNotRegistered   Code = "NOT_REGISTERED"
	ErrCodeNotAnchored     Code = "NOT_ANCHORED"

	// Lookup errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Pipeline errors
	ErrCodeLoadFailed   Code = "LOAD_FAILED"
	ErrCodeRenderFailed Code = "RENDER_FAILED"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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
// It unwraps the error chain looking for an *Error with a matching code.
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

// Join combines several errors into one, skipping nils.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
