package errors

import (
	"math"
	"path/filepath"
	"strings"
	"unicode"
)

// ValidateNonNegative rejects negative, NaN and infinite values.
// name identifies the setting in the error message.
func ValidateNonNegative(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidConfig, "%s must be finite, got %v", name, v)
	}
	if v < 0 {
		return New(ErrCodeInvalidConfig, "%s must be non-negative, got %v", name, v)
	}
	return nil
}

// ValidateUnit rejects values outside [0, 1).
func ValidateUnit(name string, v float64) error {
	if err := ValidateNonNegative(name, v); err != nil {
		return err
	}
	if v >= 1 {
		return New(ErrCodeInvalidConfig, "%s must be less than 1, got %v", name, v)
	}
	return nil
}

// ValidateOneOf checks that v is one of the allowed values.
func ValidateOneOf(code Code, name, v string, allowed ...string) error {
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}
	return New(code, "unsupported %s %q (want one of %s)", name, v, strings.Join(allowed, ", "))
}

// ValidatePath validates a data source path referenced from a manifest.
// Manifests received over the network must not escape their base directory.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths and no parent directory segments
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}
	if len(path) > 500 {
		return New(ErrCodeInvalidPath, "path too long (max 500 characters)")
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid control characters")
		}
	}
	if filepath.IsAbs(path) || strings.HasPrefix(path, "/") || strings.HasPrefix(path, "\\") {
		return New(ErrCodeInvalidPath, "path must be relative: %s", path)
	}
	for _, seg := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain '..': %s", path)
		}
	}
	return nil
}
