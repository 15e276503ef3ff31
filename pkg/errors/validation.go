package errors

import (
	"math"
	"path/filepath"
	"strings"
)

// ValidateDimension checks that a pixel dimension is finite and not negative.
// name is used in the error message (e.g. "gutter").
func ValidateDimension(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidInput, "%s must be a finite number", name)
	}
	if v < 0 {
		return New(ErrCodeInvalidInput, "%s must be >= 0, got %v", name, v)
	}
	return nil
}

// ValidatePositive checks that a pixel dimension is finite and strictly positive.
func ValidatePositive(name string, v float64) error {
	if err := ValidateDimension(name, v); err != nil {
		return err
	}
	if v == 0 {
		return New(ErrCodeInvalidInput, "%s must be > 0", name)
	}
	return nil
}

// ValidateFeedPath validates a feed file path supplied on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - No null bytes
//   - Extension must be .json or .toml
func ValidateFeedPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "feed path cannot be empty")
	}
	if strings.ContainsRune(path, 0) {
		return New(ErrCodeInvalidPath, "feed path contains a null byte")
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".toml":
		return nil
	default:
		return New(ErrCodeInvalidFormat, "unsupported feed format %q (must be .json or .toml)", filepath.Ext(path))
	}
}
