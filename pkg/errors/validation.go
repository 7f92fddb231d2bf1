package errors

import (
	"strings"
	"unicode"
)

// ValidateWindow validates a target-value search window.
// The target and tolerance must both be non-negative.
func ValidateWindow(target, tolerance int64) error {
	if target < 0 {
		return New(ErrCodeInvalidInput, "target length must not be negative: %d", target)
	}
	if tolerance < 0 {
		return New(ErrCodeInvalidInput, "tolerance must not be negative: %d", tolerance)
	}
	return nil
}

// ValidateThreshold validates a clustering distance threshold.
func ValidateThreshold(d int64) error {
	if d < 0 {
		return New(ErrCodeInvalidInput, "distance threshold must not be negative: %d", d)
	}
	return nil
}

// ValidateStoreKey validates a snapshot key before it reaches a backend.
//
// Keys are generated by a keyer, so anything else is treated as a
// programming error:
//   - No empty keys
//   - No whitespace or control characters
//   - Maximum length of 256 characters
func ValidateStoreKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidInput, "store key cannot be empty")
	}
	if len(key) > 256 {
		return New(ErrCodeInvalidInput, "store key too long (max 256 characters)")
	}
	for _, r := range key {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "store key contains invalid characters")
		}
	}
	return nil
}

// ValidatePath validates a filesystem path taken from configuration.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	for _, part := range strings.Split(path, "/") {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}
