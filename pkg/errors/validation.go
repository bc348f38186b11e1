package errors

import (
	"strings"
	"unicode"
)

// ValidateNodeID validates a node identifier for use in similarity
// matrices and spatial indexes.
//
// The validation rules are intentionally conservative:
//   - No empty ids
//   - No control characters or null bytes
//   - No "|" (reserved as the matrix pair-key separator)
//   - Maximum length of 256 characters
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "node id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "node id too long (max 256 characters)")
	}

	for _, r := range id {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "node id contains invalid control characters")
		}
	}

	if strings.Contains(id, "|") {
		return New(ErrCodeInvalidInput, "node id cannot contain %q", "|")
	}

	return nil
}

// ValidateOutputPath validates a file path supplied for export output.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "output path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "output path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "output path contains invalid characters")
		}
	}

	return nil
}
