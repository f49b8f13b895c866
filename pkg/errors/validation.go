package errors

import (
	"strings"
	"unicode"
)

// maxNameLength bounds dataset and session names.
const maxNameLength = 128

// ValidateName validates a dataset or session name. Names become file names
// and storage keys, so the rules reject anything that could escape a
// directory or collide with key separators:
//   - No empty names
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "name cannot be empty")
	}
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidName, "name too long (max %d characters)", maxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "name contains invalid control characters")
		}
	}
	for _, pattern := range []string{"..", "/", "\\", ":"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidName, "name contains invalid characters: %q", pattern)
		}
	}
	return nil
}
