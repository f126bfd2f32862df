package conversation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultMaxInputSize bounds a single user message (4KB).
const DefaultMaxInputSize = 4096

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// SanitizeInput enforces the size limit, validates UTF-8 and trims surrounding
// whitespace. The content itself is never rewritten, so malformed text reaches the
// step validators as typed. A non-positive limit selects DefaultMaxInputSize.
func SanitizeInput(input string, limit int) (string, error) {
	if limit <= 0 {
		limit = DefaultMaxInputSize
	}
	if len(input) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}
	return strings.TrimSpace(input), nil
}

// NormalizeTrackingNumber is the form in which direct operations validate and echo a tracking number.
func NormalizeTrackingNumber(s string) string {
	return strings.TrimSpace(s)
}
