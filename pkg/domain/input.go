package domain

import (
	"regexp"
	"strings"
)

var (
	trackingNumberPattern = regexp.MustCompile(`^[A-Z]{2}[0-9]{9}$`)
	emailPattern          = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

var (
	affirmatives = map[string]struct{}{"yes": {}, "y": {}, "yeah": {}, "sure": {}, "ok": {}, "okay": {}}
	negatives    = map[string]struct{}{"no": {}, "n": {}, "nah": {}, "nope": {}}
)

// ValidTrackingNumber reports whether s is two uppercase ASCII letters followed by nine digits.
// The whole string must match; trailing characters are rejected.
func ValidTrackingNumber(s string) bool {
	return trackingNumberPattern.MatchString(s)
}

// ValidEmail performs a loose shape check (local@domain.tld), not RFC validation.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// IsAffirmative reports whether s is one of the accepted "yes" keywords.
func IsAffirmative(s string) bool {
	_, ok := affirmatives[normalizeKeyword(s)]
	return ok
}

// IsNegative reports whether s is one of the accepted "no" keywords.
func IsNegative(s string) bool {
	_, ok := negatives[normalizeKeyword(s)]
	return ok
}

func normalizeKeyword(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
