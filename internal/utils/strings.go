package utils

import (
	"strings"
)

// TrimOrEmpty trims surrounding whitespace; whitespace-only input becomes "".
func TrimOrEmpty(s string) string {
	return strings.TrimSpace(s)
}

// NormalizeSpace collapses repeated whitespace into a single space.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizePlate uppercases a licence plate and strips spaces, dots and dashes
// so "abc-123" and "ABC 123" compare equal.
func NormalizePlate(raw string) string {
	var out strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(raw)) {
		if r == ' ' || r == '-' || r == '.' {
			continue
		}
		out.WriteRune(r)
	}
	return out.String()
}

// NormalizeState uppercases a jurisdiction code ("nsw" -> "NSW").
func NormalizeState(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
