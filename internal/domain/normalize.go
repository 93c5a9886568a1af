package domain

import "strings"

// NormalizeMealName trims surrounding whitespace. Inner text is kept exactly as submitted.
func NormalizeMealName(s string) string {
	return strings.TrimSpace(s)
}

// NormalizeEmail trims surrounding whitespace and lower-cases the address so
// uniqueness checks are case-insensitive.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeUsername trims surrounding whitespace. Usernames are otherwise case-sensitive.
func NormalizeUsername(s string) string {
	return strings.TrimSpace(s)
}
