package order

import "strings"

// Normalize strips leading and trailing whitespace. Empty input is returned
// unchanged.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	return strings.TrimSpace(s)
}
