package utils

import "strings"

// TrimOrEmpty normalizes user input without turning nil into "nil".
func TrimOrEmpty(s string) string {
	return strings.TrimSpace(s)
}

// NormalizeSpace collapses repeated whitespace into a single space.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizePhone strips separators so channel detection and SMS delivery
// see a bare digit string with an optional leading plus.
func NormalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)
	var out strings.Builder
	for i, r := range raw {
		if r >= '0' && r <= '9' {
			out.WriteRune(r)
			continue
		}
		if r == '+' && i == 0 {
			out.WriteRune(r)
		}
	}
	return out.String()
}
