package util

import "regexp"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`) //nolint:gochecknoglobals // compiled once

// IsValidEmail performs a purely syntactic check. No DNS or deliverability
// lookup is done.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}
