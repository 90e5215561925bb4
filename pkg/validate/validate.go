// Package validate holds the small, dependency-free field validators shared
// by the server-side signup path and the client SDK. These deliberately check
// shape only; they are not RFC-complete.
package validate

import "regexp"

var (
	// Single @, non-empty local part, domain must contain a dot. No whitespace.
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^[0-9]{10}$`)
)

// MinPasswordLength is the minimum accepted password length across all
// signup and password-reset surfaces.
const MinPasswordLength = 8

// Email reports whether s looks like an email address: exactly one local part
// and a dot-containing domain, no whitespace.
func Email(s string) bool {
	return emailRe.MatchString(s)
}

// Password reports whether s meets the minimum length policy.
func Password(s string) bool {
	return len(s) >= MinPasswordLength
}

// Phone reports whether s is exactly ten ASCII digits.
func Phone(s string) bool {
	return phoneRe.MatchString(s)
}
