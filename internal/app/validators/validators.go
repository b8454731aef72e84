// Package validators holds the shape checks applied to profile contact
// fields before they are saved.
package validators

import (
	"regexp"
	"strings"
)

var (
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRegex = regexp.MustCompile(`^\+?[\d\s\-()]{10,}$`)
)

// ValidateEmail reports whether email is present and looks like an address.
func ValidateEmail(email string) bool {
	return email != "" && emailRegex.MatchString(strings.ToLower(email))
}

// ValidatePhone reports whether phone is absent or has at least ten digit,
// space, dash or parenthesis characters with an optional leading plus.
func ValidatePhone(phone string) bool {
	return phone == "" || phoneRegex.MatchString(phone)
}
