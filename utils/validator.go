package utils

import (
	"regexp"
	"strings"
)

// emailRegex accepts a simple local@domain.tld shape. Full RFC 5322
// validation is deliberately out of scope; the address only has to be
// plausible enough to set as a Reply-To header.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateEmail checks that the provided address has a local@domain.tld shape
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrEmptyEmail
	}
	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

// FieldPresent reports whether a required field carries a non-empty value
// after trimming
func FieldPresent(value string) bool {
	return strings.TrimSpace(value) != ""
}
