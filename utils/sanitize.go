package utils

import (
	"regexp"
	"strings"
)

var tagRegex = regexp.MustCompile(`<[^>]+>`)

// Sanitize strips HTML tags (rough, not a parser) and surrounding whitespace
// from a submitted field before it is formatted into an outbound email.
func Sanitize(value string) string {
	if value == "" {
		return ""
	}
	return strings.TrimSpace(tagRegex.ReplaceAllString(value, ""))
}
