package slug

import (
	"regexp"
	"strings"
)

var (
	disallowed = regexp.MustCompile(`[^a-zA-Z0-9\t\n\v\f\r ]`)
	whitespace = regexp.MustCompile(`[\t\n\v\f\r ]+`)
)

// Make derives a URL slug from a title. Every character that is not an ASCII
// letter, digit or whitespace is dropped, the result is trimmed and
// lowercased, and each whitespace run becomes a single hyphen.
func Make(title string) string {
	cleaned := strings.ToLower(strings.TrimSpace(disallowed.ReplaceAllString(title, "")))
	return whitespace.ReplaceAllString(cleaned, "-")
}
