// Package sanitize cleans user-provided text before it is stored.
package sanitize

import (
	"html"
	"regexp"
	"strings"
)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// stripHTML removes HTML tags and decodes entities. Tags are stripped again
// after decoding so that encoded markup such as "&lt;b&gt;" does not survive.
func stripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	result = html.UnescapeString(result)
	result = htmlTagRegex.ReplaceAllString(result, "")
	return result
}

// Text strips markup and surrounding whitespace from free-text input such as
// message content.
func Text(s string) string {
	return strings.TrimSpace(stripHTML(s))
}
