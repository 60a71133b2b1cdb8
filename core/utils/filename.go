package utils

import (
	"strings"
	"unicode"
)

// SanitizeFilename lowercases s and replaces every non-alphanumeric run
// with a single dash, producing a token safe for attachment filenames.
func SanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('-')
		}
	}

	parts := strings.FieldsFunc(b.String(), func(r rune) bool { return r == '-' })
	return strings.Join(parts, "-")
}
