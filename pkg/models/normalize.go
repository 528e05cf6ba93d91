package models

import (
	"strings"
	"unicode"
)

// NormalizeTitle converts a title to its canonical comparison form:
// lowercase, non-alphanumeric runs collapsed to single spaces, trimmed.
// Two sources describing the same title normalize to the same key.
func NormalizeTitle(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))

	prevSpace := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || unicode.IsDigit(r) {
			b.WriteRune(r)
			prevSpace = false
			continue
		}
		if !prevSpace {
			b.WriteRune(' ')
			prevSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// Slugify derives a deterministic synthetic slug from a title.
// Used when an upstream item carries no usable slug or link.
func Slugify(title string) string {
	return strings.ReplaceAll(NormalizeTitle(title), " ", "-")
}
