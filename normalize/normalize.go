// Package normalize canonicalizes raw query and record text before matching.
//
// Normalization lower-cases, strips diacritics, drops everything but letters,
// digits and spaces, and collapses runs of whitespace. The function is pure
// and idempotent: normalizing already-normalized text is a no-op.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes text and removes combining marks, so "Café" and
// "Cafe" normalize to the same string.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize canonicalizes text for matching. Empty input yields an empty
// string; downstream components treat that as "no match", never as an error.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	stripped, _, err := transform.String(stripMarks, text)
	if err != nil {
		// Transform only fails on malformed UTF-8; fall back to the raw text
		// so matching still sees something rather than nothing.
		stripped = text
	}

	stripped = strings.ToLower(stripped)

	var b strings.Builder
	b.Grow(len(stripped))
	lastSpace := true
	for _, r := range stripped {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		default:
			// Everything else collapses to at most one separating space.
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
	}

	return strings.TrimSpace(b.String())
}

// Tokens splits normalized text into its whitespace-separated tokens.
func Tokens(normalized string) []string {
	return strings.Fields(normalized)
}
