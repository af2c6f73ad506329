// Package keyword implements text normalization and tokenization helpers
// shared by content fingerprinting and wordlist matching.
package keyword

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonSlugChars  = regexp.MustCompile(`[^\pL\pN]+`)
	nonTokenChars = regexp.MustCompile(`[^\pL\pN\s]+`)
)

// Takes an arbitrary string and returns a version with all non-letter,
// non-digit characters removed, and all lower-case.
func Slugify(orig string) string {
	return strings.ToLower(nonSlugChars.ReplaceAllString(orig, ""))
}

// Canonicalizes free-form text for fingerprinting: lower-case, unicode
// normalization (NFD, strip combining marks, NFC), punctuation stripped,
// runs of whitespace collapsed to single spaces.
//
// Two submissions that differ only in casing, spacing, or decorative
// punctuation normalize to the same string.
func NormalizeText(text string) string {
	return strings.Join(TokenizeText(text), " ")
}

// Splits free-form text in to tokens, including lower-case, unicode
// normalization, and some unicode folding.
func TokenizeText(text string) []string {
	// the transform chain carries state and must not be shared between calls
	normFunc := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	bare := strings.ToLower(nonTokenChars.ReplaceAllString(text, " "))
	out, _, err := transform.String(normFunc, bare)
	if err != nil {
		slog.Warn("unicode normalization error", "err", err)
		out = bare
	}
	return strings.Fields(out)
}
