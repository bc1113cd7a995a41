package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnumRun = regexp.MustCompile(`[^a-z0-9]+`)

// GenerateSlug turns free text into a URL slug.
// "Café Olé & Co." → "cafe-ole-co"
func GenerateSlug(input string) string {
	// Step 1: strip diacritics
	ascii := RemoveDiacritics(input)

	// Step 2: lowercase
	lower := strings.ToLower(ascii)

	// Step 3: collapse every non-alphanumeric run into one hyphen
	hyphenated := nonAlnumRun.ReplaceAllString(lower, "-")

	// Step 4: trim leading/trailing hyphens
	return strings.Trim(hyphenated, "-")
}

// NormalizeSlug slugs input and caps the result at maxLen characters,
// never leaving a dangling hyphen.
func NormalizeSlug(input string, maxLen int) string {
	return TruncateSlug(GenerateSlug(input), maxLen)
}

// TruncateSlug caps an already-normalized slug at maxLen.
func TruncateSlug(slug string, maxLen int) string {
	if maxLen <= 0 || len(slug) <= maxLen {
		return slug
	}
	return strings.Trim(slug[:maxLen], "-")
}

// RemoveDiacritics maps accented letters to their base letter.
func RemoveDiacritics(input string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, input)
	if err != nil {
		return input
	}
	return result
}
