package playlist

import (
	"regexp"
	"strings"
	ucd "unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	parenRe = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]`)
	featRe  = regexp.MustCompile(`(?i)\b(?:feat|ft|featuring)\.?\s+.*$`)
	spaceRe = regexp.MustCompile(`\s+`)

	// NFKD + strip combining marks, so "Beyoncé" and "Beyonce" compare equal.
	foldTransformer = transform.Chain(norm.NFKD, runes.Remove(runes.In(ucd.Mn)), norm.NFC)
)

// Normalize folds a title or artist for comparison: lowercase, diacritics
// stripped, parenthesized edition/remaster annotations and featured-artist
// markers removed, apostrophes dropped, whitespace collapsed.
func Normalize(value string) string {
	if value == "" {
		return ""
	}

	if folded, _, err := transform.String(foldTransformer, value); err == nil {
		value = folded
	}

	value = strings.ToLower(value)
	value = parenRe.ReplaceAllString(value, " ")
	value = featRe.ReplaceAllString(value, " ")
	value = strings.NewReplacer("'", "", "’", "", "`", "", "&", " and ").Replace(value)
	value = spaceRe.ReplaceAllString(value, " ")

	return strings.TrimSpace(value)
}
