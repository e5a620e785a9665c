package database

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// removeDiacritics strips diacritical marks (e.g. "tmavě rudá" -> "tmave ruda").
func removeDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// NormalizeSwatchName canonicalizes a user-typed swatch name for lookup:
// diacritics folded, lowercased, dashes and runs of whitespace collapsed to
// single spaces. Returns an error when nothing is left.
func NormalizeSwatchName(name string) (string, error) {
	s := removeDiacritics(name)
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return "", errors.New("swatch name is empty")
	}
	return s, nil
}
