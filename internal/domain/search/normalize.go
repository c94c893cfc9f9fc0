package search

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// normalizer lower-cases text for case-insensitive matching.
// A cases.Caser keeps state, so each normalizer must stay on one goroutine.
type normalizer struct {
	caser cases.Caser
}

func newNormalizer() *normalizer {
	return &normalizer{caser: cases.Lower(language.Und)}
}

func (n *normalizer) lower(s string) string {
	return n.caser.String(s)
}

// Normalize trims and lower-cases a raw query
func Normalize(raw string) string {
	return newNormalizer().lower(strings.TrimSpace(raw))
}

// IsSearchable reports whether a raw query is long enough to search for
func IsSearchable(raw string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(raw)) >= MinQueryLength
}

// Tokenize splits a normalized query on whitespace and drops tokens of one rune or less
func Tokenize(normalized string) []string {
	fields := strings.Fields(normalized)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) > 1 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
