// Package normalize provides utilities for normalizing and sanitizing data.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransformer strips combining marks after NFD decomposition, so
// "Zoë" and "Zoe" fold to the same string.
//
//nolint:gochecknoglobals // Stateless transformer chain, safe to share
var foldTransformer = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Name folds a display name for case- and accent-insensitive matching.
// It lowercases, strips diacritics, drops null bytes and collapses runs
// of whitespace to a single space.
// "  José  GARCÍA " -> "jose garcia"
func Name(raw string) string {
	if raw == "" {
		return ""
	}

	s := sanitizeString(raw)

	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		// Fold failure is not fatal; fall back to the sanitized input.
		folded = s
	}

	folded = strings.ToLower(folded)
	return strings.Join(strings.Fields(folded), " ")
}

// Email canonicalizes an email address for storage and lookup.
// Addresses are compared case-insensitively.
func Email(raw string) string {
	return strings.ToLower(strings.TrimSpace(sanitizeString(raw)))
}

// Date reports whether s is a calendar date in YYYY-MM-DD form with
// plausible month and day components. Reading history and streak state
// store dates as strings, so malformed input has to be caught at the edge.
func Date(s string) bool {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	for i, r := range s {
		if i == 4 || i == 7 {
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	month := int(s[5]-'0')*10 + int(s[6]-'0')
	day := int(s[8]-'0')*10 + int(s[9]-'0')
	return month >= 1 && month <= 12 && day >= 1 && day <= 31
}

// sanitizeString removes null bytes from strings, which can cause
// issues in databases and JSON parsing.
func sanitizeString(s string) string {
	return strings.Map(func(r rune) rune {
		if r == 0 { // null byte
			return -1 // drop it
		}
		return r
	}, s)
}
