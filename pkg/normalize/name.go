package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Name prepares a person or phonetic name for comparison: NFKC folding
// (full-width Latin and half-width katakana), hiragana folded to katakana,
// lower-case, punctuation stripped, whitespace collapsed to single spaces.
func Name(s string) string {
	s = norm.NFKC.String(s)
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'ぁ' && r <= 'ゖ':
			return r + ('ァ' - 'ぁ')
		case unicode.IsPunct(r):
			return -1
		}
		return unicode.ToLower(r)
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// DisplayName joins family and given names the way the roster displays them.
func DisplayName(family, given string) string {
	family, given = Text(family), Text(given)
	switch {
	case family == "":
		return given
	case given == "":
		return family
	}
	return family + " " + given
}

// GivenName returns the last whitespace-separated part of a display name.
func GivenName(display string) string {
	parts := strings.Fields(norm.NFKC.String(display))
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}
