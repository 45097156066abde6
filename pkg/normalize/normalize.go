// Package normalize converts loosely formatted source values into the
// canonical representations used by the client registry.
//
// Every function here is total and deterministic. Functions that can reject
// input return (value, ok): when ok is false the input was present but
// malformed, and value is the field's safe default. Callers count those
// cases; they never abort a run.
package normalize

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// HalfWidth folds full-width ASCII (digits, Latin letters, punctuation, the
// ideographic space) to half-width. Katakana are left untouched.
func HalfWidth(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if p := width.LookupRune(r); p.Kind() == width.EastAsianFullwidth {
			if n := p.Narrow(); n != 0 {
				r = n
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Text trims surrounding whitespace (including the ideographic space) from a
// free-text value.
func Text(s string) string {
	return strings.TrimSpace(s)
}

// Compact folds width and removes every whitespace rune.
func Compact(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, HalfWidth(s))
}

// Int parses an amount such as "３，０００円" or "¥3,000".
func Int(raw string) (int, bool) {
	s := strings.NewReplacer(",", "", "円", "", "¥", "", "￥", "").Replace(Compact(raw))
	if s == "" {
		return 0, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Flag interprets the check marks spreadsheets use for yes/no columns.
func Flag(raw string) (bool, bool) {
	switch strings.ToLower(Compact(raw)) {
	case "":
		return false, true
	case "〇", "○", "◯", "●", "1", "true", "yes", "y", "有", "あり":
		return true, true
	case "×", "✕", "x", "0", "false", "no", "n", "無", "なし", "-":
		return false, true
	}
	return false, false
}
