package normalize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	postcodeStartRe = regexp.MustCompile(`^[A-Za-z][0-9][A-Za-z]`)
	postcodeEndRe   = regexp.MustCompile(`[0-9][A-Za-z][0-9]`)
)

// Postcode normalizes Canadian postal codes to the "A1A 1A1" format.
// Returns false for codes that do not look like Canadian postal codes,
// these are discarded and not kept in their raw form.
func Postcode(code string) (string, bool) {
	n := utf8.RuneCountInString(code)
	if n < 6 {
		return "", false
	}
	start := postcodeStartRe.FindString(code)
	if start == "" {
		return "", false
	}

	// the second group can have surrounding spaces or extra characters
	end := truncate(strings.TrimSpace(code[len(start):]), 3)
	if !postcodeEndRe.MatchString(end) {
		return "", false
	}

	if n != 7 {
		code = start + " " + end
	}
	return strings.ToUpper(code), true
}

// truncate returns the first n runes of s.
func truncate(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
