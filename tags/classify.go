/*
Package tags classifies OSM tag keys by their character set.

Only Plain and ColonSeparated keys are copied into records; keys with problem
characters or any other shape are dropped.
*/
package tags

import "strings"

type Class int

const (
	// Plain keys contain only lowercase letters and underscores.
	Plain Class = iota
	// ColonSeparated keys are two plain parts joined by a single colon.
	ColonSeparated
	// ProblemChars keys contain characters that are invalid in field names.
	ProblemChars
	// Other is everything else, e.g. keys with upper case letters or digits.
	Other
)

func (c Class) String() string {
	switch c {
	case Plain:
		return "plain"
	case ColonSeparated:
		return "colon_separated"
	case ProblemChars:
		return "problem_chars"
	default:
		return "other"
	}
}

const problemChars = "=+/&<>;'\"?%#$@,. \t\r\n"

type rule struct {
	class Class
	match func(string) bool
}

// rules are checked in order, the first match wins.
var rules = []rule{
	{Plain, isPlain},
	{ColonSeparated, isColonSeparated},
	{ProblemChars, hasProblemChars},
}

// Classify returns the class of key. The empty key is Plain.
func Classify(key string) Class {
	for _, r := range rules {
		if r.match(key) {
			return r.class
		}
	}
	return Other
}

func isPlainChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || c == '_'
}

func isPlain(key string) bool {
	for i := 0; i < len(key); i++ {
		if !isPlainChar(key[i]) {
			return false
		}
	}
	return true
}

func isColonSeparated(key string) bool {
	idx := strings.IndexByte(key, ':')
	if idx <= 0 || idx == len(key)-1 {
		return false
	}
	return isPlain(key[:idx]) && isPlain(key[idx+1:])
}

func hasProblemChars(key string) bool {
	return strings.ContainsAny(key, problemChars)
}
