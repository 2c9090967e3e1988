package normalize

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	streetTypeRe       = regexp.MustCompile(`(?i)\b\S+\.?$`)
	streetTypeNumberRe = regexp.MustCompile(`^[^A-Za-z_-][0-9]+`)
)

// Street normalizes the trailing street type of street names.
// A Street is immutable and safe for concurrent use.
type Street struct {
	mapping                  map[string]string
	directions               map[string]struct{}
	normalizeBeforeDirection bool
}

func NewStreet(rules Rules) *Street {
	s := &Street{
		mapping:                  make(map[string]string, len(rules.Mapping)),
		directions:               make(map[string]struct{}, len(rules.Directions)),
		normalizeBeforeDirection: rules.NormalizeBeforeDirection,
	}
	for k, v := range rules.Mapping {
		s.mapping[k] = v
	}
	for _, d := range rules.Directions {
		s.directions[d] = struct{}{}
	}
	return s
}

// StreetType returns the trailing street type token of name,
// e.g. "St." for "123 Main St.".
func StreetType(name string) (string, bool) {
	idx := streetTypeRe.FindStringIndex(name)
	if idx == nil {
		return "", false
	}
	return name[idx[0]:], true
}

// Normalize replaces an abbreviated street type at the end of name.
// Trailing numbers ("Highway Rd 92") are kept and the street type in
// front of them is normalized instead. Names without a known street
// type are returned unchanged.
func (s *Street) Normalize(name string) string {
	streetType, ok := StreetType(name)
	if !ok {
		return name
	}

	if streetTypeNumberRe.MatchString(streetType) {
		return s.normalizeBefore(name, streetType)
	}

	if canonical, ok := s.mapping[streetType]; ok {
		name = trimSuffix(name, streetType) + " " + canonical
		if _, ok := s.directions[canonical]; ok && s.normalizeBeforeDirection {
			// The street type in front of the direction is only
			// normalized when enabled. Without it, "Wonderland Rd S"
			// becomes "Wonderland Rd South".
			name = s.normalizeBefore(name, canonical)
		}
	}
	return name
}

// normalizeBefore normalizes the part of name in front of suffix and
// appends suffix unchanged.
func (s *Street) normalizeBefore(name, suffix string) string {
	return s.Normalize(trimSuffix(name, suffix)) + " " + suffix
}

func trimSuffix(name, suffix string) string {
	return strings.TrimRightFunc(name[:len(name)-len(suffix)], unicode.IsSpace)
}
