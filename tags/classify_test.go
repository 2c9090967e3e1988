package tags

import "testing"

func TestClassify(t *testing.T) {
	for _, tc := range []struct {
		key   string
		class Class
	}{
		{"name", Plain},
		{"building", Plain},
		{"old_name", Plain},
		{"_", Plain},
		{"addr:street", ColonSeparated},
		{"name:en", ColonSeparated},
		{"addr_x:street_y", ColonSeparated},
		{"addr:street:name", Other},
		{"addr:", Other},
		{":street", Other},
		{":", Other},
		{"addr street", ProblemChars},
		{"name.en", ProblemChars},
		{"fee=yes", ProblemChars},
		{"a/b", ProblemChars},
		{"a,b", ProblemChars},
		{"tab\tkey", ProblemChars},
		{"new\nline", ProblemChars},
		{"Addr:Street", Other},
		{"Name", Other},
		{"is_in:iso_3166_2", Other},
		{"name_1", Other},
		{"straße", Other},
		// mixed case and problem chars: problem chars are checked before Other
		{"Addr Street", ProblemChars},
	} {
		if c := Classify(tc.key); c != tc.class {
			t.Errorf("%q: expected %s, got %s", tc.key, tc.class, c)
		}
	}
}

// The empty key matches the plain pattern. This is kept for compatibility
// with existing exports, even though OSM editors do not create empty keys.
func TestClassifyEmptyKeyIsPlain(t *testing.T) {
	if c := Classify(""); c != Plain {
		t.Errorf("expected empty key to be plain, got %s", c)
	}
}

func TestClassifyAllLowercase(t *testing.T) {
	key := ""
	for c := 'a'; c <= 'z'; c++ {
		key += string(c)
		if cls := Classify(key); cls != Plain {
			t.Errorf("%q: expected plain, got %s", key, cls)
		}
		if cls := Classify(key + "_"); cls != Plain {
			t.Errorf("%q: expected plain, got %s", key+"_", cls)
		}
	}
}

func TestClassString(t *testing.T) {
	if s := ColonSeparated.String(); s != "colon_separated" {
		t.Error(s)
	}
	if s := Class(42).String(); s != "other" {
		t.Error(s)
	}
}
