package normalize

import (
	"reflect"
	"testing"
)

func TestAudit(t *testing.T) {
	a := NewAudit(DefaultRules())
	for _, name := range []string{
		"123 Main St.",
		"Wonderland Rd",
		"Richmond Street",
		"Oxford St.",
		"Oxford St.",
		"Hwy 92",
		"Hyde Park Rd ",
	} {
		a.Add(name)
	}

	expected := []AuditEntry{
		{StreetType: "92", Names: []string{"Hwy 92"}},
		{StreetType: "Rd", Names: []string{"Wonderland Rd"}},
		{StreetType: "St.", Names: []string{"123 Main St.", "Oxford St."}},
	}
	if entries := a.Entries(); !reflect.DeepEqual(entries, expected) {
		t.Errorf("unexpected entries\n%v\n%v", entries, expected)
	}
}

func TestAuditEmpty(t *testing.T) {
	a := NewAudit(DefaultRules())
	if entries := a.Entries(); len(entries) != 0 {
		t.Error("expected no entries", entries)
	}
}
