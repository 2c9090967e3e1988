package normalize

import (
	"sort"
	"sync"
)

// Audit collects street types that are not in the list of expected types,
// together with the street names that use them. The result is used to
// extend the mapping rules.
type Audit struct {
	mu       sync.Mutex
	expected map[string]struct{}
	types    map[string]map[string]struct{}
}

type AuditEntry struct {
	StreetType string
	Names      []string
}

func NewAudit(rules Rules) *Audit {
	a := &Audit{
		expected: make(map[string]struct{}, len(rules.Expected)),
		types:    make(map[string]map[string]struct{}),
	}
	for _, e := range rules.Expected {
		a.expected[e] = struct{}{}
	}
	return a
}

// Add records the street type of name if it is unexpected.
func (a *Audit) Add(name string) {
	streetType, ok := StreetType(name)
	if !ok {
		return
	}
	if _, ok := a.expected[streetType]; ok {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	names, ok := a.types[streetType]
	if !ok {
		names = make(map[string]struct{})
		a.types[streetType] = names
	}
	names[name] = struct{}{}
}

// Entries returns all unexpected street types sorted by type. Names are
// sorted as well.
func (a *Audit) Entries() []AuditEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	entries := make([]AuditEntry, 0, len(a.types))
	for streetType, names := range a.types {
		e := AuditEntry{StreetType: streetType, Names: make([]string, 0, len(names))}
		for n := range names {
			e.Names = append(e.Names, n)
		}
		sort.Strings(e.Names)
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].StreetType < entries[j].StreetType
	})
	return entries
}
