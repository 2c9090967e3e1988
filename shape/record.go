package shape

import (
	"bytes"
	"encoding/json"
)

// A Field is a top-level string field of a record.
type Field struct {
	Key   string
	Value string
}

// A Record is the flat document for one node or way.
type Record struct {
	// Type is the element kind, "node" or "way".
	Type string
	// Fields contains plain attributes (id, visible, ...) and tags in
	// insertion order.
	Fields []Field
	// Pos is [lat, lon] or nil.
	Pos      []float64
	Created  map[string]string
	Address  map[string]string
	NodeRefs []string
}

// Set adds or replaces a top-level field. Replaced fields keep their position.
func (r *Record) Set(key, value string) {
	for i := range r.Fields {
		if r.Fields[i].Key == key {
			r.Fields[i].Value = value
			return
		}
	}
	r.Fields = append(r.Fields, Field{key, value})
}

// Get returns the top-level field key.
func (r *Record) Get(key string) (string, bool) {
	for _, f := range r.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// reserved returns whether key is used by a structured field of r.
func (r *Record) reserved(key string) bool {
	switch key {
	case "type":
		return true
	case "pos":
		return r.Pos != nil
	case "created":
		return len(r.Created) > 0
	case "address":
		return len(r.Address) > 0
	case "node_refs":
		return len(r.NodeRefs) > 0
	}
	return false
}

// MarshalJSON encodes the record as a single flat JSON object. Fields come
// first in insertion order, followed by address, node_refs, created, pos
// and type. Structured fields replace top-level fields of the same name.
func (r *Record) MarshalJSON() ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.WriteByte('{')
	first := true
	add := func(key string, value interface{}) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		// keep <, > and & unescaped, Encode appends a newline
		enc := json.NewEncoder(buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(key); err != nil {
			return err
		}
		buf.Truncate(buf.Len() - 1)
		buf.WriteByte(':')
		if err := enc.Encode(value); err != nil {
			return err
		}
		buf.Truncate(buf.Len() - 1)
		return nil
	}

	for _, f := range r.Fields {
		if r.reserved(f.Key) {
			continue
		}
		if err := add(f.Key, f.Value); err != nil {
			return nil, err
		}
	}
	if len(r.Address) > 0 {
		if err := add("address", r.Address); err != nil {
			return nil, err
		}
	}
	if len(r.NodeRefs) > 0 {
		if err := add("node_refs", r.NodeRefs); err != nil {
			return nil, err
		}
	}
	if len(r.Created) > 0 {
		if err := add("created", r.Created); err != nil {
			return nil, err
		}
	}
	if r.Pos != nil {
		if err := add("pos", r.Pos); err != nil {
			return nil, err
		}
	}
	if err := add("type", r.Type); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
