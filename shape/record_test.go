package shape

import (
	"encoding/json"
	"testing"
)

func TestRecordMarshalJSON(t *testing.T) {
	rec := &Record{
		Type:     "way",
		Fields:   []Field{{"name", "Main Street"}, {"id", "10"}, {"created", "shadowed"}},
		Pos:      []float64{42.98, -81.24},
		Created:  map[string]string{"user": "bob", "uid": "1"},
		Address:  map[string]string{"street": "Main Street"},
		NodeRefs: []string{"1", "2"},
	}
	b, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	expected := `{"name":"Main Street","id":"10",` +
		`"address":{"street":"Main Street"},"node_refs":["1","2"],` +
		`"created":{"uid":"1","user":"bob"},"pos":[42.98,-81.24],"type":"way"}`
	if string(b) != expected {
		t.Errorf("unexpected json\n%s\n%s", b, expected)
	}
}

func TestRecordMarshalJSONMinimal(t *testing.T) {
	rec := &Record{Type: "node", Fields: []Field{{"created", "kept"}, {"type", "dropped"}}}
	b, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	if expected := `{"created":"kept","type":"node"}`; string(b) != expected {
		t.Errorf("unexpected json\n%s\n%s", b, expected)
	}
}

func TestRecordSet(t *testing.T) {
	rec := &Record{}
	rec.Set("a", "1")
	rec.Set("b", "2")
	rec.Set("a", "3")
	if len(rec.Fields) != 2 || rec.Fields[0] != (Field{"a", "3"}) {
		t.Error("unexpected fields", rec.Fields)
	}
	if _, ok := rec.Get("c"); ok {
		t.Error("unexpected field c")
	}
}
