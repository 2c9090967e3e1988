package element

import (
	"encoding/xml"
	"testing"
)

func TestAttrsGet(t *testing.T) {
	attrs := Attrs{{"id", "1"}, {"lat", "42.9"}, {"id", "2"}}

	if v, ok := attrs.Get("id"); !ok || v != "1" {
		t.Error("expected first id attribute", v, ok)
	}
	if v, ok := attrs.Get("lon"); ok || v != "" {
		t.Error("unexpected lon attribute", v, ok)
	}
}

func TestChildrenNamed(t *testing.T) {
	e := Element{
		Kind: Way,
		Children: []Child{
			{Name: "nd", Attrs: Attrs{{"ref", "1"}}},
			{Name: "tag", Attrs: Attrs{{"k", "highway"}, {"v", "residential"}}},
			{Name: "nd", Attrs: Attrs{{"ref", "2"}}},
		},
	}
	nds := e.ChildrenNamed("nd")
	if len(nds) != 2 {
		t.Fatal("expected two nd children", nds)
	}
	if ref, _ := nds[1].Attrs.Get("ref"); ref != "2" {
		t.Error("nd children not in document order", nds)
	}
	if tags := e.ChildrenNamed("member"); tags != nil {
		t.Error("unexpected member children", tags)
	}
}

func TestMarshalXML(t *testing.T) {
	e := &Element{
		Kind:  Node,
		Attrs: Attrs{{"id", "123"}, {"lat", "42.98"}, {"lon", "-81.24"}},
		Children: []Child{
			{Name: "tag", Attrs: Attrs{{"k", "name"}, {"v", "A & B"}}},
		},
	}
	out, err := xml.Marshal(e)
	if err != nil {
		t.Fatal(err)
	}
	expected := `<node id="123" lat="42.98" lon="-81.24"><tag k="name" v="A &amp; B"></tag></node>`
	if string(out) != expected {
		t.Errorf("unexpected xml\n%s\n%s", out, expected)
	}
	if e.String() != "node 123" {
		t.Error("unexpected string", e.String())
	}
}
