package import_

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/omniscale/osmjson/config"
	"github.com/omniscale/osmjson/element"
)

const testOSM = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="osmjson test">
 <node id="1" version="2" user="bob" uid="7" lat="42.98" lon="-81.24">
  <tag k="addr:street" v="Wonderland Rd"/>
  <tag k="addr:postcode" v="n6g5e3"/>
  <tag k="amenity" v="cafe"/>
 </node>
 <way id="2">
  <nd ref="1"/>
  <nd ref="3"/>
  <tag k="lanes" v="2"/>
  <tag k="name" v="Oxford St W"/>
 </way>
 <relation id="3"><member type="way" ref="2" role=""/></relation>
</osm>
`

func TestImport(t *testing.T) {
	dir, err := ioutil.TempDir("", "osmjson_import_test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	var inputs []string
	for _, name := range []string{"a.osm", "b.osm"} {
		fname := filepath.Join(dir, name)
		if err := ioutil.WriteFile(fname, []byte(testOSM), 0644); err != nil {
			t.Fatal(err)
		}
		inputs = append(inputs, fname)
	}

	opts := config.Import{
		Base:    config.Base{Quiet: true},
		Compact: true,
		Procs:   2,
		Files:   inputs,
	}
	if err := Import(context.Background(), opts); err != nil {
		t.Fatal(err)
	}

	for _, input := range inputs {
		b, err := ioutil.ReadFile(input + ".json")
		if err != nil {
			t.Fatal(err)
		}
		lines := strings.Split(strings.TrimSpace(string(b)), "\n")
		if len(lines) != 2 {
			t.Fatalf("expected two records, got %q", b)
		}
		expected := `{"amenity":"cafe","id":"1","address":{"postcode":"N6G 5E3","street":"Wonderland Road"},` +
			`"created":{"uid":"7","user":"bob","version":"2"},"pos":[42.98,-81.24],"type":"node"}`
		if lines[0] != expected {
			t.Errorf("unexpected node\n%s\n%s", lines[0], expected)
		}
		var way map[string]interface{}
		if err := json.Unmarshal([]byte(lines[1]), &way); err != nil {
			t.Fatal(err)
		}
		if way["name"] != "Oxford St West" || way["type"] != "way" {
			t.Error("unexpected way", way)
		}
	}
}

func TestImportErrors(t *testing.T) {
	dir, err := ioutil.TempDir("", "osmjson_import_test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	broken := filepath.Join(dir, "broken.osm")
	if err := ioutil.WriteFile(broken, []byte(`<osm><node id="1"/><node id="2"></osm>`), 0644); err != nil {
		t.Fatal(err)
	}

	for _, files := range [][]string{
		{broken},
		{filepath.Join(dir, "missing.osm")},
	} {
		opts := config.Import{Base: config.Base{Quiet: true}, Procs: 1, Files: files}
		if err := Import(context.Background(), opts); err == nil {
			t.Errorf("%v: expected error", files)
		}
	}
	if _, err := os.Stat(broken + ".json"); !os.IsNotExist(err) {
		t.Error("partial output not removed", err)
	}

	opts := config.Import{Base: config.Base{Quiet: true, RulesFile: filepath.Join(dir, "missing.yml")}, Procs: 1}
	if err := Import(context.Background(), opts); err == nil {
		t.Error("expected rules error")
	}
}

func TestFormatHeader(t *testing.T) {
	attrs := element.Attrs{{Key: "version", Value: "0.6"}, {Key: "generator", Value: "osmjson test"}}
	if s := formatHeader(attrs); s != "version=0.6 generator=osmjson test" {
		t.Error("unexpected header", s)
	}
}
