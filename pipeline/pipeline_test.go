package pipeline

import (
	"context"
	"fmt"
	"bufio"
	"io"
	"runtime"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/omniscale/osmjson/element"
	"github.com/omniscale/osmjson/normalize"
	"github.com/omniscale/osmjson/parser/osmxml"
	"github.com/omniscale/osmjson/shape"
)

func newShaper() *shape.Shaper {
	return shape.New(normalize.NewStreet(normalize.DefaultRules()))
}

// testDoc returns an OSM document with k nodes and ways interleaved with m
// relations.
func testDoc(k, m int) string {
	buf := &strings.Builder{}
	buf.WriteString(`<?xml version="1.0"?><osm version="0.6">`)
	for i := 0; i < k; i++ {
		if i%2 == 0 {
			fmt.Fprintf(buf, `<node id="%d" lat="1" lon="2"><tag k="name" v="n%d"/></node>`, i, i)
		} else {
			fmt.Fprintf(buf, `<way id="%d"><nd ref="1"/><tag k="name" v="Main St"/></way>`, i)
		}
		if i < m {
			fmt.Fprintf(buf, `<relation id="%d"><member type="way" ref="1" role=""/></relation>`, 1000+i)
		}
	}
	buf.WriteString(`</osm>`)
	return buf.String()
}

type counter struct {
	elements, records int
}

func (c *counter) AddElement(kind element.Kind) { c.elements++ }
func (c *counter) AddRecord()                   { c.records++ }

func TestDriverOrder(t *testing.T) {
	d := New(osmxml.New(strings.NewReader(testDoc(50, 7))), newShaper())
	c := &counter{}
	d.SetCounter(c)

	var recs []*shape.Record
	err := d.Run(context.Background(), SinkFunc(func(rec *shape.Record) error {
		recs = append(recs, rec)
		return nil
	}))
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 50 {
		t.Fatalf("expected 50 records, got %d", len(recs))
	}
	for i, rec := range recs {
		if id, _ := rec.Get("id"); id != fmt.Sprint(i) {
			t.Errorf("%d: unexpected id %s", i, id)
		}
		if i%2 == 0 && rec.Type != "node" || i%2 == 1 && rec.Type != "way" {
			t.Errorf("%d: unexpected type %s", i, rec.Type)
		}
	}
	if c.elements != 57 || c.records != 50 {
		t.Error("unexpected counts", c)
	}

	// not restartable
	if _, err := d.Next(); err != io.EOF {
		t.Error("expected EOF, got", err)
	}
}

func TestDriverEmpty(t *testing.T) {
	d := New(osmxml.New(strings.NewReader(`<osm></osm>`)), newShaper())
	if _, err := d.Next(); err != io.EOF {
		t.Error("expected EOF, got", err)
	}
}

func TestDriverShapeError(t *testing.T) {
	doc := `<osm><node id="1"/><way id="2"><tag k="lanes" v="two"/><tag k="name" v="x"/></way><node id="3"/></osm>`
	d := New(osmxml.New(strings.NewReader(doc)), newShaper())
	n := 0
	err := d.Run(context.Background(), SinkFunc(func(rec *shape.Record) error {
		n++
		return nil
	}))
	if errors.Cause(err) != shape.ErrInvalidLanes {
		t.Error("expected ErrInvalidLanes, got", err)
	}
	if n != 1 {
		t.Error("unexpected number of written records", n)
	}
	if _, err2 := d.Next(); err2 != err {
		t.Error("error not permanent", err2)
	}
}

func TestDriverSinkError(t *testing.T) {
	d := New(osmxml.New(strings.NewReader(testDoc(3, 0))), newShaper())
	errFull := errors.New("disk full")
	err := d.Run(context.Background(), SinkFunc(func(rec *shape.Record) error {
		return errFull
	}))
	if errors.Cause(err) != errFull {
		t.Error("expected sink error, got", err)
	}
}

func TestDriverCanceled(t *testing.T) {
	d := New(osmxml.New(strings.NewReader(testDoc(3, 0))), newShaper())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n := 0
	err := d.Run(ctx, SinkFunc(func(rec *shape.Record) error {
		n++
		return nil
	}))
	if err != context.Canceled || n != 0 {
		t.Error("expected canceled run, got", err, n)
	}
}

func TestDriverMalformed(t *testing.T) {
	d := New(osmxml.New(strings.NewReader(`<osm><node id="1"></osm>`)), newShaper())
	if _, err := d.Next(); err == nil || err == io.EOF {
		t.Error("expected syntax error, got", err)
	}
}

// streamNodes writes an OSM document with n nodes into a pipe.
func streamNodes(n int) io.Reader {
	pr, pw := io.Pipe()
	go func() {
		w := bufio.NewWriter(pw)
		w.WriteString(`<?xml version="1.0"?><osm version="0.6">`)
		for i := 0; i < n; i++ {
			fmt.Fprintf(w, `<node id="%d" lat="42.98" lon="-81.24"><tag k="addr:street" v="Wonderland Rd"/><tag k="addr:postcode" v="N6K 1M6"/></node>`, i)
		}
		w.WriteString(`</osm>`)
		pw.CloseWithError(w.Flush())
	}()
	return pr
}

// peakHeap runs n streamed nodes through a Driver and returns the peak
// HeapInuse, sampled after a GC every 5000 records.
func peakHeap(t *testing.T, n int) uint64 {
	t.Helper()
	d := New(osmxml.New(streamNodes(n)), newShaper())
	var peak uint64
	var ms runtime.MemStats
	records := 0
	err := d.Run(context.Background(), SinkFunc(func(rec *shape.Record) error {
		records++
		if records%5000 == 0 {
			runtime.GC()
			runtime.ReadMemStats(&ms)
			if ms.HeapInuse > peak {
				peak = ms.HeapInuse
			}
		}
		return nil
	}))
	if err != nil {
		t.Fatal(err)
	}
	if records != n {
		t.Fatalf("expected %d records, got %d", n, records)
	}
	return peak
}

func TestDriverBoundedMemory(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping in short mode")
	}
	small := peakHeap(t, 20000)
	large := peakHeap(t, 400000)
	t.Logf("peak heap in use: %d (20k nodes), %d (400k nodes)", small, large)
	if large > 2*small+1<<20 {
		t.Errorf("heap grows with input size: %d > %d", large, small)
	}
}
