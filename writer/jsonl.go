/*
Package writer writes records as newline-delimited JSON.

Each record is a single JSON document. Compact documents are written on a
single line, pretty documents are indented and end with a newline.
*/
package writer

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/pretty"

	"github.com/omniscale/osmjson/shape"
)

// AutoPrettyLimit is the largest input size for which Auto returns true.
const AutoPrettyLimit = 50 * 1024 * 1024

var prettyOptions = &pretty.Options{Width: 80, Indent: "  "}

// Auto returns whether output for an input of size bytes should be pretty
// printed. Large files are written compact.
func Auto(size int64) bool {
	return size <= AutoPrettyLimit
}

// OutputPath returns the default output path for input.
func OutputPath(input string) string {
	return input + ".json"
}

type JSONL struct {
	w       *bufio.Writer
	pretty  bool
	buf     bytes.Buffer
	enc     *json.Encoder
	closers []io.Closer
	written int
}

// NewJSONL returns a writer for w. Close flushes all buffered records but
// does not close w.
func NewJSONL(w io.Writer, pretty bool) *JSONL {
	jw := &JSONL{
		w:      bufio.NewWriterSize(w, 256*1024),
		pretty: pretty,
	}
	jw.enc = json.NewEncoder(&jw.buf)
	jw.enc.SetEscapeHTML(false)
	return jw
}

// Create creates path and returns a writer for it. The output is gzip
// compressed if path ends with .gz.
func Create(path string, pretty bool) (*JSONL, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "creating output file")
	}
	var w io.Writer = f
	closers := []io.Closer{f}
	if strings.HasSuffix(path, ".gz") {
		gz := gzip.NewWriter(f)
		closers = append([]io.Closer{gz}, closers...)
		w = gz
	}
	jw := NewJSONL(w, pretty)
	jw.closers = closers
	return jw, nil
}

func (jw *JSONL) Write(rec *shape.Record) error {
	jw.buf.Reset()
	if err := jw.enc.Encode(rec); err != nil {
		return errors.Wrap(err, "encoding record")
	}
	b := jw.buf.Bytes()
	if jw.pretty {
		b = pretty.PrettyOptions(b, prettyOptions)
	}
	if _, err := jw.w.Write(b); err != nil {
		return errors.Wrap(err, "writing record")
	}
	jw.written++
	return nil
}

// Written returns the number of written records.
func (jw *JSONL) Written() int {
	return jw.written
}

func (jw *JSONL) Close() error {
	err := jw.w.Flush()
	for _, c := range jw.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	if err != nil {
		return errors.Wrap(err, "closing output")
	}
	return nil
}
