/*
Package reader opens OSM files as streams of elements.

OSM XML files can be uncompressed (.osm), gzip (.osm.gz) or bzip2 (.osm.bz2)
compressed. PBF files (.osm.pbf) are read with github.com/omniscale/go-osm.
*/
package reader

import (
	"bufio"
	"compress/bzip2"
	"compress/gzip"
	"context"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/omniscale/osmjson/element"
	"github.com/omniscale/osmjson/log"
	"github.com/omniscale/osmjson/parser/osmxml"
)

// Reader returns the elements of an OSM file in file order.
type Reader interface {
	// Next returns the next element or io.EOF.
	Next() (*element.Element, error)
	// Header returns the attributes of the file header, like the
	// generator of XML files or the replication timestamp of PBF files.
	Header() element.Attrs
	Close() error
}

type Format int

const (
	XML Format = iota
	XMLGzip
	XMLBzip2
	PBF
)

// FormatOf returns the format of filename based on its extension.
func FormatOf(filename string) Format {
	switch {
	case strings.HasSuffix(filename, ".pbf"):
		return PBF
	case strings.HasSuffix(filename, ".gz"):
		return XMLGzip
	case strings.HasSuffix(filename, ".bz2"):
		return XMLBzip2
	default:
		return XML
	}
}

// Open opens filename. The context is used to stop background parsing of
// PBF files.
func Open(ctx context.Context, filename string) (Reader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "opening OSM file")
	}

	format := FormatOf(filename)
	if format == PBF {
		log.Printf("[info] reading %s as PBF", filename)
		r, err := newPBFReader(ctx, f)
		if err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "opening %s", filename)
		}
		return r, nil
	}

	r, err := NewXML(f, format)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "opening %s", filename)
	}
	return r, nil
}

type xmlReader struct {
	*osmxml.Parser
	closers []io.Closer
}

// NewXML returns a Reader for OSM XML. r is closed by Close if it
// implements io.Closer.
func NewXML(r io.Reader, format Format) (Reader, error) {
	xr := &xmlReader{}
	if c, ok := r.(io.Closer); ok {
		xr.closers = append(xr.closers, c)
	}

	var in io.Reader = bufio.NewReaderSize(r, 64*1024)
	switch format {
	case XMLGzip:
		gz, err := gzip.NewReader(in)
		if err != nil {
			return nil, errors.Wrap(err, "reading gzip header")
		}
		xr.closers = append(xr.closers, gz)
		in = gz
	case XMLBzip2:
		in = bzip2.NewReader(in)
	case PBF:
		return nil, errors.New("PBF is not an XML format")
	}

	xr.Parser = osmxml.New(in)
	return xr, nil
}

func (r *xmlReader) Close() error {
	var err error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if cerr := r.closers[i].Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
