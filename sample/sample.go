// Package sample writes a smaller OSM XML file with every n-th element of
// the input, e.g. to test shaping rules on a large extract.
package sample

import (
	"encoding/xml"
	"io"

	"github.com/pkg/errors"

	"github.com/omniscale/osmjson/element"
)

const DefaultEvery = 10

type Reader interface {
	Next() (*element.Element, error)
}

// Write writes all nodes, ways and relations of r with an index i where
// i%every == 0. Returns the number of written elements.
func Write(r Reader, w io.Writer, every int) (int, error) {
	if every < 1 {
		return 0, errors.Errorf("invalid sample rate %d", every)
	}

	if _, err := io.WriteString(w, xml.Header+"<osm>\n"); err != nil {
		return 0, errors.Wrap(err, "writing header")
	}

	enc := xml.NewEncoder(w)
	enc.Indent("  ", "  ")

	written := 0
	for i := 0; ; {
		e, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return written, err
		}
		if e.Kind != element.Node && e.Kind != element.Way && e.Kind != element.Relation {
			continue
		}
		if i%every == 0 {
			if err := enc.Encode(e); err != nil {
				return written, errors.Wrapf(err, "writing %s", e)
			}
			written++
		}
		i++
	}
	if err := enc.Flush(); err != nil {
		return written, errors.Wrap(err, "writing elements")
	}
	if _, err := io.WriteString(w, "\n</osm>\n"); err != nil {
		return written, errors.Wrap(err, "writing footer")
	}
	return written, nil
}
