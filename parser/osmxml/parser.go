/*
Package osmxml provides a stream based parser for OSM XML files (.osm).
*/
package osmxml

import (
	"encoding/xml"
	"io"

	"github.com/pkg/errors"

	"github.com/omniscale/osmjson/element"
)

// Parser returns one top-level element (node, way, relation) at a time.
// Only the current element is kept in memory, so files of any size can be
// parsed with constant memory.
type Parser struct {
	decoder *xml.Decoder
	header  element.Attrs
	root    bool
	err     error
}

func New(r io.Reader) *Parser {
	return &Parser{decoder: xml.NewDecoder(r)}
}

// Header returns the attributes of the root element (e.g. version and
// generator of <osm>). Available after the first call to Next.
func (p *Parser) Header() element.Attrs {
	return p.header
}

// Next returns the next node, way or relation in document order.
// Returns io.EOF if there are no more elements. All other errors are
// permanent and returned for all following calls.
func (p *Parser) Next() (*element.Element, error) {
	if p.err != nil {
		return nil, p.err
	}
	e, err := p.next()
	if err != nil {
		p.err = err
	}
	return e, err
}

func (p *Parser) next() (*element.Element, error) {
	var elem *element.Element
	depth := 0

	for {
		token, err := p.decoder.Token()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			return nil, errors.Wrap(err, "decoding next XML token")
		}

		switch tok := token.(type) {
		case xml.StartElement:
			if elem != nil {
				depth++
				if depth == 1 {
					// only direct children (tag, nd, member) are kept
					elem.Children = append(elem.Children, element.Child{
						Name:  tok.Name.Local,
						Attrs: attrs(tok.Attr),
					})
				}
				continue
			}
			switch kind := element.Kind(tok.Name.Local); kind {
			case element.Node, element.Way, element.Relation:
				elem = &element.Element{Kind: kind, Attrs: attrs(tok.Attr)}
			default:
				if !p.root {
					p.root = true
					p.header = attrs(tok.Attr)
				}
				// bounds, changeset, etc. are skipped
			}
		case xml.EndElement:
			if elem == nil {
				continue
			}
			if depth == 0 {
				return elem, nil
			}
			depth--
		}
	}
}

func attrs(xattrs []xml.Attr) element.Attrs {
	if len(xattrs) == 0 {
		return nil
	}
	a := make(element.Attrs, len(xattrs))
	for i, attr := range xattrs {
		a[i] = element.Attr{Key: attr.Name.Local, Value: attr.Value}
	}
	return a
}
