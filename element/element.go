package element

import (
	"encoding/xml"
	"fmt"
)

type Kind string

const (
	Node     Kind = "node"
	Way      Kind = "way"
	Relation Kind = "relation"
)

// A Attr is a single XML attribute of an element or child.
type Attr struct {
	Key   string
	Value string
}

// Attrs keeps attributes in document order.
type Attrs []Attr

// Get returns the value of the first attribute named key.
func (a Attrs) Get(key string) (string, bool) {
	for i := range a {
		if a[i].Key == key {
			return a[i].Value, true
		}
	}
	return "", false
}

// A Child is a direct child of an element, like <tag k="" v=""/>,
// <nd ref=""/> or <member type="" ref="" role=""/>.
type Child struct {
	Name  string
	Attrs Attrs
}

// An Element is a single top-level OSM element as it appears in the source.
// Elements are transient: readers return a new Element for each call and
// keep no reference to it.
type Element struct {
	Kind     Kind
	Attrs    Attrs
	Children []Child
}

// ID returns the id attribute or an empty string.
func (e *Element) ID() string {
	id, _ := e.Attrs.Get("id")
	return id
}

// ChildrenNamed returns all children named name in document order.
func (e *Element) ChildrenNamed(name string) []Child {
	var children []Child
	for _, c := range e.Children {
		if c.Name == name {
			children = append(children, c)
		}
	}
	return children
}

func (e *Element) String() string {
	return fmt.Sprintf("%s %s", e.Kind, e.ID())
}

// MarshalXML writes the element with its attributes and children, e.g.
// for sample files. Attributes and children keep their original order.
func (e *Element) MarshalXML(enc *xml.Encoder, start xml.StartElement) error {
	start = xml.StartElement{Name: xml.Name{Local: string(e.Kind)}, Attr: xmlAttrs(e.Attrs)}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	for _, c := range e.Children {
		cstart := xml.StartElement{Name: xml.Name{Local: c.Name}, Attr: xmlAttrs(c.Attrs)}
		if err := enc.EncodeToken(cstart); err != nil {
			return err
		}
		if err := enc.EncodeToken(cstart.End()); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

func xmlAttrs(attrs Attrs) []xml.Attr {
	if len(attrs) == 0 {
		return nil
	}
	xattrs := make([]xml.Attr, len(attrs))
	for i, a := range attrs {
		xattrs[i] = xml.Attr{Name: xml.Name{Local: a.Key}, Value: a.Value}
	}
	return xattrs
}
