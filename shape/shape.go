/*
Package shape converts OSM nodes and ways into flat records for document stores.

Tag keys are filtered by their class (see package tags), addr:* tags are
collected into an address sub-document with normalized postcodes and street
names, and metadata attributes are collected into a created sub-document.
*/
package shape

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/omniscale/osmjson/element"
	"github.com/omniscale/osmjson/normalize"
	"github.com/omniscale/osmjson/tags"
)

const addrPrefix = "addr:"

// created lists the metadata attributes that are moved into the created
// sub-document.
var created = map[string]struct{}{
	"version":   {},
	"changeset": {},
	"timestamp": {},
	"user":      {},
	"uid":       {},
}

var ErrInvalidLanes = errors.New("lanes value does not start with a number")

type StreetNormalizer interface {
	Normalize(name string) string
}

// Observer gets notified about data that does not make it into a record.
type Observer interface {
	DroppedKey(key string, class tags.Class)
	RejectedPostcode(code string)
}

type Shaper struct {
	street   StreetNormalizer
	observer Observer
}

func New(street StreetNormalizer) *Shaper {
	return &Shaper{street: street}
}

// SetObserver sets an optional observer for dropped keys and postcodes.
func (s *Shaper) SetObserver(o Observer) {
	s.observer = o
}

// Shape returns the record for a node or way. Returns nil without an error
// for all other elements.
func (s *Shaper) Shape(e *element.Element) (*Record, error) {
	if e.Kind != element.Node && e.Kind != element.Way {
		return nil, nil
	}

	rec := &Record{Type: string(e.Kind)}
	road := roadCheck{elem: e}

	for _, tag := range e.ChildrenNamed("tag") {
		key, value, err := keyValue(tag)
		if err != nil {
			return nil, errors.Wrapf(err, "shaping %s", e)
		}

		if strings.HasPrefix(key, addrPrefix) {
			sub := key[len(addrPrefix):]
			if class := tags.Classify(sub); class != tags.Plain {
				s.droppedKey(key, class)
				continue
			}
			switch sub {
			case "postcode":
				value = s.postcode(value)
			case "street":
				value = s.street.Normalize(value)
			}
			if rec.Address == nil {
				rec.Address = make(map[string]string)
			}
			rec.Address[sub] = value
			continue
		}

		class := tags.Classify(key)
		if class != tags.Plain && class != tags.ColonSeparated {
			s.droppedKey(key, class)
			continue
		}
		if key == "name" && e.Kind == element.Way {
			isRoad, err := road.isRoad()
			if err != nil {
				return nil, errors.Wrapf(err, "shaping %s", e)
			}
			if isRoad {
				value = s.street.Normalize(value)
			}
		}
		rec.Set(key, value)
	}

	for _, nd := range e.ChildrenNamed("nd") {
		ref, ok := nd.Attrs.Get("ref")
		if !ok {
			return nil, errors.Errorf("shaping %s: nd without ref", e)
		}
		rec.NodeRefs = append(rec.NodeRefs, ref)
	}

	var lat, lon float64
	var hasLat, hasLon bool
	for _, attr := range e.Attrs {
		if tags.Classify(attr.Key) != tags.Plain {
			continue
		}
		var err error
		switch {
		case isCreated(attr.Key):
			if rec.Created == nil {
				rec.Created = make(map[string]string, len(created))
			}
			rec.Created[attr.Key] = attr.Value
		case attr.Key == "lat":
			lat, err = strconv.ParseFloat(attr.Value, 64)
			hasLat = true
		case attr.Key == "lon":
			lon, err = strconv.ParseFloat(attr.Value, 64)
			hasLon = true
		default:
			rec.Set(attr.Key, attr.Value)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "shaping %s: invalid %s", e, attr.Key)
		}
	}
	if hasLat && hasLon {
		rec.Pos = []float64{lat, lon}
	}

	return rec, nil
}

func (s *Shaper) postcode(code string) string {
	normalized, ok := normalize.Postcode(code)
	if !ok && s.observer != nil {
		s.observer.RejectedPostcode(code)
	}
	return normalized
}

func (s *Shaper) droppedKey(key string, class tags.Class) {
	if s.observer != nil {
		s.observer.DroppedKey(key, class)
	}
}

func isCreated(key string) bool {
	_, ok := created[key]
	return ok
}

func keyValue(tag element.Child) (string, string, error) {
	k, ok := tag.Attrs.Get("k")
	if !ok {
		return "", "", errors.New("tag without k")
	}
	v, ok := tag.Attrs.Get("v")
	if !ok {
		return "", "", errors.Errorf("tag %q without v", k)
	}
	return k, v, nil
}

// roadCheck determines once per element whether a way is a road.
type roadCheck struct {
	elem    *element.Element
	checked bool
	road    bool
	err     error
}

func (r *roadCheck) isRoad() (bool, error) {
	if !r.checked {
		r.road, r.err = isRoad(r.elem)
		r.checked = true
	}
	return r.road, r.err
}

// isRoad returns true if the element has a lanes tag with a positive
// number of lanes. Only the first character of the value is checked.
func isRoad(e *element.Element) (bool, error) {
	for _, tag := range e.ChildrenNamed("tag") {
		k, v, err := keyValue(tag)
		if err != nil {
			return false, err
		}
		if k != "lanes" {
			continue
		}
		if v == "" || v[0] < '0' || v[0] > '9' {
			return false, errors.Wrapf(ErrInvalidLanes, "lanes=%q", v)
		}
		if v[0] > '0' {
			return true, nil
		}
	}
	return false, nil
}
