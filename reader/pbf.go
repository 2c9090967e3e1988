package reader

import (
	"context"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/omniscale/go-osm"
	"github.com/omniscale/go-osm/parser/pbf"
	"github.com/pkg/errors"

	"github.com/omniscale/osmjson/element"
)

// pbfReader parses PBF files in a single background goroutine. The
// channels are unbuffered and the parser uses a single worker, so elements
// are returned in file order.
type pbfReader struct {
	f      io.Closer
	cancel context.CancelFunc

	nodes     chan []osm.Node
	ways      chan []osm.Way
	relations chan []osm.Relation
	errc      chan error

	header   element.Attrs
	pending  []*element.Element
	finished bool
	err      error
}

func newPBFReader(ctx context.Context, f io.ReadCloser) (*pbfReader, error) {
	r := &pbfReader{
		f:         f,
		nodes:     make(chan []osm.Node),
		ways:      make(chan []osm.Way),
		relations: make(chan []osm.Relation),
		errc:      make(chan error, 1),
	}

	p := pbf.New(f, pbf.Config{
		IncludeMetadata: true,
		Nodes:           r.nodes,
		Ways:            r.ways,
		Relations:       r.relations,
		Concurrency:     1,
	})
	header, err := p.Header()
	if err != nil {
		return nil, errors.Wrap(err, "parsing PBF header")
	}
	r.header = headerAttrs(header)

	ctx, r.cancel = context.WithCancel(ctx)
	go func() {
		r.errc <- p.Parse(ctx)
	}()
	return r, nil
}

// headerAttrs returns the replication timestamp and sequence of the
// header, if set.
func headerAttrs(h *pbf.Header) element.Attrs {
	attrs := element.Attrs{}
	if h.Time.Unix() > 0 {
		attrs = append(attrs, element.Attr{Key: "timestamp", Value: h.Time.UTC().Format(time.RFC3339)})
	}
	if h.Sequence > 0 {
		attrs = append(attrs, element.Attr{Key: "sequence", Value: strconv.FormatInt(h.Sequence, 10)})
	}
	if len(h.RequiredFeatures) > 0 {
		attrs = append(attrs, element.Attr{Key: "required_features", Value: strings.Join(h.RequiredFeatures, ",")})
	}
	return attrs
}

func (r *pbfReader) Header() element.Attrs {
	return r.header
}

func (r *pbfReader) Next() (*element.Element, error) {
	for len(r.pending) == 0 {
		if r.err != nil {
			return nil, r.err
		}
		select {
		case nds, ok := <-r.nodes:
			if !ok {
				r.nodes = nil
				continue
			}
			for i := range nds {
				r.pending = append(r.pending, fromNode(&nds[i]))
			}
		case ws, ok := <-r.ways:
			if !ok {
				r.ways = nil
				continue
			}
			for i := range ws {
				r.pending = append(r.pending, fromWay(&ws[i]))
			}
		case rels, ok := <-r.relations:
			if !ok {
				r.relations = nil
				continue
			}
			for i := range rels {
				r.pending = append(r.pending, fromRelation(&rels[i]))
			}
		case err := <-r.errc:
			// without a read error all elements are received before Parse returns
			r.finished = true
			r.errc = nil
			if err != nil {
				r.err = errors.Wrap(err, "parsing PBF")
			} else {
				r.err = io.EOF
			}
		}
	}

	e := r.pending[0]
	r.pending[0] = nil
	r.pending = r.pending[1:]
	return e, nil
}

// Close stops the parser and waits till the parser returned.
func (r *pbfReader) Close() error {
	r.cancel()
	r.drain()
	return r.f.Close()
}

// drainIdle is how long drain waits for a parser worker that is still
// sending after Parse returned with a read error.
const drainIdle = 500 * time.Millisecond

// drain discards all elements till Parse returned and closed the channels.
// Parse does not close the channels if reading a block fails, drain then
// stops after the channels were idle for drainIdle.
func (r *pbfReader) drain() {
	for !r.finished || r.nodes != nil || r.ways != nil || r.relations != nil {
		var idle <-chan time.Time
		if r.finished {
			idle = time.After(drainIdle)
		}
		select {
		case _, ok := <-r.nodes:
			if !ok {
				r.nodes = nil
			}
		case _, ok := <-r.ways:
			if !ok {
				r.ways = nil
			}
		case _, ok := <-r.relations:
			if !ok {
				r.relations = nil
			}
		case <-r.errc:
			r.finished = true
			r.errc = nil
		case <-idle:
			return
		}
	}
}

func fromNode(n *osm.Node) *element.Element {
	e := &element.Element{Kind: element.Node}
	e.Attrs = elemAttrs(&n.Element)
	e.Attrs = append(e.Attrs,
		element.Attr{Key: "lat", Value: formatCoord(n.Lat)},
		element.Attr{Key: "lon", Value: formatCoord(n.Long)},
	)
	e.Children = tagChildren(n.Tags)
	return e
}

func fromWay(w *osm.Way) *element.Element {
	e := &element.Element{Kind: element.Way}
	e.Attrs = elemAttrs(&w.Element)
	e.Children = make([]element.Child, 0, len(w.Refs)+len(w.Tags))
	for _, ref := range w.Refs {
		e.Children = append(e.Children, element.Child{
			Name:  "nd",
			Attrs: element.Attrs{{Key: "ref", Value: strconv.FormatInt(ref, 10)}},
		})
	}
	e.Children = append(e.Children, tagChildren(w.Tags)...)
	return e
}

var memberTypes = map[osm.MemberType]string{
	osm.NodeMember:     "node",
	osm.WayMember:      "way",
	osm.RelationMember: "relation",
}

func fromRelation(rel *osm.Relation) *element.Element {
	e := &element.Element{Kind: element.Relation}
	e.Attrs = elemAttrs(&rel.Element)
	for _, m := range rel.Members {
		e.Children = append(e.Children, element.Child{
			Name: "member",
			Attrs: element.Attrs{
				{Key: "type", Value: memberTypes[m.Type]},
				{Key: "ref", Value: strconv.FormatInt(m.ID, 10)},
				{Key: "role", Value: m.Role},
			},
		})
	}
	e.Children = append(e.Children, tagChildren(rel.Tags)...)
	return e
}

// elemAttrs returns the id and metadata attributes in the order used by
// OSM XML files.
func elemAttrs(elem *osm.Element) element.Attrs {
	attrs := element.Attrs{{Key: "id", Value: strconv.FormatInt(elem.ID, 10)}}
	if md := elem.Metadata; md != nil {
		attrs = append(attrs,
			element.Attr{Key: "version", Value: strconv.FormatInt(int64(md.Version), 10)},
			element.Attr{Key: "changeset", Value: strconv.FormatInt(md.Changeset, 10)},
			element.Attr{Key: "timestamp", Value: md.Timestamp.UTC().Format(time.RFC3339)},
			element.Attr{Key: "user", Value: md.UserName},
			element.Attr{Key: "uid", Value: strconv.FormatInt(int64(md.UserID), 10)},
		)
	}
	return attrs
}

// tagChildren returns tags sorted by key, PBF files do not keep the
// original tag order.
func tagChildren(tags osm.Tags) []element.Child {
	if len(tags) == 0 {
		return nil
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	children := make([]element.Child, len(keys))
	for i, k := range keys {
		children[i] = element.Child{
			Name:  "tag",
			Attrs: element.Attrs{{Key: "k", Value: k}, {Key: "v", Value: tags[k]}},
		}
	}
	return children
}

func formatCoord(c float64) string {
	return strconv.FormatFloat(c, 'f', -1, 64)
}
