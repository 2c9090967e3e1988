/*
Package pipeline connects a reader, the shaper and a sink.

Elements are read, shaped and handed to the sink one at a time, in document
order. No element is read before the record of the previous element was
written, so memory use does not depend on the input size.
*/
package pipeline

import (
	"context"
	"io"

	"github.com/pkg/errors"

	"github.com/omniscale/osmjson/element"
	"github.com/omniscale/osmjson/shape"
)

type Reader interface {
	Next() (*element.Element, error)
}

type Sink interface {
	Write(rec *shape.Record) error
}

// Counter receives the number of read elements and shaped records.
type Counter interface {
	AddElement(kind element.Kind)
	AddRecord()
}

type Driver struct {
	r       Reader
	shaper  *shape.Shaper
	counter Counter
	err     error
}

func New(r Reader, s *shape.Shaper) *Driver {
	return &Driver{r: r, shaper: s}
}

// SetCounter sets an optional counter.
func (d *Driver) SetCounter(c Counter) {
	d.counter = c
}

// Next returns the next record. Elements without a record (relations and
// other kinds) are skipped. Returns io.EOF after the last record. Errors are
// permanent, a Driver can not be restarted.
func (d *Driver) Next() (*shape.Record, error) {
	if d.err != nil {
		return nil, d.err
	}
	for {
		e, err := d.r.Next()
		if err != nil {
			if err != io.EOF {
				err = errors.Wrap(err, "reading element")
			}
			d.err = err
			return nil, err
		}
		if d.counter != nil {
			d.counter.AddElement(e.Kind)
		}
		rec, err := d.shaper.Shape(e)
		if err != nil {
			d.err = err
			return nil, err
		}
		if rec == nil {
			continue
		}
		if d.counter != nil {
			d.counter.AddRecord()
		}
		return rec, nil
	}
}

// Run writes all records to sink until the input is exhausted, an error
// occurs or ctx is done.
func (d *Driver) Run(ctx context.Context, sink Sink) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		rec, err := d.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := sink.Write(rec); err != nil {
			d.err = errors.Wrap(err, "writing record")
			return d.err
		}
	}
}

// SinkFunc is an adapter to use ordinary functions as Sink.
type SinkFunc func(rec *shape.Record) error

func (f SinkFunc) Write(rec *shape.Record) error {
	return f(rec)
}
