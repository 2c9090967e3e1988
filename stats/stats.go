/*
Package stats counts processed elements and written records.

Counters are safe for concurrent use. They are reported as a progress line
once per second and exported as prometheus metrics on a private registry.
*/
package stats

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/omniscale/osmjson/element"
	"github.com/omniscale/osmjson/tags"
)

type Statistics struct {
	nodes     RpsCounter
	ways      RpsCounter
	relations RpsCounter
	records   RpsCounter
	dropped   RpsCounter
	rejected  RpsCounter

	registry        *prometheus.Registry
	elementsTotal   *prometheus.CounterVec
	recordsTotal    prometheus.Counter
	droppedTotal    *prometheus.CounterVec
	postcodesTotal  prometheus.Counter
	filesInProgress prometheus.Gauge
}

func New() *Statistics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	s := &Statistics{
		registry: reg,
		elementsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "osmjson_elements_total",
				Help: "Total number of elements read",
			},
			[]string{"kind"},
		),
		recordsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "osmjson_records_total",
				Help: "Total number of records written",
			},
		),
		droppedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "osmjson_dropped_keys_total",
				Help: "Total number of tag and attribute keys dropped",
			},
			[]string{"class"},
		),
		postcodesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "osmjson_rejected_postcodes_total",
				Help: "Total number of rejected postal codes",
			},
		),
		filesInProgress: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "osmjson_files_in_progress",
				Help: "Number of files currently imported",
			},
		),
	}
	s.tick(time.Now())
	return s
}

// AddElement counts a read element. Elements other than nodes, ways and
// relations are only exported as metrics.
func (s *Statistics) AddElement(kind element.Kind) {
	switch kind {
	case element.Node:
		s.nodes.Add(1)
	case element.Way:
		s.ways.Add(1)
	case element.Relation:
		s.relations.Add(1)
	}
	s.elementsTotal.WithLabelValues(string(kind)).Inc()
}

func (s *Statistics) AddRecord() {
	s.records.Add(1)
	s.recordsTotal.Inc()
}

func (s *Statistics) DroppedKey(key string, class tags.Class) {
	s.dropped.Add(1)
	s.droppedTotal.WithLabelValues(class.String()).Inc()
}

func (s *Statistics) RejectedPostcode(code string) {
	s.rejected.Add(1)
	s.postcodesTotal.Inc()
}

func (s *Statistics) FileStarted()  { s.filesInProgress.Inc() }
func (s *Statistics) FileFinished() { s.filesInProgress.Dec() }

type Summary struct {
	Nodes, Ways, Relations int64
	Records                int64
	DroppedKeys            int64
	RejectedPostcodes      int64
	// RecordsPerSec is the average rate since New.
	RecordsPerSec float64
}

// Summary returns the totals. It ticks all counters, call it after the
// import finished.
func (s *Statistics) Summary() Summary {
	return s.summary(time.Now())
}

func (s *Statistics) summary(now time.Time) Summary {
	s.tick(now)
	return Summary{
		Nodes:             s.nodes.Value(),
		Ways:              s.ways.Value(),
		Relations:         s.relations.Value(),
		Records:           s.records.Value(),
		DroppedKeys:       s.dropped.Value(),
		RejectedPostcodes: s.rejected.Value(),
		RecordsPerSec:     s.records.AvgRps(),
	}
}

func (sum Summary) String() string {
	return fmt.Sprintf("%s nodes, %s ways, %s relations, %s records (%s/s), %s dropped keys, %s rejected postcodes",
		humanize.Comma(sum.Nodes),
		humanize.Comma(sum.Ways),
		humanize.Comma(sum.Relations),
		humanize.Comma(sum.Records),
		humanize.Comma(int64(sum.RecordsPerSec)),
		humanize.Comma(sum.DroppedKeys),
		humanize.Comma(sum.RejectedPostcodes),
	)
}

func (s *Statistics) tick(now time.Time) {
	for _, c := range []*RpsCounter{&s.nodes, &s.ways, &s.relations, &s.records, &s.dropped, &s.rejected} {
		c.Tick(now)
	}
}

// Print writes a single progress line to w.
func (s *Statistics) Print(w io.Writer) {
	fmt.Fprintf(w, "Nodes: %7d/s (%11s) Ways: %7d/s (%10s) Relations: %6d/s (%9s) Records: %7d/s (%11s)",
		roundRps(s.nodes.Rps(), 100),
		humanize.Comma(s.nodes.Value()),
		roundRps(s.ways.Rps(), 100),
		humanize.Comma(s.ways.Value()),
		roundRps(s.relations.Rps(), 10),
		humanize.Comma(s.relations.Value()),
		roundRps(s.records.Rps(), 100),
		humanize.Comma(s.records.Value()),
	)
	if val := os.Getenv("GOGCTRACE"); val != "" {
		fmt.Fprint(w, "\n")
	} else {
		fmt.Fprint(w, "\r\b")
	}
}

func roundRps(rps float64, unit int64) int64 {
	return int64(rps) / unit * unit
}

// Report prints the progress to stdout once per second until ctx is done.
// A final line is printed before Report returns.
func (s *Statistics) Report(ctx context.Context) {
	tick := time.NewTicker(time.Second)
	defer tick.Stop()
	s.tick(time.Now())
	for {
		select {
		case now := <-tick.C:
			s.tick(now)
			s.Print(os.Stdout)
		case <-ctx.Done():
			s.tick(time.Now())
			s.Print(os.Stdout)
			fmt.Println()
			return
		}
	}
}
