/*
Package import_ provides the import sub command.

Each input file is imported by its own pipeline into its own output file.
Multiple files are imported concurrently.
*/
package import_

import (
	"context"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/omniscale/osmjson/config"
	"github.com/omniscale/osmjson/element"
	"github.com/omniscale/osmjson/log"
	"github.com/omniscale/osmjson/normalize"
	"github.com/omniscale/osmjson/pipeline"
	"github.com/omniscale/osmjson/reader"
	"github.com/omniscale/osmjson/shape"
	"github.com/omniscale/osmjson/stats"
	"github.com/omniscale/osmjson/writer"
)

// LoadStreet returns the cached street normalizer for the rules file, or
// for the default rules if filename is empty.
func LoadStreet(filename string) (*normalize.CachedStreet, error) {
	rules := normalize.DefaultRules()
	if filename != "" {
		var err error
		rules, err = normalize.LoadRules(filename)
		if err != nil {
			return nil, err
		}
	}
	return normalize.NewCachedStreet(normalize.NewStreet(rules), normalize.DefaultCacheSize)
}

func Import(ctx context.Context, opts config.Import) error {
	street, err := LoadStreet(opts.Base.RulesFile)
	if err != nil {
		return err
	}

	progress := stats.New()
	if opts.Base.Httpprofile != "" {
		progress.StartHTTP(opts.Base.Httpprofile)
	}

	reportCtx, stopReport := context.WithCancel(ctx)
	reportDone := make(chan struct{})
	if opts.Base.Quiet {
		close(reportDone)
	} else {
		go func() {
			progress.Report(reportCtx)
			close(reportDone)
		}()
	}

	if opts.Memprofile != "" {
		dir, interval, err := opts.MemprofileDir()
		if err != nil {
			stopReport()
			return err
		}
		go func() {
			if err := stats.MemProfiler(reportCtx, dir, interval); err != nil {
				log.Println("[error]", err)
			}
		}()
	}

	step := log.Step("Importing OSM data")
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Procs)
	for _, input := range opts.Files {
		input := input
		g.Go(func() error {
			return importFile(gctx, input, &opts, street, progress)
		})
	}
	err = g.Wait()
	stopReport()
	<-reportDone
	step()

	log.Printf("[info] %s", progress.Summary())
	return err
}

func importFile(ctx context.Context, input string, opts *config.Import, street shape.StreetNormalizer, progress *stats.Statistics) error {
	fi, err := os.Stat(input)
	if err != nil {
		return errors.Wrap(err, "reading input file size")
	}

	r, err := reader.Open(ctx, input)
	if err != nil {
		return err
	}
	defer r.Close()

	output := opts.OutputPath(input)
	pretty := opts.PrettyFor(fi.Size())
	log.Printf("[info] importing %s (%s) into %s, pretty=%t", input, humanize.Bytes(uint64(fi.Size())), output, pretty)

	w, err := writer.Create(output, pretty)
	if err != nil {
		return err
	}

	progress.FileStarted()
	defer progress.FileFinished()

	shaper := shape.New(street)
	shaper.SetObserver(progress)
	driver := pipeline.New(r, shaper)
	driver.SetCounter(progress)

	if err := driver.Run(ctx, w); err != nil {
		w.Close()
		if rmErr := os.Remove(output); rmErr != nil {
			log.Printf("[warn] removing partial output %s: %s", output, rmErr)
		} else {
			log.Printf("[info] removed partial output %s", output)
		}
		return errors.Wrapf(err, "importing %s", input)
	}
	if err := w.Close(); err != nil {
		return err
	}
	if header := r.Header(); len(header) > 0 {
		log.Printf("[info] %s header: %s", input, formatHeader(header))
	}
	log.Printf("[info] wrote %s records to %s", humanize.Comma(int64(w.Written())), output)
	return nil
}

func formatHeader(attrs element.Attrs) string {
	parts := make([]string, len(attrs))
	for i, a := range attrs {
		parts[i] = a.Key + "=" + a.Value
	}
	return strings.Join(parts, " ")
}
