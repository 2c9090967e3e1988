package main

import (
	"context"
	"fmt"
	"io"
	golog "log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/omniscale/osmjson"
	"github.com/omniscale/osmjson/config"
	"github.com/omniscale/osmjson/element"
	"github.com/omniscale/osmjson/import_"
	"github.com/omniscale/osmjson/log"
	"github.com/omniscale/osmjson/normalize"
	"github.com/omniscale/osmjson/reader"
	"github.com/omniscale/osmjson/sample"
)

func PrintCmds() {
	fmt.Fprintf(os.Stderr, "Usage: %s COMMAND [args]\n\n", os.Args[0])
	fmt.Println("Available commands:")
	fmt.Println("\timport")
	fmt.Println("\tsample")
	fmt.Println("\taudit")
	fmt.Println("\tversion")
}

func Main(usage func()) {
	golog.SetFlags(0)

	if len(os.Args) <= 1 {
		usage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch os.Args[1] {
	case "import":
		opts := config.ParseImport(os.Args[2:])
		log.SetQuiet(opts.Base.Quiet)
		if err := import_.Import(ctx, opts); err != nil {
			log.Fatal(err)
		}
	case "sample":
		opts := config.ParseSample(os.Args[2:])
		log.SetQuiet(opts.Base.Quiet)
		if err := runSample(ctx, opts); err != nil {
			log.Fatal(err)
		}
	case "audit":
		opts := config.ParseAudit(os.Args[2:])
		log.SetQuiet(opts.Base.Quiet)
		if err := runAudit(ctx, opts, os.Stdout); err != nil {
			log.Fatal(err)
		}
	case "version":
		fmt.Println(osmjson.Version)
		os.Exit(0)
	default:
		usage()
		log.Fatalf("invalid command: '%s'", os.Args[1])
	}
	os.Exit(0)
}

func runSample(ctx context.Context, opts config.Sample) error {
	step := log.Step("Writing sample")
	defer step()

	r, err := reader.Open(ctx, opts.File)
	if err != nil {
		return err
	}
	defer r.Close()

	f, err := os.Create(opts.Out)
	if err != nil {
		return errors.Wrap(err, "creating sample file")
	}
	n, err := sample.Write(r, f, opts.Every)
	if err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "closing sample file")
	}
	log.Printf("[info] wrote %s elements to %s", humanize.Comma(int64(n)), opts.Out)
	return nil
}

func runAudit(ctx context.Context, opts config.Audit, w io.Writer) error {
	rules := normalize.DefaultRules()
	if opts.Base.RulesFile != "" {
		var err error
		if rules, err = normalize.LoadRules(opts.Base.RulesFile); err != nil {
			return err
		}
	}

	r, err := reader.Open(ctx, opts.File)
	if err != nil {
		return err
	}
	defer r.Close()

	audit := normalize.NewAudit(rules)
	for {
		e, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if e.Kind != element.Node && e.Kind != element.Way {
			continue
		}
		for _, tag := range e.ChildrenNamed("tag") {
			if k, _ := tag.Attrs.Get("k"); k == "addr:street" {
				v, _ := tag.Attrs.Get("v")
				audit.Add(v)
			}
		}
	}

	for _, entry := range audit.Entries() {
		fmt.Fprintf(w, "%s: %s\n", entry.StreetType, strings.Join(entry.Names, ", "))
	}
	return nil
}

func main() {
	Main(PrintCmds)
}
