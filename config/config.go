package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/omniscale/osmjson/log"
	"github.com/omniscale/osmjson/sample"
	"github.com/omniscale/osmjson/writer"
)

// Config is the content of the -config JSON file. Options from the command
// line take precedence.
type Config struct {
	Rules  string `json:"rules"`
	OutDir string `json:"out_dir"`
	Pretty *bool  `json:"pretty"`
	Procs  int    `json:"procs"`
	Every  int    `json:"every"`
}

type Base struct {
	ConfigFile  string
	RulesFile   string
	Httpprofile string
	Quiet       bool
}

type Import struct {
	Base       Base
	Pretty     bool
	Compact    bool
	Out        string
	OutDir     string
	Procs      int
	Memprofile string
	Files      []string
}

type Sample struct {
	Base  Base
	Every int
	Out   string
	File  string
}

type Audit struct {
	Base Base
	File string
}

const defaultMemprofileInterval = time.Minute

// newFlagSet returns a silent flag set, usage and errors are reported by
// exitOnErrors.
func newFlagSet(name string) *flag.FlagSet {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(ioutil.Discard)
	return flags
}

func addBaseFlags(opts *Base, flags *flag.FlagSet) {
	flags.StringVar(&opts.ConfigFile, "config", "", "config (json)")
	flags.StringVar(&opts.RulesFile, "rules", "", "street name rules (yaml)")
	flags.StringVar(&opts.Httpprofile, "httpprofile", "", "bind address for metrics and profile server")
	flags.BoolVar(&opts.Quiet, "quiet", false, "quiet log output")
}

func loadConfig(filename string) (*Config, error) {
	conf := &Config{}
	if filename == "" {
		return conf, nil
	}
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "opening config")
	}
	defer f.Close()

	decoder := json.NewDecoder(f)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(conf); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", filename)
	}
	return conf, nil
}

func (o *Base) updateFromConfig(conf *Config) {
	if o.RulesFile == "" {
		o.RulesFile = conf.Rules
	}
}

func importFlags(opts *Import) *flag.FlagSet {
	flags := newFlagSet("import")
	addBaseFlags(&opts.Base, flags)
	flags.BoolVar(&opts.Pretty, "pretty", false, "indent output (default for inputs <= 50MB)")
	flags.BoolVar(&opts.Compact, "compact", false, "one document per line (default for inputs > 50MB)")
	flags.StringVar(&opts.Out, "out", "", "output file, only for a single input (default <input>.json)")
	flags.StringVar(&opts.OutDir, "outdir", "", "output directory")
	flags.IntVar(&opts.Procs, "procs", 0, "number of files to import concurrently (default number of CPUs)")
	flags.StringVar(&opts.Memprofile, "memprofile", "", "dir[:interval] for heap profiles")
	return flags
}

func parseImport(args []string) (Import, *flag.FlagSet, []error) {
	opts := Import{}
	flags := importFlags(&opts)
	if err := flags.Parse(args); err != nil {
		return opts, flags, []error{err}
	}
	opts.Files = flags.Args()

	conf, err := loadConfig(opts.Base.ConfigFile)
	if err != nil {
		return opts, flags, []error{err}
	}
	opts.Base.updateFromConfig(conf)
	if opts.OutDir == "" {
		opts.OutDir = conf.OutDir
	}
	if !opts.Pretty && !opts.Compact && conf.Pretty != nil {
		opts.Pretty = *conf.Pretty
		opts.Compact = !*conf.Pretty
	}
	if opts.Procs == 0 {
		opts.Procs = conf.Procs
	}
	if opts.Procs == 0 {
		opts.Procs = runtime.NumCPU()
	}
	return opts, flags, opts.check()
}

func (o *Import) check() []error {
	errs := []error{}
	if len(o.Files) == 0 {
		errs = append(errs, errors.New("missing input file"))
	}
	if o.Pretty && o.Compact {
		errs = append(errs, errors.New("-pretty and -compact are not compatible"))
	}
	if o.Out != "" && len(o.Files) > 1 {
		errs = append(errs, errors.New("-out only supports a single input file"))
	}
	if o.Out != "" && o.OutDir != "" {
		errs = append(errs, errors.New("-out and -outdir are not compatible"))
	}
	if o.Out == "" {
		outputs := make(map[string]string, len(o.Files))
		for _, input := range o.Files {
			output := filepath.Clean(o.OutputPath(input))
			if prev, ok := outputs[output]; ok {
				errs = append(errs, errors.Errorf("%s and %s are both written to %s", prev, input, output))
				continue
			}
			outputs[output] = input
		}
	}
	if o.Procs < 1 {
		errs = append(errs, errors.Errorf("invalid -procs %d", o.Procs))
	}
	if o.Memprofile != "" {
		if _, _, err := o.MemprofileDir(); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// OutputPath returns the output path for the input file.
func (o *Import) OutputPath(input string) string {
	if o.Out != "" {
		return o.Out
	}
	if o.OutDir != "" {
		return filepath.Join(o.OutDir, filepath.Base(writer.OutputPath(input)))
	}
	return writer.OutputPath(input)
}

// PrettyFor returns whether output should be indented for an input of
// size bytes.
func (o *Import) PrettyFor(size int64) bool {
	if o.Pretty {
		return true
	}
	if o.Compact {
		return false
	}
	return writer.Auto(size)
}

// MemprofileDir splits -memprofile into the directory and interval.
func (o *Import) MemprofileDir() (string, time.Duration, error) {
	parts := strings.SplitN(o.Memprofile, string(os.PathListSeparator), 2)
	if len(parts) < 2 {
		return parts[0], defaultMemprofileInterval, nil
	}
	interval, err := time.ParseDuration(parts[1])
	if err != nil {
		return "", 0, errors.Wrap(err, "invalid -memprofile interval")
	}
	return parts[0], interval, nil
}

func parseSample(args []string) (Sample, *flag.FlagSet, []error) {
	opts := Sample{}
	flags := newFlagSet("sample")
	addBaseFlags(&opts.Base, flags)
	flags.IntVar(&opts.Every, "every", 0, fmt.Sprintf("keep every n-th element (default %d)", sample.DefaultEvery))
	flags.StringVar(&opts.Out, "out", "", "output file")
	if err := flags.Parse(args); err != nil {
		return opts, flags, []error{err}
	}

	conf, err := loadConfig(opts.Base.ConfigFile)
	if err != nil {
		return opts, flags, []error{err}
	}
	opts.Base.updateFromConfig(conf)
	if opts.Every == 0 {
		opts.Every = conf.Every
	}
	if opts.Every == 0 {
		opts.Every = sample.DefaultEvery
	}

	errs := []error{}
	if flags.NArg() != 1 {
		errs = append(errs, errors.New("expected a single input file"))
	} else {
		opts.File = flags.Arg(0)
	}
	if opts.Out == "" {
		errs = append(errs, errors.New("missing -out"))
	}
	if opts.Every < 1 {
		errs = append(errs, errors.Errorf("invalid -every %d", opts.Every))
	}
	return opts, flags, errs
}

func parseAudit(args []string) (Audit, *flag.FlagSet, []error) {
	opts := Audit{}
	flags := newFlagSet("audit")
	addBaseFlags(&opts.Base, flags)
	if err := flags.Parse(args); err != nil {
		return opts, flags, []error{err}
	}

	conf, err := loadConfig(opts.Base.ConfigFile)
	if err != nil {
		return opts, flags, []error{err}
	}
	opts.Base.updateFromConfig(conf)

	if flags.NArg() != 1 {
		return opts, flags, []error{errors.New("expected a single input file")}
	}
	opts.File = flags.Arg(0)
	return opts, flags, nil
}

func ParseImport(args []string) Import {
	opts, flags, errs := parseImport(args)
	exitOnErrors(flags, "[args] file.osm ...", errs)
	return opts
}

func ParseSample(args []string) Sample {
	opts, flags, errs := parseSample(args)
	exitOnErrors(flags, "[args] -out sample.osm file.osm", errs)
	return opts
}

func ParseAudit(args []string) Audit {
	opts, flags, errs := parseAudit(args)
	exitOnErrors(flags, "[args] file.osm", errs)
	return opts
}

func exitOnErrors(flags *flag.FlagSet, usage string, errs []error) {
	if len(errs) == 0 {
		return
	}
	if len(errs) == 1 && errs[0] == flag.ErrHelp {
		printUsage(flags, usage)
		os.Exit(2)
	}
	log.Println("[error] errors in config/options:")
	for _, err := range errs {
		log.Printf("[error] \t%s", err)
	}
	printUsage(flags, usage)
	os.Exit(1)
}

func printUsage(flags *flag.FlagSet, usage string) {
	fmt.Fprintf(os.Stderr, "Usage: %s %s %s\n\n", os.Args[0], flags.Name(), usage)
	flags.SetOutput(os.Stderr)
	flags.PrintDefaults()
}
