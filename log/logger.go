package log

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"sync"
	"time"
)

type Logger interface {
	Println(v ...interface{})
	Printf(format string, v ...interface{})
}

var DefaultLogger *log.Logger
var defaultFilter *logFilter

type Level string

const (
	LDebug    = Level("debug")
	LProgress = Level("progress")
	LStep     = Level("step")
	LInfo     = Level("info")
	LWarn     = Level("warn")
	LError    = Level("error")
	LFatal    = Level("fatal")
)

func init() {
	defaultFilter = newFilter(os.Stderr)
	DefaultLogger = log.New(defaultFilter, "", 0)
}

func newFilter(w io.Writer) *logFilter {
	f := &logFilter{
		start:    time.Now(),
		writer:   w,
		levels:   []Level{LDebug, LProgress, LStep, LInfo, LWarn, LError, LFatal},
		minLevel: LProgress,
	}
	f.init()
	return f
}

type logFilter struct {
	mu        sync.Mutex
	start     time.Time
	writer    io.Writer
	badLevels map[Level]struct{}
	minLevel  Level
	levels    []Level
}

func (f *logFilter) SetMinLevel(lvl Level) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.minLevel = lvl
	f.init()
}

func (f *logFilter) SetOutput(w io.Writer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writer = w
}

func (f *logFilter) init() {
	badLevels := make(map[Level]struct{})
	for _, level := range f.levels {
		if level == f.minLevel {
			break
		}
		badLevels[level] = struct{}{}
	}
	f.badLevels = badLevels
}

// levelOf returns the level of the first [level] marker of the line.
// Lines without a marker have no level and are never filtered.
func levelOf(line []byte) Level {
	x := bytes.IndexByte(line, '[')
	if x >= 0 {
		y := bytes.IndexByte(line[x:], ']')
		if y >= 0 {
			return Level(line[x+1 : x+y])
		}
	}
	return ""
}

func (f *logFilter) Check(line []byte) bool {
	_, ok := f.badLevels[levelOf(line)]
	return !ok
}

func (f *logFilter) Write(p []byte) (n int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.Check(p) {
		return 0, nil
	}
	// The Go log package always guarantees that we only
	// get a single line.
	b := bytes.Buffer{}
	now := time.Now()

	d := now.Sub(f.start)
	fmt.Fprintf(&b, "[%s] %d:%02d:%02d ",
		now.Format(time.RFC3339),
		int(d.Hours()),
		int(math.Mod(d.Minutes(), 60)),
		int(math.Mod(d.Seconds(), 60)),
	)
	b.Write(p)

	return f.writer.Write(b.Bytes())
}

func SetMinLevel(lvl Level) {
	defaultFilter.SetMinLevel(lvl)
}

// SetQuiet only lets warnings and errors through.
func SetQuiet(quiet bool) {
	if quiet {
		SetMinLevel(LWarn)
	} else {
		SetMinLevel(LProgress)
	}
}

func SetOutput(w io.Writer) {
	defaultFilter.SetOutput(w)
}

func Println(v ...interface{}) {
	DefaultLogger.Println(v...)
}

func Printf(format string, v ...interface{}) {
	DefaultLogger.Printf(format, v...)
}

func Fatal(v ...interface{}) {
	DefaultLogger.Fatal(append([]interface{}{"[fatal]"}, v...)...)
}

func Fatalf(format string, v ...interface{}) {
	DefaultLogger.Fatalf("[fatal] "+format, v...)
}

func Step(name string) func() {
	start := time.Now()
	Println("[step] Starting:", name)
	return func() {
		Printf("[step] Finished: %s in %s", name, time.Since(start))
	}
}
