package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestFilterLevels(t *testing.T) {
	buf := &bytes.Buffer{}
	f := newFilter(buf)
	f.SetMinLevel(LWarn)

	for _, line := range []string{
		"[info] dropped\n",
		"[step] Starting: dropped\n",
		"[warn] kept\n",
		"no level kept\n",
	} {
		f.Write([]byte(line))
	}

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("filtered levels in output: %q", out)
	}
	if n := strings.Count(out, "kept"); n != 2 {
		t.Errorf("expected 2 lines, got %d: %q", n, out)
	}
}

func TestLevelOf(t *testing.T) {
	for _, tc := range []struct {
		line  string
		level Level
	}{
		{"[warn] foo", LWarn},
		{"[step] Starting: x", LStep},
		{"foo [info] bar", LInfo},
		{"nothing", ""},
		{"[unclosed", ""},
	} {
		if l := levelOf([]byte(tc.line)); l != tc.level {
			t.Errorf("%q: expected %q, got %q", tc.line, tc.level, l)
		}
	}
}
