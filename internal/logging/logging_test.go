package logging

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name  string
		opts  Options
		debug bool
		warn  bool
		err   bool
	}{
		{"default", Options{}, false, true, true},
		{"debug", Options{Level: "debug"}, true, true, true},
		{"error", Options{Level: "ERROR"}, false, false, true},
		{"quiet", Options{Level: "debug", Quiet: true}, false, false, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			tc.opts.Output = &buf
			log, err := New(tc.opts)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			log.Debug("dbg")
			log.Warn("wrn", zap.String("test", "a/b.c0"))
			log.Error("err")
			out := buf.String()
			if got := strings.Contains(out, "dbg"); got != tc.debug {
				t.Errorf("debug emitted = %v, want %v\n%s", got, tc.debug, out)
			}
			if got := strings.Contains(out, "wrn"); got != tc.warn {
				t.Errorf("warn emitted = %v, want %v\n%s", got, tc.warn, out)
			}
			if got := strings.Contains(out, "err"); got != tc.err {
				t.Errorf("error emitted = %v, want %v\n%s", got, tc.err, out)
			}
		})
	}
}

func TestNew_ConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Options{Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Warn("malformed spec, skipping test", zap.String("at", "x/y.c0:1"))
	Sync(log)

	line := buf.String()
	if !strings.HasPrefix(line, "WARN\tmalformed spec, skipping test") {
		t.Errorf("unexpected line %q", line)
	}
	if !strings.Contains(line, `{"at": "x/y.c0:1"}`) {
		t.Errorf("fields missing from %q", line)
	}
}

func TestNew_BadLevel(t *testing.T) {
	if _, err := New(Options{Level: "loud"}); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
}
