package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"c0check/internal/oracle"
	"c0check/internal/runner"
	"c0check/internal/spec"
)

func testInfo(src string, specs ...spec.Spec) *spec.TestInfo {
	return &spec.TestInfo{
		Execution: spec.ExecutionInfo{Sources: []string{"/suite/" + src}},
		Specs:     specs,
		Origin:    spec.Origin{File: "/suite/" + src, Line: 1},
	}
}

func TestIndent(t *testing.T) {
	got := Indent("a\nb\nc\nd", "  ", 2)
	want := []string{"  a", "  b", "  ... 2 more lines"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("Indent = %q, want %q", got, want)
	}
	if got := Indent("a\nb", "> ", 0); len(got) != 2 || got[1] != "> b" {
		t.Errorf("Indent without limit = %q", got)
	}
}

func TestSummary(t *testing.T) {
	mismatch := runner.Outcome{
		Test: testInfo("basic/ret.c0", spec.ReturnOf(0)),
		Result: oracle.Result{Ran: true, Actual: spec.ReturnOf(1), Mismatch: &spec.Mismatch{
			Expected: spec.ReturnOf(0),
			Actual:   spec.ReturnOf(1),
			Output:   "line1\nline2\nline3\n",
		}},
	}
	timeout := runner.Outcome{
		Test: testInfo("loops/spin.c0", spec.Of(spec.Runs)),
		Result: oracle.Result{Ran: true, Actual: spec.Of(spec.InfiniteLoop), Mismatch: &spec.Mismatch{
			Expected: spec.Of(spec.Runs),
			Actual:   spec.Of(spec.InfiniteLoop),
		}},
	}
	broken := runner.Outcome{
		Test: testInfo("io/read.c0", spec.Of(spec.Runs)),
		Err:  errors.New("execute: could not execute /bin/x: permission denied"),
	}
	sum := &runner.Summary{
		Implementation: "cc0",
		Total:          6,
		Passed:         2,
		Inapplicable:   1,
		Failures:       []runner.Outcome{mismatch, timeout},
		Timeouts:       []runner.Outcome{timeout},
		Errors:         []runner.Outcome{broken},
		Elapsed:        1500 * time.Millisecond,
	}

	var buf bytes.Buffer
	r := New(&buf, Options{OutputLines: 2})
	if err := r.Summary(sum); err != nil {
		t.Fatalf("Summary: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Failures (1):",
		"basic/ret.c0 (/suite/basic/ret.c0:1)",
		"expected: return 0",
		"actual:   return 1",
		"      line1\n      line2\n      ... 1 more lines\n",
		"Timeouts (1):",
		"loops/spin.c0",
		"Errors (1):",
		"permission denied",
		"cc0: 2 passed, 2 failed (1 timeouts), 1 errors, 1 skipped-by-spec in 1.5s",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("colour disabled but escape codes present:\n%s", out)
	}
	if strings.Index(out, "Failures") > strings.Index(out, "Timeouts") {
		t.Errorf("failures should precede timeouts")
	}
}

func TestSummary_Interrupted(t *testing.T) {
	var buf bytes.Buffer
	sum := &runner.Summary{Implementation: "coin", Passed: 3, Cancelled: 4}
	if err := New(&buf, Options{}).Summary(sum); err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if !strings.Contains(buf.String(), "4 not run (interrupted)") {
		t.Errorf("cancelled count missing: %q", buf.String())
	}
}

func TestOnEvent(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, Options{})

	r.OnEvent(runner.Event{Test: "a.c0", Status: runner.StatusRunning})
	r.OnEvent(runner.Event{Test: "b.c0", Status: runner.StatusPassed})
	r.OnEvent(runner.Event{Test: "c.c0", Status: runner.StatusFailed, Actual: spec.Of(spec.Segfault)})
	r.OnEvent(runner.Event{Test: "d.c0", Status: runner.StatusError, Err: errors.New("boom")})

	want := "FAIL c.c0: got segfault\nERR  d.c0: boom\n"
	if buf.String() != want {
		t.Errorf("events = %q, want %q", buf.String(), want)
	}

	buf.Reset()
	verbose := New(&buf, Options{Verbose: true})
	verbose.OnEvent(runner.Event{Test: "b.c0", Status: runner.StatusInapplicable, Elapsed: 2 * time.Millisecond})
	if buf.String() != "SKIP b.c0 2.0ms\n" {
		t.Errorf("verbose event = %q", buf.String())
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func TestReporter_WriteError(t *testing.T) {
	r := New(failingWriter{}, Options{})
	err := r.Summary(&runner.Summary{Implementation: "cc0"})
	if err == nil || r.Err() == nil {
		t.Fatal("expected the write error to be reported")
	}
}
