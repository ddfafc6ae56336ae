package runner

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"c0check/internal/spec"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// scriptedRunner returns a fixed outcome per source path.
type scriptedRunner struct {
	caps     spec.Capabilities
	outcomes map[string]spec.Behavior
	errs     map[string]error
	delay    time.Duration

	running, peak atomic.Int32
}

func (s *scriptedRunner) Properties() spec.Capabilities { return s.caps }

func (s *scriptedRunner) Run(ctx context.Context, test *spec.ExecutionInfo) (string, spec.Behavior, error) {
	n := s.running.Add(1)
	defer s.running.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", spec.Behavior{}, ctx.Err()
		}
	}
	src := test.Sources[0]
	if err := s.errs[src]; err != nil {
		return "", spec.Behavior{}, err
	}
	return "output of " + src, s.outcomes[src], nil
}

func newTest(src string, specs ...spec.Spec) *spec.TestInfo {
	return &spec.TestInfo{
		Execution: spec.ExecutionInfo{Sources: []string{"/t/" + src}},
		Specs:     specs,
	}
}

var caps = spec.Capabilities{Libraries: true, Typechecked: true, Safe: true, Name: "coin"}

func TestRun_Accumulates(t *testing.T) {
	r := &scriptedRunner{
		caps: caps,
		outcomes: map[string]spec.Behavior{
			"/t/a/ok.c0":   spec.ReturnOf(0),
			"/t/a/bad.c0":  spec.ReturnOf(1),
			"/t/a/loop.c0": spec.Of(spec.InfiniteLoop),
		},
		errs: map[string]error{"/t/a/err.c0": errors.New("fork failed")},
	}
	tests := []*spec.TestInfo{
		newTest("a/ok.c0", spec.ReturnOf(0)),
		newTest("a/bad.c0", spec.ReturnOf(0)),
		newTest("a/loop.c0", spec.Of(spec.Runs)),
		newTest("a/err.c0", spec.Of(spec.Runs)),
		newTest("a/unsafe.c0", spec.Implication{Predicate: spec.Not{P: spec.Safe}, Then: spec.Of(spec.Segfault)}),
	}

	var mu sync.Mutex
	final := map[string]Status{}
	sink := FuncSink(func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		if ev.Status.Finished() {
			final[ev.Test] = ev.Status
		}
	})

	sum, err := Run(context.Background(), tests, r, Options{Jobs: 2, Progress: sink})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Total != 5 || sum.Passed != 1 || sum.Inapplicable != 1 {
		t.Errorf("summary = %+v", sum)
	}
	if len(sum.Failures) != 2 || len(sum.Timeouts) != 1 || len(sum.Errors) != 1 {
		t.Errorf("failures=%d timeouts=%d errors=%d", len(sum.Failures), len(sum.Timeouts), len(sum.Errors))
	}
	if sum.OK() {
		t.Errorf("summary with failures reported OK")
	}
	if sum.Timeouts[0].Test.Name() != "a/loop.c0" {
		t.Errorf("timeout = %s", sum.Timeouts[0].Test.Name())
	}

	want := map[string]Status{
		"a/ok.c0":     StatusPassed,
		"a/bad.c0":    StatusFailed,
		"a/loop.c0":   StatusTimeout,
		"a/err.c0":    StatusError,
		"a/unsafe.c0": StatusInapplicable,
	}
	for name, st := range want {
		if final[name] != st {
			t.Errorf("%s finished as %q, want %q", name, final[name], st)
		}
	}
	if got := len(sum.FailedNames()); got != 3 {
		t.Errorf("FailedNames has %d entries, want 3", got)
	}
}

func TestRun_RespectsJobLimit(t *testing.T) {
	r := &scriptedRunner{caps: caps, outcomes: map[string]spec.Behavior{}, delay: 20 * time.Millisecond}
	var tests []*spec.TestInfo
	for i := 0; i < 12; i++ {
		tests = append(tests, newTest("p/t.c0", spec.Of(spec.Skipped)))
	}

	sum, err := Run(context.Background(), tests, r, Options{Jobs: 3})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Passed != 12 {
		t.Errorf("passed = %d, want 12", sum.Passed)
	}
	if p := r.peak.Load(); p > 3 || p < 1 {
		t.Errorf("peak concurrency = %d, want 1..3", p)
	}
}

func TestRun_Cancellation(t *testing.T) {
	r := &scriptedRunner{caps: caps, outcomes: map[string]spec.Behavior{}, delay: time.Second}
	var tests []*spec.TestInfo
	for i := 0; i < 6; i++ {
		tests = append(tests, newTest("c/t.c0", spec.Of(spec.Runs)))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	sum, err := Run(ctx, tests, r, Options{Jobs: 2})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want deadline exceeded", err)
	}
	if sum.Cancelled != 6 || len(sum.Errors) != 0 {
		t.Errorf("cancelled=%d errors=%d, want 6 and 0", sum.Cancelled, len(sum.Errors))
	}
	if sum.OK() {
		t.Errorf("an interrupted run is not OK")
	}
}

func TestRun_WarnsAboutConflicts(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	r := &scriptedRunner{caps: caps, outcomes: map[string]spec.Behavior{"/t/x/c.c0": spec.ReturnOf(1)}}
	tests := []*spec.TestInfo{newTest("x/c.c0", spec.ReturnOf(1), spec.ReturnOf(2))}

	sum, err := Run(context.Background(), tests, r, Options{Logger: zap.New(core)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if logs.FilterMessage("spec can never pass").Len() != 1 {
		t.Errorf("expected one conflict warning")
	}
	if len(sum.Failures) != 1 {
		t.Errorf("conflicting spec must still fail, got %+v", sum)
	}
}

func TestRun_Empty(t *testing.T) {
	sum, err := Run(context.Background(), nil, &scriptedRunner{caps: caps}, Options{})
	if err != nil || sum.Total != 0 || !sum.OK() {
		t.Errorf("empty run = %+v, %v", sum, err)
	}
}

func TestChannelSink(t *testing.T) {
	ch := make(chan Event, 1)
	ChannelSink{Ch: ch}.OnEvent(Event{Test: "a", Status: StatusRunning})
	if ev := <-ch; ev.Test != "a" || ev.Status != StatusRunning {
		t.Errorf("event = %+v", ev)
	}
	ChannelSink{}.OnEvent(Event{})
}
