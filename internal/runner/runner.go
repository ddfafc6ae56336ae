// Package runner runs a list of tests against one implementation on a
// fixed-size worker pool and accumulates the outcomes.
package runner

import (
	"context"
	"runtime"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"c0check/internal/oracle"
	"c0check/internal/spec"
	"c0check/internal/trace"
)

// Outcome is the result of one test.
type Outcome struct {
	Test    *spec.TestInfo
	Result  oracle.Result
	Err     error // infrastructure failure; Result is zero
	Elapsed time.Duration
}

// Status classifies the outcome.
func (o Outcome) Status() Status {
	switch {
	case o.Err != nil:
		return StatusError
	case !o.Result.Success():
		if o.Result.Mismatch.Actual.IsTimeout() {
			return StatusTimeout
		}
		return StatusFailed
	case !o.Result.Ran:
		return StatusInapplicable
	default:
		return StatusPassed
	}
}

// Summary accumulates outcomes in completion order.
type Summary struct {
	Implementation string
	Total          int
	Passed         int
	Inapplicable   int
	// Failures holds every mismatch, timeouts included.
	Failures []Outcome
	Timeouts []Outcome
	Errors   []Outcome
	// Cancelled counts tests never started because the run was stopped.
	Cancelled int
	Elapsed   time.Duration
}

// OK reports whether every test passed.
func (s *Summary) OK() bool {
	return len(s.Failures) == 0 && len(s.Errors) == 0 && s.Cancelled == 0
}

// FailedNames lists the names of failed and errored tests.
func (s *Summary) FailedNames() []string {
	names := make([]string, 0, len(s.Failures)+len(s.Errors))
	for _, o := range s.Failures {
		names = append(names, o.Test.Name())
	}
	for _, o := range s.Errors {
		names = append(names, o.Test.Name())
	}
	return names
}

// Options configure Run.
type Options struct {
	// Jobs bounds concurrent tests; <= 0 means GOMAXPROCS.
	Jobs     int
	Progress ProgressSink
	Logger   *zap.Logger
}

// Run checks every test against r. A test's infrastructure error is
// recorded in the summary and never stops the others. The returned error
// is non-nil only when ctx was cancelled; the summary then covers the
// tests that finished.
func Run(ctx context.Context, tests []*spec.TestInfo, r oracle.Runner, opts Options) (*Summary, error) {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	sink := opts.Progress
	if sink == nil {
		sink = nopSink{}
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	caps := r.Properties()
	for _, t := range tests {
		for _, c := range oracle.Conflicts(t.Specs, caps) {
			log.Warn("spec can never pass",
				zap.String("test", t.Name()),
				zap.Stringer("at", t.Origin),
				zap.String("implementation", caps.Name),
				zap.Stringer("conflict", c))
		}
	}

	tracer := trace.FromContext(ctx)
	runSpan := trace.Begin(tracer, trace.ScopeRun, "run:"+caps.Name, trace.ParentSpan(ctx))
	ctx = trace.WithSpan(ctx, runSpan)

	sum := &Summary{Implementation: caps.Name, Total: len(tests)}
	var mu sync.Mutex
	record := func(o Outcome) {
		mu.Lock()
		defer mu.Unlock()
		switch o.Status() {
		case StatusError:
			sum.Errors = append(sum.Errors, o)
		case StatusTimeout:
			sum.Timeouts = append(sum.Timeouts, o)
			sum.Failures = append(sum.Failures, o)
		case StatusFailed:
			sum.Failures = append(sum.Failures, o)
		case StatusInapplicable:
			sum.Inapplicable++
		default:
			sum.Passed++
		}
	}

	for i, t := range tests {
		sink.OnEvent(Event{Index: i, Test: t.Name(), Status: StatusQueued})
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(tests))))

	for i, t := range tests {
		g.Go(func() error {
			if gctx.Err() != nil {
				mu.Lock()
				sum.Cancelled++
				mu.Unlock()
				return nil
			}
			sink.OnEvent(Event{Index: i, Test: t.Name(), Status: StatusRunning})
			o := runOne(gctx, t, r)
			if o.Err != nil && gctx.Err() != nil {
				// Killed by the interruption, not a failure of the test.
				mu.Lock()
				sum.Cancelled++
				mu.Unlock()
				return nil
			}
			record(o)
			sink.OnEvent(Event{
				Index:   i,
				Test:    t.Name(),
				Status:  o.Status(),
				Actual:  o.Result.Actual,
				Err:     o.Err,
				Elapsed: o.Elapsed,
			})
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // workers never fail

	sum.Elapsed = time.Since(start)
	runSpan.WithExtra("failures", strconv.Itoa(len(sum.Failures))).
		WithExtra("errors", strconv.Itoa(len(sum.Errors))).
		End("")
	return sum, ctx.Err()
}

func runOne(ctx context.Context, t *spec.TestInfo, r oracle.Runner) Outcome {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeTest, "test:"+t.Name(), trace.ParentSpan(ctx))
	ctx = trace.WithSpan(ctx, span)

	start := time.Now()
	res, err := oracle.Check(ctx, t, r)
	o := Outcome{Test: t, Result: res, Err: err, Elapsed: time.Since(start)}
	span.End(string(o.Status()))
	return o
}
