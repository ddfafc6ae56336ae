package oracle

import (
	"context"
	"errors"
	"testing"

	"c0check/internal/spec"
)

type fakeRunner struct {
	caps   spec.Capabilities
	output string
	result spec.Behavior
	err    error
	calls  int
}

func (f *fakeRunner) Properties() spec.Capabilities { return f.caps }

func (f *fakeRunner) Run(context.Context, *spec.ExecutionInfo) (string, spec.Behavior, error) {
	f.calls++
	return f.output, f.result, f.err
}

var (
	safeCaps   = spec.Capabilities{Libraries: true, Typechecked: true, Safe: true, Name: "coin"}
	unsafeCaps = spec.Capabilities{Libraries: true, Typechecked: true, Name: "unsafe"}
)

func TestResolve(t *testing.T) {
	specs := spec.Specs{spec.Implication{Predicate: spec.Safe, Then: spec.ReturnOf(0)}}

	b, ok := Resolve(specs[0], safeCaps)
	if !ok || b != spec.ReturnOf(0) {
		t.Errorf("Resolve(safe) = %v, %v; want return 0", b, ok)
	}
	if _, ok := Resolve(specs[0], unsafeCaps); ok {
		t.Errorf("Resolve(!safe) should resolve to nothing")
	}

	nested := spec.Implication{Predicate: spec.Safe, Then: spec.Implication{
		Predicate: spec.Not{P: spec.Name("coin")},
		Then:      spec.Of(spec.DivZero),
	}}
	if _, ok := Resolve(nested, safeCaps); ok {
		t.Errorf("nested chain should stop at the first false predicate")
	}
	if b, ok := Resolve(nested, spec.Capabilities{Safe: true, Name: "cc0"}); !ok || b.Kind != spec.DivZero {
		t.Errorf("nested chain = %v, %v; want div-by-zero", b, ok)
	}
}

func TestCheck_VacuousWhenNothingApplies(t *testing.T) {
	test := &spec.TestInfo{Specs: spec.Specs{spec.Implication{Predicate: spec.Safe, Then: spec.ReturnOf(0)}}}
	r := &fakeRunner{caps: unsafeCaps, result: spec.Of(spec.Segfault)}

	res, err := Check(context.Background(), test, r)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if !res.Success() || res.Ran {
		t.Errorf("expected vacuous success without running, got %+v", res)
	}
	if r.calls != 0 {
		t.Errorf("runner should not be invoked, got %d calls", r.calls)
	}
}

func TestCheck_Mismatch(t *testing.T) {
	test := &spec.TestInfo{Specs: spec.Specs{
		spec.Implication{Predicate: spec.Safe, Then: spec.Of(spec.Segfault)},
		spec.Implication{Predicate: spec.Not{P: spec.Safe}, Then: spec.Of(spec.Runs)},
	}}
	r := &fakeRunner{caps: safeCaps, output: "boom\n", result: spec.ReturnOf(1)}

	res, err := Check(context.Background(), test, r)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if res.Success() {
		t.Fatalf("expected mismatch")
	}
	if res.Mismatch.Expected.Kind != spec.Segfault || res.Mismatch.Actual != spec.ReturnOf(1) {
		t.Errorf("unexpected mismatch %+v", res.Mismatch)
	}
	if res.Mismatch.Output != "boom\n" {
		t.Errorf("output not carried: %q", res.Mismatch.Output)
	}
}

func TestCheck_WildcardsAndSkipped(t *testing.T) {
	test := &spec.TestInfo{Specs: spec.Specs{spec.ReturnAny()}}

	for _, actual := range []spec.Behavior{spec.ReturnOf(17), spec.Of(spec.Skipped)} {
		res, err := Check(context.Background(), test, &fakeRunner{caps: safeCaps, result: actual})
		if err != nil {
			t.Fatalf("Check failed: %v", err)
		}
		if !res.Success() {
			t.Errorf("return * should accept %s", actual)
		}
	}
}

func TestCheck_AllApplicableMustMatch(t *testing.T) {
	test := &spec.TestInfo{Specs: spec.Specs{spec.ReturnOf(1), spec.ReturnOf(2)}}
	res, err := Check(context.Background(), test, &fakeRunner{caps: safeCaps, result: spec.ReturnOf(1)})
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if res.Success() || res.Mismatch.Expected != spec.ReturnOf(2) {
		t.Errorf("expected mismatch against return 2, got %+v", res)
	}

	conflicts := Conflicts(test.Specs, safeCaps)
	if len(conflicts) != 1 {
		t.Fatalf("expected one conflict, got %v", conflicts)
	}
	if conflicts[0].String() != "return 1 contradicts return 2" {
		t.Errorf("conflict = %q", conflicts[0].String())
	}
}

func TestCheck_InfrastructureError(t *testing.T) {
	boom := errors.New("fork failed")
	test := &spec.TestInfo{Specs: spec.Specs{spec.Of(spec.Runs)}}
	_, err := Check(context.Background(), test, &fakeRunner{caps: safeCaps, err: boom})
	if !errors.Is(err, boom) {
		t.Errorf("expected infrastructure error to propagate, got %v", err)
	}
}

func TestConflicts_MutuallyExclusive(t *testing.T) {
	specs := spec.Specs{
		spec.Implication{Predicate: spec.Safe, Then: spec.Of(spec.Segfault)},
		spec.Implication{Predicate: spec.Not{P: spec.Safe}, Then: spec.Of(spec.Runs)},
		spec.ReturnAny(),
	}
	if c := Conflicts(specs[:2], safeCaps); len(c) != 0 {
		t.Errorf("exclusive clauses should not conflict: %v", c)
	}
	if c := Conflicts(specs, safeCaps); len(c) != 1 {
		t.Errorf("segfault and return * should conflict: %v", c)
	}
}
