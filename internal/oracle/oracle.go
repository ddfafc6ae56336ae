// Package oracle decides which behaviors a test prescribes for an
// implementation and compares them with what the implementation did.
package oracle

import (
	"context"

	"c0check/internal/spec"
)

// Runner is the part of an executer the oracle needs.
type Runner interface {
	Properties() spec.Capabilities
	Run(ctx context.Context, test *spec.ExecutionInfo) (string, spec.Behavior, error)
}

// Result is the verdict for one test. Mismatch is nil on success.
type Result struct {
	// Ran is false when no clause applied and the test was not executed.
	Ran      bool
	Actual   spec.Behavior
	Mismatch *spec.Mismatch
}

// Success reports whether the test passed.
func (r Result) Success() bool { return r.Mismatch == nil }

// Resolve walks the implication chain of one clause and returns the
// behavior it prescribes for caps, if any.
func Resolve(s spec.Spec, caps spec.Capabilities) (spec.Behavior, bool) {
	for {
		switch node := s.(type) {
		case spec.Behavior:
			return node, true
		case spec.Implication:
			if !node.Predicate.Eval(caps) {
				return spec.Behavior{}, false
			}
			s = node.Then
		default:
			return spec.Behavior{}, false
		}
	}
}

// Applicable collects the behaviors of every clause that resolves for caps,
// in clause order.
func Applicable(specs spec.Specs, caps spec.Capabilities) []spec.Behavior {
	var out []spec.Behavior
	for _, s := range specs {
		if b, ok := Resolve(s, caps); ok {
			out = append(out, b)
		}
	}
	return out
}

// Compare checks actual against every expected behavior and returns the
// first one it contradicts.
func Compare(expected []spec.Behavior, actual spec.Behavior, output string) *spec.Mismatch {
	for _, want := range expected {
		if !want.Matches(actual) {
			return &spec.Mismatch{Expected: want, Actual: actual, Output: output}
		}
	}
	return nil
}

// Check runs test on r if any clause applies to it and compares the outcome.
// Errors are infrastructure failures; a contradicting outcome is reported
// through Result.Mismatch.
func Check(ctx context.Context, test *spec.TestInfo, r Runner) (Result, error) {
	expected := Applicable(test.Specs, r.Properties())
	if len(expected) == 0 {
		return Result{}, nil
	}

	output, actual, err := r.Run(ctx, &test.Execution)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Ran:      true,
		Actual:   actual,
		Mismatch: Compare(expected, actual, output),
	}, nil
}
