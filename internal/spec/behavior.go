// Package spec defines the data model shared by the parser, the oracle and
// the executers.
// Invariants:
//   - Behavior values are comparable with ==, but test expectations must be
//     compared with Matches, which treats `return *` and Skipped as wildcards.
//   - TestInfo and everything it references is immutable after discovery and
//     may be shared between workers without locking.
package spec

import (
	"fmt"
	"strconv"
)

// BehaviorKind enumerates the observable outcomes of a test program.
type BehaviorKind uint8

const (
	// CompileError means the program was rejected before it could run.
	CompileError BehaviorKind = iota + 1
	// Runs means the program terminates normally, whatever it returns.
	Runs
	// InfiniteLoop means the program exhausted its CPU ceiling.
	InfiniteLoop
	// Abort means the program raised SIGABRT (failed assertion, contract).
	Abort
	// Failure means the program exited through the runtime's error path.
	Failure
	// Segfault means the program was killed by a memory violation.
	Segfault
	// DivZero means the program was killed by an arithmetic exception.
	DivZero
	// Return means the program returned from main; see Behavior.Value.
	Return
	// Skipped means the implementation declined to run the test.
	Skipped
)

var behaviorKindNames = [...]string{
	CompileError: "error",
	Runs:         "runs",
	InfiniteLoop: "infloop",
	Abort:        "abort",
	Failure:      "failure",
	Segfault:     "segfault",
	DivZero:      "div-by-zero",
	Return:       "return",
	Skipped:      "skipped",
}

// String returns the spec keyword for the kind.
func (k BehaviorKind) String() string {
	if int(k) < len(behaviorKindNames) && behaviorKindNames[k] != "" {
		return behaviorKindNames[k]
	}
	return fmt.Sprintf("BehaviorKind(%d)", uint8(k))
}

// Behavior is the symbolic classification of one program run.
// For Return, HasValue distinguishes `return N` from `return *`.
type Behavior struct {
	Kind     BehaviorKind
	Value    int32
	HasValue bool
}

// Of returns a behavior of the given kind without a return value.
func Of(kind BehaviorKind) Behavior {
	return Behavior{Kind: kind}
}

// ReturnOf returns the behavior `return v`.
func ReturnOf(v int32) Behavior {
	return Behavior{Kind: Return, Value: v, HasValue: true}
}

// ReturnAny returns the wildcard behavior `return *`.
func ReturnAny() Behavior {
	return Behavior{Kind: Return}
}

// Matches reports whether b and other describe the same outcome.
// Skipped matches everything and `return *` matches every Return, in
// either direction.
func (b Behavior) Matches(other Behavior) bool {
	if b.Kind == Skipped || other.Kind == Skipped {
		return true
	}
	if b.Kind != other.Kind {
		return false
	}
	if b.Kind != Return || !b.HasValue || !other.HasValue {
		return true
	}
	return b.Value == other.Value
}

// IsTimeout reports whether the behavior counts as a timeout in reports.
func (b Behavior) IsTimeout() bool {
	return b.Kind == InfiniteLoop
}

// String renders the behavior in spec syntax.
func (b Behavior) String() string {
	if b.Kind != Return {
		return b.Kind.String()
	}
	if !b.HasValue {
		return "return *"
	}
	return "return " + strconv.FormatInt(int64(b.Value), 10)
}

func (Behavior) isSpec() {}
