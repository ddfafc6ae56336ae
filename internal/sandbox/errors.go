package sandbox

import (
	"errors"
	"fmt"
)

// ErrInfrastructure marks failures of the harness itself, as opposed to a
// behavior of the program under test.
var ErrInfrastructure = errors.New("sandbox infrastructure failure")

// Error describes an infrastructure failure while compiling or executing.
type Error struct {
	Op     string // "compile" or "execute"
	Reason string
	// Output is whatever the child printed before the failure.
	Output string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInfrastructure, e.Err}
	}
	return []error{ErrInfrastructure}
}

// withOp fills in the operation and captured output of a spawn error.
// Context errors pass through unchanged.
func withOp(err error, op, output string) error {
	var se *Error
	if errors.As(err, &se) {
		se.Op = op
		if se.Output == "" {
			se.Output = output
		}
	}
	return err
}
