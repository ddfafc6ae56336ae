package specparse

import (
	"errors"
	"fmt"
)

// ErrNotSpec reports input that does not carry a spec at all (empty, or
// missing the `//test` marker). Discovery skips such files silently.
var ErrNotSpec = errors.New("not a spec")

// ParseError describes a malformed spec.
type ParseError struct {
	// Fragment is the offending text; empty at end of input.
	Fragment string
	Span     Span
	Expected string
}

func (e *ParseError) Error() string {
	if e.Fragment == "" {
		return fmt.Sprintf("unexpected end of input at %s, expected %s", e.Span, e.Expected)
	}
	return fmt.Sprintf("unexpected %q at %s, expected %s", e.Fragment, e.Span, e.Expected)
}
