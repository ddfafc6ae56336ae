package oracle

import (
	"fmt"

	"c0check/internal/spec"
)

// Conflict is a pair of applicable clauses that no single outcome can
// satisfy. Such a test always fails; it is an authoring bug in the spec.
type Conflict struct {
	First, Second spec.Behavior
}

func (c Conflict) String() string {
	return fmt.Sprintf("%s contradicts %s", c.First, c.Second)
}

// Conflicts reports every pair of applicable behaviors for caps that cannot
// both match the same outcome. It never changes a Check verdict.
func Conflicts(specs spec.Specs, caps spec.Capabilities) []Conflict {
	applicable := Applicable(specs, caps)
	var out []Conflict
	for i := 0; i < len(applicable); i++ {
		for j := i + 1; j < len(applicable); j++ {
			if !applicable[i].Matches(applicable[j]) {
				out = append(out, Conflict{First: applicable[i], Second: applicable[j]})
			}
		}
	}
	return out
}
