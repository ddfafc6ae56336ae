package discover

import (
	"strings"

	"c0check/internal/spec"
)

// Filter keeps the tests whose name contains any of patterns. No patterns
// keeps everything.
func Filter(tests []*spec.TestInfo, patterns []string) []*spec.TestInfo {
	if len(patterns) == 0 {
		return tests
	}
	var out []*spec.TestInfo
	for _, t := range tests {
		name := t.Name()
		for _, p := range patterns {
			if strings.Contains(name, p) {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

// Only keeps the tests whose name is in names.
func Only(tests []*spec.TestInfo, names []string) []*spec.TestInfo {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	var out []*spec.TestInfo
	for _, t := range tests {
		if _, ok := set[t.Name()]; ok {
			out = append(out, t)
		}
	}
	return out
}
