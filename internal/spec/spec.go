package spec

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Spec is either a bare Behavior or an Implication.
type Spec interface {
	String() string
	isSpec()
}

// Implication applies Then only to implementations satisfying Predicate.
type Implication struct {
	Predicate Predicate
	Then      Spec
}

func (i Implication) String() string {
	return i.Predicate.String() + " => " + i.Then.String()
}

func (Implication) isSpec() {}

// Specs is the ordered list of top-level clauses attached to one test.
type Specs []Spec

func (s Specs) String() string {
	parts := make([]string, len(s))
	for i, entry := range s {
		parts[i] = entry.String()
	}
	return strings.Join(parts, "; ")
}

// ExecutionInfo is everything an executer needs to run one test.
type ExecutionInfo struct {
	// Sources are absolute paths, in command-line order.
	Sources []string
	// Options are passed verbatim to the compiler (or interpreter).
	Options []string
	// Dir is the directory the test came from; programs run inside it.
	Dir string
}

// UsesExtension reports whether any source ends in ext (e.g. ".c1").
func (e *ExecutionInfo) UsesExtension(ext string) bool {
	for _, src := range e.Sources {
		if strings.HasSuffix(src, ext) {
			return true
		}
	}
	return false
}

// Origin records where a test was declared.
type Origin struct {
	File string
	Line int
}

func (o Origin) String() string {
	if o.File == "" {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d", o.File, o.Line)
}

// TestInfo is a discovered test: how to run it and what it must do.
type TestInfo struct {
	Execution ExecutionInfo
	Specs     Specs
	Origin    Origin
}

// Name returns a short display name: each source relative to the test root
// (its last two path components), followed by the options.
func (t *TestInfo) Name() string {
	parts := make([]string, 0, len(t.Execution.Sources)+len(t.Execution.Options))
	for _, src := range t.Execution.Sources {
		parts = append(parts, shortPath(src))
	}
	parts = append(parts, t.Execution.Options...)
	return strings.Join(parts, " ")
}

func (t *TestInfo) String() string {
	return t.Name() + ": " + t.Specs.String()
}

func shortPath(path string) string {
	dir, file := filepath.Split(filepath.Clean(path))
	parent := filepath.Base(dir)
	if parent == "." || parent == string(filepath.Separator) || parent == "" {
		return file
	}
	return filepath.ToSlash(filepath.Join(parent, file))
}

// Mismatch describes a test whose observed behavior contradicts its spec.
type Mismatch struct {
	Expected Behavior
	Actual   Behavior
	Output   string
}

func (m *Mismatch) String() string {
	return fmt.Sprintf("expected %s, got %s", m.Expected, m.Actual)
}
