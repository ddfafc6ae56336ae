package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
)

// Namer generates artifact paths that are unique across the workers of one
// harness and across harness processes sharing a directory.
type Namer struct {
	dir string
	pid int
	seq atomic.Uint64
}

// NewNamer returns a Namer placing artifacts in dir.
func NewNamer(dir string) *Namer {
	return &Namer{dir: dir, pid: os.Getpid()}
}

// Dir is the directory artifacts are placed in.
func (n *Namer) Dir() string { return n.dir }

// Next returns "<dir>/<prefix><pid>-<seq><suffix>".
func (n *Namer) Next(prefix, suffix string) string {
	return filepath.Join(n.dir, fmt.Sprintf("%s%d-%d%s", prefix, n.pid, n.seq.Add(1), suffix))
}
