// Package sandbox runs untrusted programs (the compiler under test and the
// programs it produced) as child processes under CPU and address-space
// ceilings, and classifies how they terminated.
//
// Limits are applied by a launcher: the harness re-executes its own binary
// with a marker in the environment, the launcher sets the rlimits on itself
// and then execs the target in place. Any binary that uses this package
// must call Main before doing anything else.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"go.uber.org/zap"

	"c0check/internal/spec"
	"c0check/internal/trace"
)

// ResultFileEnv names the file a test program writes its return value to.
const ResultFileEnv = "C0_RESULT_FILE"

// DefaultMaxOutput bounds the captured output of one child.
const DefaultMaxOutput = 1 << 20

// Limits are the resource ceilings for one child. Zero means unlimited.
type Limits struct {
	CPUSeconds  uint64
	MemoryBytes uint64
}

func (l Limits) String() string {
	return fmt.Sprintf("cpu=%ds mem=%d", l.CPUSeconds, l.MemoryBytes)
}

// Command is one program to run under the sandbox.
type Command struct {
	Path string
	Args []string
	// Dir is the working directory; empty keeps the harness's.
	Dir    string
	Limits Limits
}

// CompileResult is the outcome of a compiler run that did not hit an
// infrastructure failure.
type CompileResult struct {
	Output string
	// Failed is set when the compiler rejected the program (exit 1).
	Failed bool
}

// Execution is the classified outcome of running a test program.
type Execution struct {
	Output   string
	Behavior spec.Behavior
}

// Options configure a Sandbox.
type Options struct {
	// WorkDir holds temporary artifacts. Defaults to the current directory;
	// a relative path is resolved against it.
	WorkDir   string
	MaxOutput int
	Logger    *zap.Logger
}

// Sandbox starts children through the launcher.
type Sandbox struct {
	self      string
	names     *Namer
	maxOutput int
	log       *zap.Logger
}

// New resolves the launcher binary (the running executable) and the
// artifact directory.
func New(opts Options) (*Sandbox, error) {
	self, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locate launcher: %w", err)
	}
	// Children run in their test's directory: every artifact path is absolute.
	dir, err := filepath.Abs(opts.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("resolve work dir: %w", err)
	}
	if opts.MaxOutput <= 0 {
		opts.MaxOutput = DefaultMaxOutput
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Sandbox{
		self:      self,
		names:     NewNamer(dir),
		maxOutput: opts.MaxOutput,
		log:       log,
	}, nil
}

// Names returns the artifact namer shared by everything using s.
func (s *Sandbox) Names() *Namer { return s.names }

// Compile runs a compiler. Its environment is inherited from the harness.
func (s *Sandbox) Compile(ctx context.Context, c Command) (CompileResult, error) {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeProcess, "compile", trace.ParentSpan(ctx))
	st, output, err := s.spawn(ctx, c, os.Environ())
	if err != nil {
		span.End("error")
		return CompileResult{}, withOp(err, "compile", output)
	}
	span.WithExtra("status", st.String())

	failed, reason := classifyCompile(st)
	if reason != "" {
		span.End("error")
		return CompileResult{}, &Error{Op: "compile", Reason: reason, Output: output}
	}
	span.End("")
	return CompileResult{Output: output, Failed: failed}, nil
}

// Execute runs a test program with only ResultFileEnv in its environment
// and classifies its termination. The result file is always removed.
func (s *Sandbox) Execute(ctx context.Context, c Command) (Execution, error) {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeProcess, "execute", trace.ParentSpan(ctx))

	resultPath := s.names.Next("c0_result", "")
	defer s.Remove(resultPath)

	st, output, err := s.spawn(ctx, c, []string{ResultFileEnv + "=" + resultPath})
	if err != nil {
		span.End("error")
		return Execution{}, withOp(err, "execute", output)
	}
	span.WithExtra("status", st.String())

	var result []byte
	var readErr error
	if !st.signaled && st.code == 0 {
		result, readErr = os.ReadFile(resultPath)
	}
	b, reason := classifyExecution(st, result, readErr)
	if reason != "" {
		span.End("error")
		return Execution{}, &Error{Op: "execute", Reason: reason, Output: output}
	}
	span.End(b.String())
	return Execution{Output: output, Behavior: b}, nil
}

// RemoveArtifact deletes a compiled artifact and, on darwin, the
// debug-symbol bundle the compiler leaves next to it. Failures are logged.
func (s *Sandbox) RemoveArtifact(path string) {
	s.Remove(path)
	if runtime.GOOS == "darwin" {
		if err := os.RemoveAll(path + ".dSYM"); err != nil {
			s.log.Warn("could not remove debug symbols", zap.String("path", path+".dSYM"), zap.Error(err))
		}
	}
}

// Remove deletes a temporary file. A missing file is not an error; other
// failures are logged.
func (s *Sandbox) Remove(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.log.Warn("could not remove artifact", zap.String("path", path), zap.Error(err))
	}
}

// launchEnv returns the variables that turn the re-executed binary into a
// launcher for l.
func launchEnv(l Limits) []string {
	return []string{
		envLaunch + "=1",
		fmt.Sprintf("%s=%d", envCPU, l.CPUSeconds),
		fmt.Sprintf("%s=%d", envMemory, l.MemoryBytes),
	}
}

const (
	envLaunch = "C0CHECK_SANDBOX_LAUNCH"
	envCPU    = "C0CHECK_SANDBOX_CPU"
	envMemory = "C0CHECK_SANDBOX_MEM"
)

// childEnv drops the launcher's own variables from environ.
func childEnv(environ []string) []string {
	out := make([]string, 0, len(environ))
	for _, kv := range environ {
		if strings.HasPrefix(kv, envLaunch+"=") ||
			strings.HasPrefix(kv, envCPU+"=") ||
			strings.HasPrefix(kv, envMemory+"=") {
			continue
		}
		out = append(out, kv)
	}
	return out
}
