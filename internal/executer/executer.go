// Package executer adapts the three C0 implementations (the cc0 native
// backend, cc0 with the c0vm bytecode VM, and the coin interpreter) to a
// common interface the oracle can run tests against.
package executer

import (
	"context"
	"fmt"
	"strings"

	"c0check/internal/sandbox"
	"c0check/internal/spec"
)

// Executer compiles (when needed) and runs one test.
type Executer interface {
	// Properties is constant for an implementation.
	Properties() spec.Capabilities
	// Run returns the captured output and the classified behavior. A
	// rejected program yields CompileError with the compiler's output.
	// Errors are infrastructure failures.
	Run(ctx context.Context, test *spec.ExecutionInfo) (string, spec.Behavior, error)
}

// Sandbox is the part of *sandbox.Sandbox executers use.
type Sandbox interface {
	Compile(ctx context.Context, c sandbox.Command) (sandbox.CompileResult, error)
	Execute(ctx context.Context, c sandbox.Command) (sandbox.Execution, error)
	Names() *sandbox.Namer
	Remove(path string)
	RemoveArtifact(path string)
}

// Kind selects an implementation.
type Kind uint8

const (
	KindCC0 Kind = iota + 1
	KindC0VM
	KindCoin
)

var kindNames = map[Kind]string{
	KindCC0:  "cc0",
	KindC0VM: "c0vm",
	KindCoin: "coin",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Kinds lists every implementation in a stable order.
func Kinds() []Kind { return []Kind{KindCC0, KindC0VM, KindCoin} }

// ParseKind accepts cc0, c0vm or coin in any case.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if strings.EqualFold(s, k.String()) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown implementation %q (expected: cc0|c0vm|coin)", s)
}

// Config holds what every executer needs.
type Config struct {
	Toolchain Toolchain
	Sandbox   Sandbox
	// Compile bounds cc0 (including the gcc it runs); Run bounds the test.
	Compile sandbox.Limits
	Run     sandbox.Limits
}

// New builds the executer for kind.
func New(kind Kind, cfg Config) (Executer, error) {
	if cfg.Sandbox == nil {
		return nil, fmt.Errorf("executer %s: no sandbox", kind)
	}
	switch kind {
	case KindCC0:
		return &cc0{cfg: cfg}, nil
	case KindC0VM:
		return &c0vm{cfg: cfg}, nil
	case KindCoin:
		return &coin{cfg: cfg}, nil
	default:
		return nil, fmt.Errorf("unknown implementation %v", kind)
	}
}

// Properties returns the capabilities of kind without building an
// executer.
func Properties(kind Kind) spec.Capabilities {
	switch kind {
	case KindCC0:
		return (&cc0{}).Properties()
	case KindC0VM:
		return (&c0vm{}).Properties()
	case KindCoin:
		return (&coin{}).Properties()
	}
	return spec.Capabilities{}
}

// compile runs cc0 over the test's options and sources, writing the
// output to artifact with outFlag. ok is false when cc0 rejected the
// program, in which case output holds its diagnostics.
func compile(ctx context.Context, cfg Config, test *spec.ExecutionInfo, outFlag, artifact string) (output string, ok bool, err error) {
	args := make([]string, 0, len(test.Options)+len(test.Sources)+2)
	args = append(args, test.Options...)
	args = append(args, test.Sources...)
	args = append(args, outFlag, artifact)

	res, err := cfg.Sandbox.Compile(ctx, sandbox.Command{
		Path:   cfg.Toolchain.CC0,
		Args:   args,
		Limits: cfg.Compile,
	})
	if err != nil {
		return "", false, err
	}
	return res.Output, !res.Failed, nil
}

func execute(ctx context.Context, cfg Config, test *spec.ExecutionInfo, program string, args ...string) (string, spec.Behavior, error) {
	ex, err := cfg.Sandbox.Execute(ctx, sandbox.Command{
		Path:   program,
		Args:   args,
		Dir:    test.Dir,
		Limits: cfg.Run,
	})
	if err != nil {
		return "", spec.Behavior{}, err
	}
	return ex.Output, ex.Behavior, nil
}
