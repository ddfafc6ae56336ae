package executer

import (
	"context"

	"c0check/internal/spec"
)

// c0vm compiles to bytecode and runs it under the VM.
type c0vm struct{ cfg Config }

func (*c0vm) Properties() spec.Capabilities {
	return spec.Capabilities{
		Libraries:   true,
		Typechecked: true,
		Safe:        true,
		Name:        "cc0_c0vm",
	}
}

func (e *c0vm) Run(ctx context.Context, test *spec.ExecutionInfo) (string, spec.Behavior, error) {
	bytecode := e.cfg.Sandbox.Names().Next("a.out", ".bc0")
	defer e.cfg.Sandbox.Remove(bytecode)

	output, ok, err := compile(ctx, e.cfg, test, "-vbo", bytecode)
	if err != nil {
		return "", spec.Behavior{}, err
	}
	if !ok {
		return output, spec.Of(spec.CompileError), nil
	}
	return execute(ctx, e.cfg, test, e.cfg.Toolchain.C0VM, bytecode)
}
