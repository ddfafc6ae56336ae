package executer

import (
	"context"

	"c0check/internal/spec"
)

// cc0 compiles through gcc to a native executable.
type cc0 struct{ cfg Config }

func (*cc0) Properties() spec.Capabilities {
	return spec.Capabilities{
		Libraries:        true,
		Typechecked:      true,
		GarbageCollected: true,
		Safe:             true,
		Name:             "cc0",
	}
}

func (e *cc0) Run(ctx context.Context, test *spec.ExecutionInfo) (string, spec.Behavior, error) {
	artifact := e.cfg.Sandbox.Names().Next("a.out", "")
	defer e.cfg.Sandbox.RemoveArtifact(artifact)

	output, ok, err := compile(ctx, e.cfg, test, "-vo", artifact)
	if err != nil {
		return "", spec.Behavior{}, err
	}
	if !ok {
		return output, spec.Of(spec.CompileError), nil
	}
	return execute(ctx, e.cfg, test, artifact)
}
