package executer

import (
	"context"

	"c0check/internal/spec"
)

// SkippedC1Output is the output reported for C1 tests under coin.
const SkippedC1Output = "<C1 test skipped>"

// coin interprets the sources directly through coin-exec. It has no
// separate compile phase; coin-exec exits 2 for programs it rejects.
type coin struct{ cfg Config }

func (*coin) Properties() spec.Capabilities {
	return spec.Capabilities{
		Libraries:   true,
		Typechecked: true,
		Safe:        true,
		Name:        "coin",
	}
}

func (e *coin) Run(ctx context.Context, test *spec.ExecutionInfo) (string, spec.Behavior, error) {
	if test.UsesExtension(".c1") {
		return SkippedC1Output, spec.Of(spec.Skipped), nil
	}
	args := make([]string, 0, len(test.Options)+len(test.Sources))
	args = append(args, test.Options...)
	args = append(args, test.Sources...)
	return execute(ctx, e.cfg, test, e.cfg.Toolchain.CoinExec, args...)
}
