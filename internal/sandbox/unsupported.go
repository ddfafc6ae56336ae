//go:build !(linux || darwin)

package sandbox

import (
	"context"
	"runtime"
	"syscall"

	"c0check/internal/spec"
)

// Main does nothing on platforms without a launcher.
func Main() {}

func (s *Sandbox) spawn(context.Context, Command, []string) (status, string, error) {
	return status{}, "", &Error{Reason: "sandboxed execution is not supported on " + runtime.GOOS}
}

func signalBehavior(syscall.Signal) (spec.Behavior, bool) { return spec.Behavior{}, false }

func isTimeoutSignal(syscall.Signal) bool { return false }
