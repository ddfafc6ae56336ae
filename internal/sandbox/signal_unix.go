//go:build linux || darwin

package sandbox

import (
	"syscall"

	"c0check/internal/spec"
)

func signalBehavior(sig syscall.Signal) (spec.Behavior, bool) {
	switch sig {
	case syscall.SIGSEGV, syscall.SIGBUS:
		return spec.Of(spec.Segfault), true
	case syscall.SIGXCPU, syscall.SIGKILL:
		// The kernel sends SIGKILL once the hard CPU ceiling is reached.
		return spec.Of(spec.InfiniteLoop), true
	case syscall.SIGFPE:
		return spec.Of(spec.DivZero), true
	case syscall.SIGABRT:
		return spec.Of(spec.Abort), true
	}
	return spec.Behavior{}, false
}

func isTimeoutSignal(sig syscall.Signal) bool {
	return sig == syscall.SIGXCPU || sig == syscall.SIGKILL
}
