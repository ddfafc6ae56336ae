package sandbox

import (
	"encoding/binary"
	"fmt"
	"syscall"

	"c0check/internal/spec"
)

// Exit codes reserved by the launcher.
const (
	ExitLaunchFailed    = 100 // the target could not be executed
	ExitLauncherAborted = 101 // the launcher itself crashed
)

// resultSize is the length of the result record: a tag byte followed by a
// native-endian int32.
const resultSize = 5

// status is how a child terminated.
type status struct {
	code     int
	signaled bool
	signal   syscall.Signal
}

func (st status) String() string {
	if st.signaled {
		return "signal " + st.signal.String()
	}
	return fmt.Sprintf("exit %d", st.code)
}

// classifyExecution maps a test program's termination to a behavior. A
// non-empty reason means the termination is outside the known taxonomy.
func classifyExecution(st status, result []byte, readErr error) (spec.Behavior, string) {
	if st.signaled {
		if b, ok := signalBehavior(st.signal); ok {
			return b, ""
		}
		return spec.Behavior{}, fmt.Sprintf("program killed by unexpected signal %q", st.signal)
	}

	switch st.code {
	case 0:
		if readErr != nil {
			return spec.Behavior{}, fmt.Sprintf("program exited cleanly but its result file is unreadable: %v", readErr)
		}
		if len(result) != resultSize {
			return spec.Behavior{}, fmt.Sprintf("program exited cleanly but wrote a %d-byte result file, want %d", len(result), resultSize)
		}
		return spec.ReturnOf(int32(binary.NativeEndian.Uint32(result[1:]))), ""
	case 1, 4:
		return spec.Of(spec.Failure), ""
	case 2:
		return spec.Of(spec.CompileError), ""
	case ExitLaunchFailed:
		return spec.Behavior{}, "could not execute the program"
	case ExitLauncherAborted:
		return spec.Behavior{}, "launcher aborted"
	default:
		return spec.Behavior{}, fmt.Sprintf("program exited with unexpected code %d", st.code)
	}
}

// classifyCompile reports whether the compiler rejected the program. A
// non-empty reason means the compiler run itself failed.
func classifyCompile(st status) (failed bool, reason string) {
	if st.signaled {
		if isTimeoutSignal(st.signal) {
			return false, "compiler exceeded its CPU limit"
		}
		return false, fmt.Sprintf("compiler killed by signal %q", st.signal)
	}

	switch st.code {
	case 0:
		return false, ""
	case 1:
		return true, ""
	case 2:
		return false, "cc0 failed to invoke gcc"
	case ExitLaunchFailed:
		return false, "could not execute the compiler"
	case ExitLauncherAborted:
		return false, "launcher aborted"
	default:
		return false, fmt.Sprintf("compiler exited with unexpected code %d", st.code)
	}
}
