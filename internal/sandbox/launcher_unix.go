//go:build linux || darwin

package sandbox

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// cpuGrace is how far the hard CPU limit sits above the soft one, so the
// child first receives SIGXCPU.
const cpuGrace = 5

// Main turns the process into a launcher when it was started by a
// Sandbox, and returns immediately otherwise. In launcher mode it never
// returns.
func Main() {
	if os.Getenv(envLaunch) != "1" {
		return
	}
	os.Exit(launch(os.Args[1:], os.Environ()))
}

func launch(argv, environ []string) (code int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "c0check launcher: %v\n", r)
			code = ExitLauncherAborted
		}
	}()

	if len(argv) == 0 {
		fmt.Fprintln(os.Stderr, "c0check launcher: no program given")
		return ExitLaunchFailed
	}
	cpu, err := envUint(environ, envCPU)
	if err != nil {
		fmt.Fprintf(os.Stderr, "c0check launcher: %v\n", err)
		return ExitLaunchFailed
	}
	mem, err := envUint(environ, envMemory)
	if err != nil {
		fmt.Fprintf(os.Stderr, "c0check launcher: %v\n", err)
		return ExitLaunchFailed
	}

	path := argv[0]
	if !strings.ContainsRune(path, '/') {
		if path, err = exec.LookPath(path); err != nil {
			fmt.Fprintf(os.Stderr, "c0check launcher: %v\n", err)
			return ExitLaunchFailed
		}
	}
	env := childEnv(environ)

	// Nothing may allocate much between here and exec: the address-space
	// ceiling applies to the launcher too.
	if err := applyLimits(cpu, mem); err != nil {
		fmt.Fprintf(os.Stderr, "c0check launcher: %v\n", err)
		return ExitLaunchFailed
	}
	err = unix.Exec(path, argv, env)
	fmt.Fprintf(os.Stderr, "c0check launcher: exec %s: %v\n", argv[0], err)
	return ExitLaunchFailed
}

func applyLimits(cpu, mem uint64) error {
	if mem > 0 {
		if err := setLimit(unix.RLIMIT_AS, mem, mem); err != nil {
			return fmt.Errorf("set memory limit: %w", err)
		}
	}
	if cpu > 0 {
		if err := setLimit(unix.RLIMIT_CPU, cpu, cpu+cpuGrace); err != nil {
			return fmt.Errorf("set cpu limit: %w", err)
		}
	}
	return nil
}

// setLimit lowers a resource limit, clamping to the current hard limit
// since an unprivileged process cannot raise it.
func setLimit(resource int, soft, hard uint64) error {
	var cur unix.Rlimit
	if err := unix.Getrlimit(resource, &cur); err != nil {
		return err
	}
	hard = min(hard, cur.Max)
	soft = min(soft, hard)
	return unix.Setrlimit(resource, &unix.Rlimit{Cur: soft, Max: hard})
}

func envUint(environ []string, key string) (uint64, error) {
	prefix := key + "="
	for _, kv := range environ {
		if v, ok := strings.CutPrefix(kv, prefix); ok {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return 0, fmt.Errorf("bad %s: %w", key, err)
			}
			return n, nil
		}
	}
	return 0, nil
}
