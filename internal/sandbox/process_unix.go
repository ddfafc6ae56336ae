//go:build linux || darwin

package sandbox

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"syscall"
	"time"
)

// waitDelay bounds how long output is drained after the child exits, in
// case a grandchild still holds the pipe.
const waitDelay = 2 * time.Second

// spawn runs c through the launcher with env and waits for it.
func (s *Sandbox) spawn(ctx context.Context, c Command, env []string) (status, string, error) {
	out := newCapture(s.maxOutput)

	cmd := exec.CommandContext(ctx, s.self, append([]string{c.Path}, c.Args...)...)
	cmd.Dir = c.Dir
	cmd.Env = append(env, launchEnv(c.Limits)...)
	cmd.Stdout = out
	cmd.Stderr = out
	cmd.WaitDelay = waitDelay
	// A process group lets cancellation reach whatever the compiler forked.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return status{}, out.String(), ctxErr
	}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) && !errors.Is(err, exec.ErrWaitDelay) {
			return status{}, out.String(), &Error{Reason: fmt.Sprintf("could not start %s", c.Path), Err: err}
		}
	}
	if cmd.ProcessState == nil {
		return status{}, out.String(), &Error{Reason: "no process state", Err: err}
	}

	ws, ok := cmd.ProcessState.Sys().(syscall.WaitStatus)
	if !ok {
		return status{}, out.String(), &Error{Reason: "unrecognised wait status"}
	}
	st := status{code: ws.ExitStatus()}
	if ws.Signaled() {
		st.signaled = true
		st.signal = ws.Signal()
	}
	return st, out.String(), nil
}
