package sandbox

import (
	"encoding/binary"
	"errors"
	"testing"

	"c0check/internal/spec"
)

func resultRecord(v int32) []byte {
	b := make([]byte, resultSize)
	b[0] = 1
	binary.NativeEndian.PutUint32(b[1:], uint32(v))
	return b
}

func TestClassifyExecution_ExitCodes(t *testing.T) {
	tests := []struct {
		name   string
		st     status
		result []byte
		want   spec.Behavior
		errors bool
	}{
		{"return", status{code: 0}, resultRecord(-7), spec.ReturnOf(-7), false},
		{"return zero", status{code: 0}, resultRecord(0), spec.ReturnOf(0), false},
		{"short result", status{code: 0}, []byte{1, 2}, spec.Behavior{}, true},
		{"failure", status{code: 1}, nil, spec.Of(spec.Failure), false},
		{"compile error", status{code: 2}, nil, spec.Of(spec.CompileError), false},
		{"alternate failure", status{code: 4}, nil, spec.Of(spec.Failure), false},
		{"exec failed", status{code: ExitLaunchFailed}, nil, spec.Behavior{}, true},
		{"launcher aborted", status{code: ExitLauncherAborted}, nil, spec.Behavior{}, true},
		{"unknown code", status{code: 3}, nil, spec.Behavior{}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, reason := classifyExecution(tc.st, tc.result, nil)
			if tc.errors {
				if reason == "" {
					t.Fatalf("expected an infrastructure error, got %v", got)
				}
				return
			}
			if reason != "" {
				t.Fatalf("unexpected error: %s", reason)
			}
			if got != tc.want {
				t.Errorf("behavior = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestClassifyExecution_MissingResultFile(t *testing.T) {
	_, reason := classifyExecution(status{code: 0}, nil, errors.New("no such file"))
	if reason == "" {
		t.Fatalf("a clean exit without a result file must be an infrastructure error")
	}
}

func TestClassifyCompile(t *testing.T) {
	tests := []struct {
		st     status
		failed bool
		errors bool
	}{
		{status{code: 0}, false, false},
		{status{code: 1}, true, false},
		{status{code: 2}, false, true},
		{status{code: ExitLaunchFailed}, false, true},
		{status{code: ExitLauncherAborted}, false, true},
		{status{code: 9}, false, true},
	}
	for _, tc := range tests {
		failed, reason := classifyCompile(tc.st)
		if failed != tc.failed || (reason != "") != tc.errors {
			t.Errorf("classifyCompile(%v) = %v, %q", tc.st, failed, reason)
		}
	}
}

func TestError_IsInfrastructure(t *testing.T) {
	cause := errors.New("fork: resource temporarily unavailable")
	err := error(&Error{Op: "execute", Reason: "could not start", Err: cause})
	if !errors.Is(err, ErrInfrastructure) || !errors.Is(err, cause) {
		t.Errorf("Error should unwrap to both ErrInfrastructure and its cause")
	}
	if got := err.Error(); got != "execute: could not start: fork: resource temporarily unavailable" {
		t.Errorf("Error() = %q", got)
	}
}

func TestCapture_TruncatesAndNormalises(t *testing.T) {
	c := newCapture(8)
	// "e" followed by a combining acute accent: 3 bytes, NFC form is "é".
	n, err := c.Write([]byte("e\u0301t "))
	if err != nil || n != 5 {
		t.Fatalf("Write = %d, %v", n, err)
	}
	n, _ = c.Write([]byte("overflow"))
	if n != 8 {
		t.Errorf("overflowing write should report full length, got %d", n)
	}
	want := "\u00e9t ove\n[5 more bytes of output discarded]\n"
	if got := c.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	bad := newCapture(16)
	bad.Write([]byte{'o', 'k', 0xff})
	if got := bad.String(); got != "ok\uFFFD" {
		t.Errorf("invalid UTF-8 not replaced: %q", got)
	}
}

func TestChildEnv_DropsLauncherVariables(t *testing.T) {
	env := append([]string{"PATH=/bin", ResultFileEnv + "=/tmp/r"}, launchEnv(Limits{CPUSeconds: 1})...)
	got := childEnv(env)
	if len(got) != 2 || got[0] != "PATH=/bin" || got[1] != ResultFileEnv+"=/tmp/r" {
		t.Errorf("childEnv = %v", got)
	}
}
