// Package report prints test outcomes for people: a line per finished test
// while the run is going, then the details of everything that went wrong
// and a one-line summary.
package report

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"c0check/internal/runner"
)

// Options configure a Reporter.
type Options struct {
	Color bool
	// OutputLines caps the captured output shown per failure; 0 shows all
	// of it.
	OutputLines int
	// Verbose prints passing tests in the progress stream too.
	Verbose bool
}

// Reporter writes to one stream. It is safe to feed progress events from
// several goroutines.
type Reporter struct {
	mu   sync.Mutex
	w    io.Writer
	opts Options
	err  error

	pass, fail, warn, dim, bold *color.Color
}

// New returns a Reporter writing to w.
func New(w io.Writer, opts Options) *Reporter {
	r := &Reporter{
		w:    w,
		opts: opts,
		pass: color.New(color.FgGreen),
		fail: color.New(color.FgRed, color.Bold),
		warn: color.New(color.FgYellow),
		dim:  color.New(color.Faint),
		bold: color.New(color.Bold),
	}
	for _, c := range []*color.Color{r.pass, r.fail, r.warn, r.dim, r.bold} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

// Err returns the first write error, if any.
func (r *Reporter) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func (r *Reporter) printf(format string, args ...any) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.w, format, args...)
}

// OnEvent implements runner.ProgressSink.
func (r *Reporter) OnEvent(evt runner.Event) {
	if !evt.Status.Finished() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	switch evt.Status {
	case runner.StatusPassed, runner.StatusInapplicable:
		if r.opts.Verbose {
			r.printf("%s %s %s\n", r.pass.Sprint(statusLabel(evt.Status)), evt.Test, r.dim.Sprint(formatElapsed(evt.Elapsed)))
		}
	case runner.StatusFailed:
		r.printf("%s %s: got %s\n", r.fail.Sprint(statusLabel(evt.Status)), evt.Test, evt.Actual)
	case runner.StatusTimeout:
		r.printf("%s %s: %s\n", r.warn.Sprint(statusLabel(evt.Status)), evt.Test, evt.Actual)
	case runner.StatusError:
		r.printf("%s %s: %v\n", r.fail.Sprint(statusLabel(evt.Status)), evt.Test, evt.Err)
	}
}

func statusLabel(s runner.Status) string {
	switch s {
	case runner.StatusPassed:
		return "PASS"
	case runner.StatusInapplicable:
		return "SKIP"
	case runner.StatusTimeout:
		return "TIME"
	case runner.StatusError:
		return "ERR "
	default:
		return "FAIL"
	}
}

// Summary prints the details of every failure, timeout and error in sum,
// followed by the totals line.
func (r *Reporter) Summary(sum *runner.Summary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var mismatches []runner.Outcome
	for _, o := range sum.Failures {
		if o.Status() != runner.StatusTimeout {
			mismatches = append(mismatches, o)
		}
	}

	if len(mismatches) > 0 {
		r.printf("\n%s\n", r.bold.Sprintf("Failures (%d):", len(mismatches)))
		for _, o := range mismatches {
			r.outcome(o)
		}
	}
	if len(sum.Timeouts) > 0 {
		r.printf("\n%s\n", r.bold.Sprintf("Timeouts (%d):", len(sum.Timeouts)))
		for _, o := range sum.Timeouts {
			r.printf("  %s %s\n", o.Test.Name(), r.dim.Sprintf("(%s)", o.Test.Origin))
			r.printf("    spec: %s\n", o.Test.Specs)
		}
	}
	if len(sum.Errors) > 0 {
		r.printf("\n%s\n", r.bold.Sprintf("Errors (%d):", len(sum.Errors)))
		for _, o := range sum.Errors {
			r.printf("  %s %s\n", o.Test.Name(), r.dim.Sprintf("(%s)", o.Test.Origin))
			r.printf("    %s\n", r.fail.Sprint(o.Err))
		}
	}

	r.printf("\n%s\n", r.totals(sum))
	return r.err
}

func (r *Reporter) outcome(o runner.Outcome) {
	m := o.Result.Mismatch
	r.printf("  %s %s\n", r.fail.Sprint(o.Test.Name()), r.dim.Sprintf("(%s)", o.Test.Origin))
	r.printf("    spec:     %s\n", o.Test.Specs)
	r.printf("    expected: %s\n", m.Expected)
	r.printf("    actual:   %s\n", m.Actual)
	if out := strings.TrimRight(m.Output, "\n"); out != "" {
		r.printf("    output:\n")
		for _, line := range Indent(out, "      ", r.opts.OutputLines) {
			r.printf("%s\n", line)
		}
	}
}

func (r *Reporter) totals(sum *runner.Summary) string {
	failed := len(sum.Failures)
	passed := r.pass.Sprintf("%d passed", sum.Passed)
	failedText := fmt.Sprintf("%d failed (%d timeouts)", failed, len(sum.Timeouts))
	if failed > 0 {
		failedText = r.fail.Sprint(failedText)
	}
	errorsText := fmt.Sprintf("%d errors", len(sum.Errors))
	if len(sum.Errors) > 0 {
		errorsText = r.fail.Sprint(errorsText)
	}
	line := fmt.Sprintf("%s: %s, %s, %s, %d skipped-by-spec",
		sum.Implementation, passed, failedText, errorsText, sum.Inapplicable)
	if sum.Cancelled > 0 {
		line += r.warn.Sprintf(", %d not run (interrupted)", sum.Cancelled)
	}
	return line + r.dim.Sprintf(" in %s", formatElapsed(sum.Elapsed))
}

// Indent prefixes every line of text and keeps at most limit lines
// (0 keeps all), replacing the rest with a count.
func Indent(text, prefix string, limit int) []string {
	lines := strings.Split(text, "\n")
	hidden := 0
	if limit > 0 && len(lines) > limit {
		hidden = len(lines) - limit
		lines = lines[:limit]
	}
	out := make([]string, 0, len(lines)+1)
	for _, l := range lines {
		out = append(out, prefix+l)
	}
	if hidden > 0 {
		out = append(out, fmt.Sprintf("%s... %d more lines", prefix, hidden))
	}
	return out
}

func formatElapsed(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.1fms", float64(d)/float64(time.Millisecond))
	}
	return d.Round(10 * time.Millisecond).String()
}
