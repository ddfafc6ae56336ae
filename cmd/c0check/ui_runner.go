package main

import (
	"context"
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"c0check/internal/oracle"
	"c0check/internal/runner"
	"c0check/internal/spec"
	"c0check/internal/ui"
)

type runOutcome struct {
	summary *runner.Summary
	err     error
}

// runWithUI drives the progress view while the runner works in the
// background. Quitting the view cancels the run.
func runWithUI(ctx context.Context, out io.Writer, title string, tests []*spec.TestInfo, r oracle.Runner, opts runner.Options) (*runner.Summary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan runner.Event, 256)
	outcomeCh := make(chan runOutcome, 1)

	go func() {
		opts.Progress = runner.ChannelSink{Ch: events}
		sum, err := runner.Run(ctx, tests, r, opts)
		outcomeCh <- runOutcome{summary: sum, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, len(tests), events)
	program := tea.NewProgram(model, tea.WithOutput(out), tea.WithContext(ctx))
	final, uiErr := program.Run()
	if uiErr != nil || ui.Interrupted(final) {
		cancel()
		// The view no longer reads events; drain them so workers never block.
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil && !errors.Is(uiErr, tea.ErrProgramKilled) {
		return outcome.summary, uiErr
	}
	return outcome.summary, outcome.err
}
