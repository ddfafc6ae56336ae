package runner

import (
	"time"

	"c0check/internal/spec"
)

// Status is the state of one test in the progress stream.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusPassed  Status = "passed"
	// StatusInapplicable marks a test no clause applies to; it passes
	// without running.
	StatusInapplicable Status = "n/a"
	StatusFailed       Status = "failed"
	StatusTimeout      Status = "timeout"
	StatusError        Status = "error"
)

// Finished reports whether s is a terminal status.
func (s Status) Finished() bool {
	switch s {
	case StatusPassed, StatusInapplicable, StatusFailed, StatusTimeout, StatusError:
		return true
	}
	return false
}

// Event reports progress for one test.
type Event struct {
	Index   int // position in the input list
	Test    string
	Status  Status
	Actual  spec.Behavior
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. It is called from worker
// goroutines.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// FuncSink adapts a function to ProgressSink.
type FuncSink func(Event)

func (f FuncSink) OnEvent(evt Event) { f(evt) }

type nopSink struct{}

func (nopSink) OnEvent(Event) {}
