package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff     Level = iota // no tracing
	LevelRun                  // batch boundaries
	LevelTest                 // plus one span per test
	LevelProcess              // plus every child process
)

func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelRun:
		return "run"
	case LevelTest:
		return "test"
	case LevelProcess:
		return "process"
	default:
		return "unknown"
	}
}

// ParseLevel converts a flag value to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "off":
		return LevelOff, nil
	case "run":
		return LevelRun, nil
	case "test":
		return LevelTest, nil
	case "process":
		return LevelProcess, nil
	default:
		return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|run|test|process)", s)
	}
}

// ShouldEmit reports whether events of scope are recorded at this level.
func (l Level) ShouldEmit(scope Scope) bool {
	return l != LevelOff && uint8(scope) <= uint8(l)
}
