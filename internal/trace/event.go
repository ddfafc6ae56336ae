package trace

import "time"

// Kind is the type of a trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1 // span start
	KindSpanEnd                   // span end
	KindPoint                     // instant event
	KindHeartbeat                 // periodic liveness signal
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	case KindHeartbeat:
		return "heartbeat"
	default:
		return "unknown"
	}
}

// Scope is the granularity of an event. Lower values are coarser.
type Scope uint8

const (
	ScopeRun     Scope = iota + 1 // discovery, the worker pool
	ScopeTest                     // one test
	ScopeProcess                  // one compile or execute child
)

func (s Scope) String() string {
	switch s {
	case ScopeRun:
		return "run"
	case ScopeTest:
		return "test"
	case ScopeProcess:
		return "process"
	default:
		return "unknown"
	}
}

// Event is a single trace record.
type Event struct {
	Time     time.Time
	Seq      uint64 // global, monotonic
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for root spans
	GID      uint64 // goroutine that opened the span
	Name     string // "run", "test:<name>", "compile", "execute"
	Detail   string
	Extra    map[string]string
}
