// Package trace records spans for a c0check run: the batch, each test, and
// every child process the sandbox starts for it.
//
// Tracing is enabled with the global --trace flag:
//
//	c0check --trace=- --trace-level=test run cc0 tests/
//
// # Tracers
//
//   - Nop: no-op tracer used when tracing is disabled
//   - StreamTracer: writes each event as it happens (file or stderr)
//   - RingTracer: keeps the last events in memory for a dump on interrupt
//   - MultiTracer: fans out to several tracers
//
// # Scopes and levels
//
// ScopeRun covers discovery and the worker pool, ScopeTest one test, and
// ScopeProcess one compile or execute child. A level emits every scope up
// to and including its own.
//
// Tracers travel through the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeTest, name, 0)
//	defer span.End("")
package trace
