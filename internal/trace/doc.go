// Package trace records what the repair pipeline is doing.
//
// Spans wrap the run, each file, each repair pass and (at debug level) each
// rule; the orchestrator attaches edit counts and window counts as extras.
//
// # Usage
//
//	mend repair --trace=- --trace-level=detail src/
//
// # Tracers
//
//   - Nop: disabled tracing
//   - StreamTracer: immediate write to output (file/stderr)
//   - RingTracer: circular buffer dumped on failure
//   - MultiTracer: fan-out to several tracers
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelError: ring dump only
//   - LevelPhase: driver and file boundaries
//   - LevelDetail: repair passes
//   - LevelDebug: rule proposals and edit application
//
// # Context Propagation
//
// The tracer and the current parent span travel in the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span, ctx := trace.Start(ctx, trace.ScopeFile, "file:"+path)
//	defer span.End("")
//
// Hot loops that already hold the tracer call Begin and Point directly.
package trace
