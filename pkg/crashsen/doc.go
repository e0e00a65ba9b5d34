// Package crashsen provides lightweight, pluggable error and crash
// monitoring for Go processes.
//
// crashsen captures errors with scrubbed context and routes them to
// configurable sinks. Its fatal handler owns the decision of when an
// uncaught error terminates the process: it reports the first error
// best-effort, terminates at most once under its own control, and uses a
// grace window to arbitrate between a wedged reporting path and a storm of
// cascading errors.
//
// # Core Components
//
// The library is organized around these concepts:
//
//   - ErrorEvent: The canonical error representation with severity, mechanism, and metadata
//   - Collector: Central abstraction that applies scrubbing and fingerprinting before persistence
//   - Sink: Destination for error events (sentry, zaplog, stderr, async, multi, noop)
//   - Dispatcher: Process-level channel for uncaught errors, with tagged handler registration
//   - FatalHandler: Termination policy for uncaught errors
//   - Scrubber: Redacts sensitive data before anything leaves the process
//
// # Quick Start
//
// Process-level fatal handling:
//
//	collector := crashsen.NewCollector(
//	    crashsen.WithSink(stderr.NewStderrSink()),
//	    crashsen.WithDefaultScrubbing(),
//	)
//	dispatcher := crashsen.NewDispatcher(collector)
//	deregister := crashsen.NewFatalHandler(dispatcher).Attach()
//	defer deregister()
//
//	dispatcher.Go(ctx, runWorker)
//
// For standalone capture without termination policy:
//
//	collector := crashsen.NewCollector(crashsen.WithSink(stderr.NewStderrSink()))
//	defer crashsen.Recover(ctx, collector)
//
// # Design Principles
//
//   - Termination never waits on reporting: the report of a fatal error is fire-and-forget
//   - Registration is explicit, never an import-time side effect; every Register returns a deregister func
//   - Fail-closed scrubbing: sensitive fields are redacted before leaving the process
//   - Zero-dependency core: external dependencies only in sink/handler packages
package crashsen
