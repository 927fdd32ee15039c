// Package observability defines the tracing, metrics and logging interfaces
// that prompt functions and the backend client report through.
//
// [Provider] composes [Tracer], [Metrics] and [Logger]. It is handed to
// components explicitly; [ContextWithObserver] and [ContextWithSpan] exist for
// code that only has a context to work with. Attribute keys and span names
// live in semconv.go.
package observability
