// Package slogobs implements observability.Provider over log/slog.
//
// [New] returns an [Observer] that logs spans, metrics and messages through
// a [Handler], a compact line-oriented slog.Handler. The default level comes
// from the PROMPTFN_LOG_LEVEL environment variable; see [ParseLevel].
package slogobs
