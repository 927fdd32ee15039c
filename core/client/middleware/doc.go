// Package middleware provides the stock [client.Middleware] implementations.
//
//   - [NewRetryMiddleware] retries transient provider failures with
//     exponential backoff and jitter.
//   - [NewTimeoutMiddleware] bounds each request with a deadline.
//   - [NewLoggingMiddleware] logs requests and responses through slog.
//
// Retry belongs here rather than in the prompt function: the invoker performs
// exactly one backend call, and a client decides whether that call retries.
//
//	c, err := client.New(provider,
//	    client.WithMiddleware(
//	        middleware.NewTimeoutMiddleware(30*time.Second),
//	        middleware.NewRetryMiddleware(middleware.RetryConfig{MaxRetries: 3}),
//	        middleware.NewLoggingMiddleware(slog.Default(), middleware.LogLevelStandard),
//	    ),
//	)
//
// The first middleware is the outermost: Timeout → Retry → Logging → Provider.
package middleware
