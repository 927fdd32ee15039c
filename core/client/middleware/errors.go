package middleware

import "errors"

// ErrRetryExhausted is returned by the retry middleware once every attempt
// failed with a retryable error. The last provider error is wrapped too, so
// both errors.Is(err, ErrRetryExhausted) and errors.As on the cause work.
var ErrRetryExhausted = errors.New("promptfn: all retry attempts exhausted")
