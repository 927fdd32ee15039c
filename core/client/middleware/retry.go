package middleware

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"net"
	"time"

	"github.com/leofalp/promptfn/core/client"
	"github.com/leofalp/promptfn/internal/utils"
	"github.com/leofalp/promptfn/providers/ai"
)

// RetryConfig tunes NewRetryMiddleware. Zero fields take the defaults noted
// on each field.
type RetryConfig struct {
	// MaxRetries is the number of attempts after the first one. Default 3.
	MaxRetries int

	// InitialBackoff is the wait before the first retry. Default 1s.
	InitialBackoff time.Duration

	// MaxBackoff caps any single wait. Default 30s.
	MaxBackoff time.Duration

	// BackoffFactor multiplies the wait after each retry. Default 2.
	BackoffFactor float64

	// JitterFraction adds up to this fraction of the wait as random noise.
	// Default 0.1.
	JitterFraction float64

	// Retryable decides whether an error is worth another attempt. Default
	// DefaultRetryable.
	Retryable func(error) bool

	// OnRetry, when set, is called before each wait.
	OnRetry func(attempt int, wait time.Duration, err error)
}

// DefaultRetryable retries transient HTTP statuses (see utils.IsTransient)
// and network timeouts. Context cancellation is never retried.
func DefaultRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if utils.IsTransient(err) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func (c *RetryConfig) applyDefaults() {
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.InitialBackoff == 0 {
		c.InitialBackoff = time.Second
	}
	if c.MaxBackoff == 0 {
		c.MaxBackoff = 30 * time.Second
	}
	if c.BackoffFactor == 0 {
		c.BackoffFactor = 2
	}
	if c.JitterFraction == 0 {
		c.JitterFraction = 0.1
	}
	if c.Retryable == nil {
		c.Retryable = DefaultRetryable
	}
}

// backoff returns the wait before retry number attempt (0-based):
// min(InitialBackoff * BackoffFactor^attempt, MaxBackoff) plus jitter.
func (c RetryConfig) backoff(attempt int) time.Duration {
	base := float64(c.InitialBackoff) * math.Pow(c.BackoffFactor, float64(attempt))
	if base > float64(c.MaxBackoff) {
		base = float64(c.MaxBackoff)
	}
	jitter := base * c.JitterFraction * rand.Float64() //nolint:gosec // jitter needs no crypto randomness
	return time.Duration(base + jitter)
}

// NewRetryMiddleware retries failed sends according to config. A
// non-retryable error is returned at once. When every attempt fails the
// error wraps ErrRetryExhausted and the last provider error.
func NewRetryMiddleware(config RetryConfig) client.Middleware {
	config.applyDefaults()

	return func(next client.SendFunc) client.SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			var lastErr error

			for attempt := 0; attempt <= config.MaxRetries; attempt++ {
				if attempt > 0 {
					wait := config.backoff(attempt - 1)
					if config.OnRetry != nil {
						config.OnRetry(attempt, wait, lastErr)
					}

					timer := time.NewTimer(wait)
					select {
					case <-ctx.Done():
						timer.Stop()
						return nil, ctx.Err()
					case <-timer.C:
					}
				}

				response, err := next(ctx, request)
				if err == nil {
					return response, nil
				}
				lastErr = err

				if !config.Retryable(err) {
					return nil, err
				}
			}

			return nil, fmt.Errorf("%w after %d retries: %w", ErrRetryExhausted, config.MaxRetries, lastErr)
		}
	}
}
