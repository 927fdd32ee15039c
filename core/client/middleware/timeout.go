package middleware

import (
	"context"
	"time"

	"github.com/leofalp/promptfn/core/client"
	"github.com/leofalp/promptfn/providers/ai"
)

// NewTimeoutMiddleware bounds every request with timeout. A shorter deadline
// already on the caller's context still wins.
func NewTimeoutMiddleware(timeout time.Duration) client.Middleware {
	return func(next client.SendFunc) client.SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return next(ctx, request)
		}
	}
}
