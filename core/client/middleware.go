package client

import (
	"context"

	"github.com/leofalp/promptfn/providers/ai"
)

// SendFunc sends one chat request and returns the completed response. It is
// the unit threaded through the middleware chain.
type SendFunc func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error)

// Middleware wraps the next SendFunc in the chain. The first middleware
// given to WithMiddleware is the outermost wrapper.
type Middleware func(next SendFunc) SendFunc

// buildSendChain wraps provider.SendMessage with middlewares so that
// middlewares[0] runs first on the way in and last on the way out.
func buildSendChain(provider ai.Provider, middlewares []Middleware) SendFunc {
	chain := SendFunc(provider.SendMessage)
	for i := len(middlewares) - 1; i >= 0; i-- {
		chain = middlewares[i](chain)
	}
	return chain
}
