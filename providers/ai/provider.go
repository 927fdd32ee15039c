package ai

import (
	"context"
	"net/http"
)

// Provider is implemented by every language-model backend. A provider turns
// one ChatRequest into one completed ChatResponse; it keeps no conversation
// state between calls.
type Provider interface {
	// SendMessage sends request and returns the completed response. Transport
	// failures, non-2xx answers and context cancellation come back as errors.
	SendMessage(ctx context.Context, request ChatRequest) (*ChatResponse, error)

	// Name identifies the provider in logs and spans, e.g. "openai".
	Name() string

	WithAPIKey(apiKey string) Provider
	WithBaseURL(baseURL string) Provider
	WithHttpClient(httpClient *http.Client) Provider
}
