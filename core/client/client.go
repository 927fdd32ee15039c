package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/leofalp/promptfn/providers/ai"
	"github.com/leofalp/promptfn/providers/observability"
)

// Result is what a backend produced for one prompt.
type Result struct {
	Generated    string
	Model        string
	FinishReason string
	Usage        ai.Usage
}

// RefusalError is returned when the model declined to answer and produced no
// text.
type RefusalError struct {
	Model   string
	Refusal string
}

func (e *RefusalError) Error() string {
	return fmt.Sprintf("model %s refused to answer: %s", e.Model, e.Refusal)
}

// Client sends single-message prompts to a provider. It is immutable after
// New and safe for concurrent use.
type Client struct {
	provider     ai.Provider
	model        string
	systemPrompt string
	generation   *ai.GenerationConfig
	middlewares  []Middleware
	observer     observability.Provider
	send         SendFunc
}

// Option configures a Client.
type Option func(*Client)

// WithModel sets the model name sent with every request.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithSystemPrompt sets a system prompt sent ahead of every user message.
func WithSystemPrompt(prompt string) Option {
	return func(c *Client) { c.systemPrompt = prompt }
}

// WithGenerationConfig sets sampling parameters.
func WithGenerationConfig(cfg ai.GenerationConfig) Option {
	return func(c *Client) { c.generation = &cfg }
}

// WithMiddleware appends middlewares to the send chain.
func WithMiddleware(middlewares ...Middleware) Option {
	return func(c *Client) { c.middlewares = append(c.middlewares, middlewares...) }
}

// WithObserver traces each Run as a client.run span and records request
// and token metrics. The observer wraps the whole middleware chain.
func WithObserver(observer observability.Provider) Option {
	return func(c *Client) { c.observer = observer }
}

// New builds a Client for provider.
func New(provider ai.Provider, opts ...Option) (*Client, error) {
	if provider == nil {
		return nil, errors.New("client: provider is required")
	}

	c := &Client{provider: provider}
	for _, opt := range opts {
		opt(c)
	}

	middlewares := c.middlewares
	for i, mw := range middlewares {
		if mw == nil {
			return nil, fmt.Errorf("client: middleware at index %d is nil", i)
		}
	}
	if c.observer != nil {
		middlewares = append([]Middleware{observe(c.observer, provider.Name(), c.model)}, middlewares...)
	}
	c.send = buildSendChain(provider, middlewares)

	return c, nil
}

// Run sends prompt as a single user message and returns the generated text.
// Transport errors are returned as-is; so is ctx.Err() when ctx ends first.
func (c *Client) Run(ctx context.Context, prompt string) (*Result, error) {
	request := ai.ChatRequest{
		Model:            c.model,
		SystemPrompt:     c.systemPrompt,
		Messages:         []ai.Message{{Role: ai.RoleUser, Content: prompt}},
		GenerationConfig: c.generation,
	}

	response, err := c.send(ctx, request)
	if err != nil {
		return nil, err
	}
	if response == nil {
		return nil, fmt.Errorf("client: provider %s returned no response", c.provider.Name())
	}
	if response.Content == "" && response.Refusal != "" {
		return nil, &RefusalError{Model: response.Model, Refusal: response.Refusal}
	}

	result := &Result{
		Generated:    response.Content,
		Model:        response.Model,
		FinishReason: response.FinishReason,
	}
	if result.Model == "" {
		result.Model = c.model
	}
	result.Usage.Add(response.Usage)
	return result, nil
}

// Model returns the configured model name, possibly empty.
func (c *Client) Model() string {
	return c.model
}
