package main

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/leofalp/promptfn/core/client"
	"github.com/leofalp/promptfn/core/client/middleware"
	"github.com/leofalp/promptfn/core/function"
	"github.com/leofalp/promptfn/core/template"
	"github.com/leofalp/promptfn/internal/config"
	"github.com/leofalp/promptfn/providers/ai"
	"github.com/leofalp/promptfn/providers/ai/openai"
	"github.com/leofalp/promptfn/providers/observability/slogobs"
)

// impl is the shape every function file compiles to: a dynamic record in,
// the canonical deserialized value out.
type impl = function.Impl[template.Map, any]

func newProvider(cfg config.ClientConfig, canned string, dryRun bool) (ai.Provider, error) {
	if dryRun || cfg.Provider == config.ProviderFake {
		if canned == "" {
			return nil, errors.New("the fake provider needs a canned answer, pass --response")
		}
		return ai.NewFake(canned), nil
	}

	var provider ai.Provider = openai.New()
	if key := cfg.APIKey(); key != "" {
		provider = provider.WithAPIKey(key)
	}
	if cfg.BaseURL != "" {
		provider = provider.WithBaseURL(cfg.BaseURL)
	}
	return provider, nil
}

// clientOptions translates the client section. Retry wraps the timeout so
// each attempt gets its own deadline; logging sees every attempt.
func clientOptions(cfg config.ClientConfig, logger *slog.Logger) []client.Option {
	opts := []client.Option{
		client.WithSystemPrompt(cfg.SystemPrompt),
		client.WithGenerationConfig(cfg.GenerationConfig()),
	}
	if cfg.Model != "" {
		opts = append(opts, client.WithModel(cfg.Model))
	}

	var chain []client.Middleware
	if cfg.Retries > 0 {
		chain = append(chain, middleware.NewRetryMiddleware(middleware.RetryConfig{
			MaxRetries: cfg.Retries,
			OnRetry: func(attempt int, wait time.Duration, err error) {
				logger.Warn("retrying llm request", "attempt", attempt, "wait", wait, "error", err)
			},
		}))
	}
	if cfg.Timeout > 0 {
		chain = append(chain, middleware.NewTimeoutMiddleware(cfg.Timeout))
	}
	if level, ok := logLevels[cfg.LogLevel]; ok {
		chain = append(chain, middleware.NewLoggingMiddleware(logger, level))
	}
	if len(chain) > 0 {
		opts = append(opts, client.WithMiddleware(chain...))
	}
	return opts
}

var logLevels = map[string]middleware.LogLevel{
	"minimal":  middleware.LogLevelMinimal,
	"standard": middleware.LogLevelStandard,
	"verbose":  middleware.LogLevelVerbose,
}

// buildImpl compiles fn against provider. With debug set, the client and the
// invoker also report spans and metrics through logger.
func buildImpl(fn *config.Function, provider ai.Provider, logger *slog.Logger, debug bool) (*impl, error) {
	opts := clientOptions(fn.Client, logger)

	var observer *slogobs.Observer
	if debug {
		observer = slogobs.New(slogobs.WithLogger(logger))
		opts = append(opts, client.WithObserver(observer))
	}

	c, err := client.New(provider, opts...)
	if err != nil {
		return nil, fmt.Errorf("build client: %w", err)
	}

	cfg := function.Config[template.Map, any]{
		Name:     fn.Name,
		Function: fn.Function,
		Template: fn.Template,
		Root:     fn.Root,
		Output:   fn.Output,
		Schema:   fn.Schema,
		Client:   c,
	}
	if observer != nil {
		cfg.Observer = observer
	}
	return function.New(cfg)
}
