package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/leofalp/promptfn/core/client"
	"github.com/leofalp/promptfn/internal/utils"
	"github.com/leofalp/promptfn/providers/ai"
)

// LogLevel controls how much the logging middleware records.
type LogLevel int

const (
	// LogLevelMinimal logs the model, duration and token counts.
	LogLevelMinimal LogLevel = iota

	// LogLevelStandard adds the prompt length and the finish reason.
	LogLevelStandard

	// LogLevelVerbose adds the prompt and the generated text, truncated.
	// They may contain user data; keep this out of production.
	LogLevelVerbose
)

const truncateLen = 500

// NewLoggingMiddleware logs one line before and one after every provider
// call. A nil logger means slog.Default().
func NewLoggingMiddleware(logger *slog.Logger, level LogLevel) client.Middleware {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next client.SendFunc) client.SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			logger.InfoContext(ctx, "llm send", requestAttrs(request, level)...)

			start := time.Now()
			response, err := next(ctx, request)
			elapsed := time.Since(start)

			if err != nil {
				logger.ErrorContext(ctx, "llm send failed",
					slog.String("model", request.Model),
					slog.Duration("duration", elapsed),
					slog.String("error", err.Error()),
				)
				return nil, err
			}

			logger.InfoContext(ctx, "llm send completed", responseAttrs(response, elapsed, level)...)
			return response, nil
		}
	}
}

func requestAttrs(request ai.ChatRequest, level LogLevel) []any {
	attrs := []any{slog.String("model", request.Model)}

	var prompt string
	if n := len(request.Messages); n > 0 {
		prompt = request.Messages[n-1].Content
	}
	if level >= LogLevelStandard {
		attrs = append(attrs, slog.Int("prompt_length", len(prompt)))
	}
	if level >= LogLevelVerbose {
		attrs = append(attrs, slog.String("prompt", utils.TruncateString(prompt, truncateLen)))
	}
	return attrs
}

func responseAttrs(response *ai.ChatResponse, elapsed time.Duration, level LogLevel) []any {
	attrs := []any{
		slog.String("model", response.Model),
		slog.Duration("duration", elapsed),
	}
	if u := response.Usage; u != nil {
		attrs = append(attrs,
			slog.Int("prompt_tokens", u.PromptTokens),
			slog.Int("completion_tokens", u.CompletionTokens),
			slog.Int("total_tokens", u.TotalTokens),
		)
	}
	if level >= LogLevelStandard && response.FinishReason != "" {
		attrs = append(attrs, slog.String("finish_reason", response.FinishReason))
	}
	if level >= LogLevelVerbose && response.Content != "" {
		attrs = append(attrs, slog.String("response", utils.TruncateString(response.Content, truncateLen)))
	}
	return attrs
}
