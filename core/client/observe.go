package client

import (
	"context"
	"time"

	"github.com/leofalp/promptfn/providers/ai"
	"github.com/leofalp/promptfn/providers/observability"
)

// observe is the outermost middleware installed by WithObserver. It sees the
// final outcome after any retry or timeout middleware has run.
func observe(observer observability.Provider, providerName, defaultModel string) Middleware {
	return func(next SendFunc) SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			model := request.Model
			if model == "" {
				model = defaultModel
			}

			ctx, span := observer.StartSpan(ctx, observability.SpanClientRun,
				observability.String(observability.AttrLLMProvider, providerName),
				observability.String(observability.AttrLLMModel, model),
			)
			ctx = observability.ContextWithObserver(ctx, observer)

			start := time.Now()
			response, err := next(ctx, request)
			elapsed := time.Since(start)

			status := "ok"
			if err != nil {
				status = "error"
			}
			observer.Counter(observability.MetricClientRequests).Add(ctx, 1,
				observability.String(observability.AttrStatus, status),
				observability.String(observability.AttrLLMModel, model),
			)
			observer.Histogram(observability.MetricClientDuration).Record(ctx, elapsed.Seconds(),
				observability.String(observability.AttrLLMModel, model),
			)

			if err != nil {
				observer.Error(ctx, "llm request failed",
					observability.Error(err),
					observability.Duration(observability.AttrDuration, elapsed),
					observability.String(observability.AttrLLMModel, model),
				)
				observability.EndSpan(span, err)
				return nil, err
			}

			if response != nil {
				span.SetAttributes(
					observability.String(observability.AttrLLMResponseID, response.Id),
					observability.String(observability.AttrLLMFinishReason, response.FinishReason),
					observability.Int(observability.AttrResponseLength, len(response.Content)),
				)
				if u := response.Usage; u != nil {
					span.SetAttributes(
						observability.Int(observability.AttrLLMTokensPrompt, u.PromptTokens),
						observability.Int(observability.AttrLLMTokensCompletion, u.CompletionTokens),
						observability.Int(observability.AttrLLMTokensTotal, u.TotalTokens),
					)
					observer.Counter(observability.MetricTokensTotal).Add(ctx, int64(u.TotalTokens),
						observability.String(observability.AttrLLMModel, model),
					)
				}
			}
			observer.Debug(ctx, "llm request completed",
				observability.Duration(observability.AttrDuration, elapsed),
				observability.String(observability.AttrLLMModel, model),
			)
			observability.EndSpan(span, nil)
			return response, nil
		}
	}
}
