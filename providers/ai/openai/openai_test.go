package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/leofalp/promptfn/internal/utils"
	"github.com/leofalp/promptfn/providers/ai"
)

func TestNew_ReadsEnvironment(t *testing.T) {
	t.Setenv(EnvAPIKey, "sk-env")
	t.Setenv(EnvBaseURL, "http://localhost:11434/v1/")

	p := New()
	if p.apiKey != "sk-env" {
		t.Errorf("apiKey = %q", p.apiKey)
	}
	if p.baseURL != "http://localhost:11434/v1" {
		t.Errorf("baseURL = %q", p.baseURL)
	}

	t.Setenv(EnvBaseURL, "")
	if got := New().baseURL; got != defaultBaseURL {
		t.Errorf("default baseURL = %q", got)
	}
}

func TestSendMessage(t *testing.T) {
	var got chatCompletionRequest
	var gotPath, gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		fmt.Fprint(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gpt-4o-mini-2024",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"sentiment\": \"Positive\"}"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 5, "total_tokens": 17}
		}`)
	}))
	defer server.Close()

	temperature := float32(0.2)
	p := New().WithAPIKey("sk-test").WithBaseURL(server.URL).WithHttpClient(server.Client())

	resp, err := p.SendMessage(context.Background(), ai.ChatRequest{
		Model:        "gpt-4o-mini",
		SystemPrompt: "be terse",
		Messages:     []ai.Message{{Role: ai.RoleUser, Content: "classify this"}},
		GenerationConfig: &ai.GenerationConfig{
			MaxTokens:   64,
			Temperature: &temperature,
		},
	})
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}

	if gotPath != chatCompletionsEndpoint {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "classify this" {
		t.Errorf("messages = %+v", got.Messages)
	}
	if got.MaxTokens == nil || *got.MaxTokens != 64 || got.Temperature == nil || *got.Temperature != 0.2 {
		t.Errorf("generation config not forwarded: %+v", got)
	}

	if resp.Content != `{"sentiment": "Positive"}` || resp.FinishReason != ai.FinishReasonStop {
		t.Errorf("response = %+v", resp)
	}
	if resp.Model != "gpt-4o-mini-2024" || resp.Id != "chatcmpl-1" {
		t.Errorf("response metadata = %+v", resp)
	}
	if resp.Usage == nil || resp.Usage.TotalTokens != 17 {
		t.Errorf("usage = %+v", resp.Usage)
	}
}

func TestSendMessage_DefaultModelAndNullContent(t *testing.T) {
	var got chatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		fmt.Fprint(w, `{"id": "x", "choices": [{"message": {"role": "assistant", "content": null, "refusal": "no"}, "finish_reason": "content_filter"}]}`)
	}))
	defer server.Close()

	p := New().WithAPIKey("").WithBaseURL(server.URL)
	resp, err := p.SendMessage(context.Background(), ai.ChatRequest{Messages: []ai.Message{{Role: ai.RoleUser, Content: "x"}}})
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if got.Model != defaultModel {
		t.Errorf("model = %q, want %q", got.Model, defaultModel)
	}
	if resp.Content != "" || resp.Refusal != "no" || resp.Usage != nil {
		t.Errorf("response = %+v", resp)
	}
}

func TestSendMessage_Errors(t *testing.T) {
	t.Run("missing key for hosted API", func(t *testing.T) {
		p := New().WithAPIKey("").WithBaseURL(defaultBaseURL)
		if _, err := p.SendMessage(context.Background(), ai.ChatRequest{}); !errors.Is(err, ErrMissingAPIKey) {
			t.Errorf("expected ErrMissingAPIKey, got %v", err)
		}
	})

	t.Run("no choices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"id": "empty", "choices": []}`)
		}))
		defer server.Close()

		p := New().WithAPIKey("k").WithBaseURL(server.URL)
		if _, err := p.SendMessage(context.Background(), ai.ChatRequest{}); err == nil {
			t.Error("expected error for empty choices")
		}
	})

	t.Run("status error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, `{"error": {"message": "overloaded"}}`)
		}))
		defer server.Close()

		p := New().WithAPIKey("k").WithBaseURL(server.URL)
		_, err := p.SendMessage(context.Background(), ai.ChatRequest{})
		var statusErr *utils.StatusError
		if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("expected 503 StatusError, got %v", err)
		}
	})
}
