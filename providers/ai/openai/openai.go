package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/leofalp/promptfn/internal/utils"
	"github.com/leofalp/promptfn/providers/ai"
)

const (
	defaultBaseURL          = "https://api.openai.com/v1"
	defaultModel            = "gpt-4o-mini"
	chatCompletionsEndpoint = "/chat/completions"

	// EnvAPIKey and EnvBaseURL are read by New.
	EnvAPIKey  = "OPENAI_API_KEY"
	EnvBaseURL = "OPENAI_API_BASE_URL"
)

// ErrMissingAPIKey is returned when a request is attempted without a key.
var ErrMissingAPIKey = errors.New("openai: API key is not set")

// OpenAIProvider talks to any OpenAI-compatible /chat/completions endpoint
// (OpenAI, Azure OpenAI, Ollama, OpenRouter, vLLM).
type OpenAIProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

var _ ai.Provider = (*OpenAIProvider)(nil)

// New returns a provider configured from OPENAI_API_KEY and
// OPENAI_API_BASE_URL.
func New() *OpenAIProvider {
	baseURL := os.Getenv(EnvBaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &OpenAIProvider{
		apiKey:  os.Getenv(EnvAPIKey),
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) WithAPIKey(apiKey string) ai.Provider {
	p.apiKey = apiKey
	return p
}

func (p *OpenAIProvider) WithBaseURL(baseURL string) ai.Provider {
	p.baseURL = strings.TrimRight(baseURL, "/")
	return p
}

func (p *OpenAIProvider) WithHttpClient(httpClient *http.Client) ai.Provider {
	p.client = httpClient
	return p
}

// SendMessage posts request to /chat/completions and returns the first
// choice.
func (p *OpenAIProvider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	if p.apiKey == "" && isOpenAIHost(p.baseURL) {
		return nil, ErrMissingAPIKey
	}

	_, resp, err := utils.DoPostSync[chatCompletionResponse](ctx, p.client, p.baseURL+chatCompletionsEndpoint, p.apiKey, requestFromGeneric(request))
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: response %q has no choices", resp.ID)
	}
	return responseToGeneric(resp), nil
}

// isOpenAIHost reports whether baseURL points at the hosted OpenAI API,
// which always needs a key. Local servers such as Ollama do not.
func isOpenAIHost(baseURL string) bool {
	return strings.Contains(baseURL, "api.openai.com")
}
