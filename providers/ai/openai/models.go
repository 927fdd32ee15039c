package openai

import "github.com/leofalp/promptfn/providers/ai"

/*
	CHAT COMPLETIONS API - INPUT
*/

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float32      `json:"temperature,omitempty"`
	TopP        *float32      `json:"top_p,omitempty"`
	MaxTokens   *int          `json:"max_completion_tokens,omitempty"`
	Stop        []string      `json:"stop,omitempty"`
	Seed        *int          `json:"seed,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

/*
	CHAT COMPLETIONS API - OUTPUT
*/

type chatCompletionResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   *chatUsage   `json:"usage,omitempty"`
}

type chatChoice struct {
	Index   int `json:"index"`
	Message struct {
		Role    string  `json:"role"`
		Content *string `json:"content"`
		Refusal *string `json:"refusal,omitempty"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

/*
	CONVERSION
*/

func requestFromGeneric(request ai.ChatRequest) chatCompletionRequest {
	out := chatCompletionRequest{
		Model:    request.Model,
		Messages: make([]chatMessage, 0, len(request.Messages)+1),
	}
	if out.Model == "" {
		out.Model = defaultModel
	}

	if request.SystemPrompt != "" {
		out.Messages = append(out.Messages, chatMessage{Role: string(ai.RoleSystem), Content: request.SystemPrompt})
	}
	for _, m := range request.Messages {
		out.Messages = append(out.Messages, chatMessage{Role: string(m.Role), Content: m.Content})
	}

	if cfg := request.GenerationConfig; cfg != nil {
		out.Temperature = cfg.Temperature
		out.TopP = cfg.TopP
		out.Stop = cfg.Stop
		out.Seed = cfg.Seed
		if cfg.MaxTokens > 0 {
			maxTokens := cfg.MaxTokens
			out.MaxTokens = &maxTokens
		}
	}
	return out
}

func responseToGeneric(resp *chatCompletionResponse) *ai.ChatResponse {
	choice := resp.Choices[0]
	out := &ai.ChatResponse{
		Id:           resp.ID,
		Model:        resp.Model,
		Created:      resp.Created,
		FinishReason: choice.FinishReason,
	}
	if choice.Message.Content != nil {
		out.Content = *choice.Message.Content
	}
	if choice.Message.Refusal != nil {
		out.Refusal = *choice.Message.Refusal
	}
	if resp.Usage != nil {
		out.Usage = &ai.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}
	return out
}
