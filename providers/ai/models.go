package ai

/*
	##### PROVIDER INPUT #####
*/

// ChatRequest is a single, self-contained completion request.
type ChatRequest struct {
	Model            string            `json:"model,omitempty"`
	SystemPrompt     string            `json:"system_prompt,omitempty"`
	Messages         []Message         `json:"messages"`
	GenerationConfig *GenerationConfig `json:"generation_config,omitempty"`
}

// Message is one turn of the request.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

type GenerationConfig struct {
	MaxTokens   int      `json:"max_tokens,omitempty"`
	Temperature *float32 `json:"temperature,omitempty"` // [0..2]; nil leaves the provider default
	TopP        *float32 `json:"top_p,omitempty"`       // nucleus sampling [0..1]
	Stop        []string `json:"stop,omitempty"`
	Seed        *int     `json:"seed,omitempty"`
}

/*
	##### PROVIDER OUTPUT #####
*/

type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

// Add accumulates other into u.
func (u *Usage) Add(other *Usage) {
	if other == nil {
		return
	}
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}

// ChatResponse is the completed answer to a ChatRequest.
type ChatResponse struct {
	Id           string `json:"id"`
	Model        string `json:"model"`
	Created      int64  `json:"created"`
	Content      string `json:"content"`
	FinishReason string `json:"finish_reason,omitempty"`
	Usage        *Usage `json:"usage,omitempty"`
	Refusal      string `json:"refusal,omitempty"` // set when the model declines (safety/policy)
}

/*
	##### ENUMS #####
*/

// MessageRole is the author of a message.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Finish reasons shared across providers.
const (
	FinishReasonStop   = "stop"
	FinishReasonLength = "length"
	FinishReasonFilter = "content_filter"
)
