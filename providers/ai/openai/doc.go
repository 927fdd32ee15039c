// Package openai implements ai.Provider for OpenAI-compatible
// /chat/completions endpoints.
//
// [New] reads OPENAI_API_KEY and OPENAI_API_BASE_URL. Point the base URL at
// Ollama, OpenRouter or any other compatible server to use it instead of
// api.openai.com.
package openai
