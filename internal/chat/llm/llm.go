// Package llm abstracts the hosted chat completion providers.
package llm

import (
	"context"
	"fmt"
	"strings"

	"conciergerie_backend/platform/config"
)

// Message is one turn of a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Roles used in transcripts.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Provider answers chat completions. StreamChat emits assistant text deltas
// on the first channel; a terminal failure arrives on the second. Both
// channels close when the stream ends.
type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
	StreamChat(ctx context.Context, messages []Message) (<-chan string, <-chan error)
}

// New selects the configured provider.
func New(ctx context.Context, cfg config.LLMConfig) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.GetLLMProvider())) {
	case "", "openai":
		return NewOpenAIProvider(cfg.GetLLMBaseURL(), cfg.GetLLMAPIKey(), cfg.GetLLMModel()), nil
	case "gemini":
		return NewGeminiProvider(ctx, cfg.GetGeminiAPIKey(), cfg.GetGeminiModel())
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.GetLLMProvider())
	}
}
