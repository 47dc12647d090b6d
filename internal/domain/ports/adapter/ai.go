package adapter

import "context"

// AIServiceAdapter wraps one LLM provider behind a persona-prompted chat call.
type AIServiceAdapter interface {
	Chat(ctx context.Context, model string, messages []Message) (string, Usage, error)
}

type Message struct {
	Role    string `json:"role"` // system | user | assistant
	Content string `json:"content"`
}

type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
