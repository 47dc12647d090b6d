package model

import "time"

// UsageRecord is one LLM call made on behalf of a user. Appended to the
// usage log collection; never updated.
type UsageRecord struct {
	ID               string    `json:"id"` // UUID
	UserID           int64     `json:"userId"`
	ChatID           int64     `json:"chatId"`
	Model            string    `json:"model"`
	PromptTokens     int       `json:"promptTokens"`
	CompletionTokens int       `json:"completionTokens"`
	TotalTokens      int       `json:"totalTokens"`
	LatencyMS        int64     `json:"latencyMs"`
	CreatedAt        time.Time `json:"createdAt"`
}
