package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog"

	"telegram-queue-bot/internal/domain"
	"telegram-queue-bot/internal/domain/model"
	"telegram-queue-bot/internal/domain/ports/adapter"
	"telegram-queue-bot/internal/domain/ports/repository"
	"telegram-queue-bot/internal/infra/metrics"
	red "telegram-queue-bot/internal/infra/redis"
)

// ChatUseCase answers free-form messages through the LLM adapter with the
// bot's persona prepended, and appends a usage record per call.
type ChatUseCase struct {
	ai      adapter.AIServiceAdapter
	usage   repository.UsageLogStore
	limiter *red.RateLimiter
	persona string
	model   string
	limit   int
	window  time.Duration
	log     *zerolog.Logger
}

func NewChatUseCase(ai adapter.AIServiceAdapter, usage repository.UsageLogStore, limiter *red.RateLimiter, persona, defaultModel string, limit int, window time.Duration, logger *zerolog.Logger) *ChatUseCase {
	chatLog := logger.With().Str("component", "ChatUC").Logger()
	return &ChatUseCase{
		ai:      ai,
		usage:   usage,
		limiter: limiter,
		persona: persona,
		model:   defaultModel,
		limit:   limit,
		window:  window,
		log:     &chatLog,
	}
}

// Reply returns the persona answer for one user message.
// domain.ErrRateLimited when the user is over their window budget.
func (uc *ChatUseCase) Reply(ctx context.Context, chatID, userID int64, text string) (string, error) {
	ok, err := uc.limiter.Allow(ctx, red.UserChatKey(userID), uc.limit, uc.window)
	if err != nil {
		// A broken limiter store should not take the chat down with it.
		uc.log.Warn().Err(err).Msg("rate limiter unavailable, allowing")
	} else if !ok {
		return "", domain.ErrRateLimited
	}

	messages := []adapter.Message{
		{Role: "system", Content: uc.persona},
		{Role: "user", Content: text},
	}

	start := time.Now()
	reply, usage, err := uc.ai.Chat(ctx, uc.model, messages)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		metrics.ObserveChatUsage(uc.model, 0, latency, false)
		return "", err
	}
	if usage.TotalTokens == 0 {
		// Provider gave no usage block; estimate locally so the log still
		// carries a number.
		usage.PromptTokens = estimateTokens(uc.model, uc.persona+text)
		usage.CompletionTokens = estimateTokens(uc.model, reply)
		usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
	}
	metrics.ObserveChatUsage(uc.model, usage.TotalTokens, latency, true)

	rec := &model.UsageRecord{
		ID:               uuid.NewString(),
		UserID:           userID,
		ChatID:           chatID,
		Model:            uc.model,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		TotalTokens:      usage.TotalTokens,
		LatencyMS:        latency,
		CreatedAt:        time.Now(),
	}
	if err := uc.usage.Append(ctx, rec); err != nil {
		// Accounting never blocks the reply.
		uc.log.Error().Err(err).Msg("append usage record failed")
	}
	return reply, nil
}

// UsageCount reports how many LLM calls were logged (admin stats).
func (uc *ChatUseCase) UsageCount(ctx context.Context) (int, error) {
	return uc.usage.Count(ctx)
}

func estimateTokens(modelName, text string) int {
	enc, err := tiktoken.EncodingForModel(modelName)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return len(text) / 4
		}
	}
	return len(enc.Encode(text, nil, nil))
}
