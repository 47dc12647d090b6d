package repository

import (
	"context"

	"telegram-queue-bot/internal/domain/model"
)

// PollStore persists the bot's group polls so answers survive a restart.
type PollStore interface {
	Save(ctx context.Context, p *model.GroupPoll) error
	FindByTelegramID(ctx context.Context, telegramPollID string) (*model.GroupPoll, error)
	FindOpenByChat(ctx context.Context, chatID int64) (*model.GroupPoll, error)
	CountOpen(ctx context.Context) (int, error)
}
