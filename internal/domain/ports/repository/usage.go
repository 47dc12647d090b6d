package repository

import (
	"context"

	"telegram-queue-bot/internal/domain/model"
)

// UsageLogStore is append-only; records are never rewritten.
type UsageLogStore interface {
	Append(ctx context.Context, rec *model.UsageRecord) error
	Count(ctx context.Context) (int, error)
}
