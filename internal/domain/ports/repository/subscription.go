package repository

import (
	"context"

	"telegram-queue-bot/internal/domain/model"
)

// SubscriptionStore is the port for queue-number watches.
//
// Mutating calls persist before returning (write-through); the backing
// document has no per-record update primitive, so ReplaceAll is the only
// bulk write and the watch engine's single write per tick.
type SubscriptionStore interface {
	// ListAll returns the current snapshot, re-read from the backing store.
	ListAll(ctx context.Context) ([]*model.QueueSubscription, error)
	// ReplaceAll atomically overwrites the persisted collection.
	ReplaceAll(ctx context.Context, subs []*model.QueueSubscription) error
	// Find returns the watch for (chat,user) or domain.ErrNotFound.
	Find(ctx context.Context, chatID, userID int64) (*model.QueueSubscription, error)
	// Add persists a new watch; domain.ErrAlreadyExists when one is present
	// for the same (chat,user) pair.
	Add(ctx context.Context, sub *model.QueueSubscription) error
	// Remove deletes and returns the watch for (chat,user), or
	// domain.ErrNotFound when none exists.
	Remove(ctx context.Context, chatID, userID int64) (*model.QueueSubscription, error)
}
