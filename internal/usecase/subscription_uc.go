package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"telegram-queue-bot/internal/domain"
	"telegram-queue-bot/internal/domain/model"
	"telegram-queue-bot/internal/domain/ports/adapter"
	"telegram-queue-bot/internal/domain/ports/repository"
)

// SubscriptionUseCase validates and stores queue-number watches.
type SubscriptionUseCase struct {
	store  repository.SubscriptionStore
	source adapter.CurrentNumberSource
	min    int
	max    int
	log    *zerolog.Logger
}

func NewSubscriptionUseCase(store repository.SubscriptionStore, source adapter.CurrentNumberSource, minNumber, maxNumber int, logger *zerolog.Logger) *SubscriptionUseCase {
	subLog := logger.With().Str("component", "SubscriptionUC").Logger()
	return &SubscriptionUseCase{
		store:  store,
		source: source,
		min:    minNumber,
		max:    maxNumber,
		log:    &subLog,
	}
}

// Watch registers a new watch for (chat,user). Rules:
//   - target must lie within the configured number range,
//   - target must still be ahead of the live current number,
//   - at most one watch per (chat,user) pair.
//
// The existence check and the append are one logical operation; the store
// serializes them.
func (uc *SubscriptionUseCase) Watch(ctx context.Context, chatID, userID int64, displayName string, target, originMessageID int) (*model.QueueSubscription, error) {
	if target < uc.min || target > uc.max {
		return nil, fmt.Errorf("target %d not in [%d,%d]: %w", target, uc.min, uc.max, domain.ErrOutOfRange)
	}
	if existing, err := uc.store.Find(ctx, chatID, userID); err == nil && existing != nil {
		return nil, domain.ErrAlreadyExists
	}

	current, err := uc.source.CurrentNumber(ctx)
	if err != nil {
		// Creation needs the live number for the already-passed check;
		// without it the command fails visibly rather than guessing.
		return nil, domain.ErrUpstreamUnavailable
	}
	if target <= current {
		return nil, fmt.Errorf("current number is %d: %w", current, domain.ErrNumberPassed)
	}

	sub, err := model.NewQueueSubscription(chatID, userID, displayName, target, originMessageID)
	if err != nil {
		return nil, err
	}
	if err := uc.store.Add(ctx, sub); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, err
		}
		uc.log.Error().Err(err).Int64("chat", chatID).Int64("user", userID).Msg("persist watch failed")
		return nil, err
	}
	uc.log.Info().Int64("chat", chatID).Int64("user", userID).Int("target", target).Msg("watch registered")
	return sub, nil
}

// Cancel removes the caller's watch.
func (uc *SubscriptionUseCase) Cancel(ctx context.Context, chatID, userID int64) (*model.QueueSubscription, error) {
	sub, err := uc.store.Remove(ctx, chatID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotSubscribed
		}
		return nil, err
	}
	uc.log.Info().Int64("chat", chatID).Int64("user", userID).Msg("watch cancelled")
	return sub, nil
}

// Status returns the caller's watch, or domain.ErrNotSubscribed.
func (uc *SubscriptionUseCase) Status(ctx context.Context, chatID, userID int64) (*model.QueueSubscription, error) {
	sub, err := uc.store.Find(ctx, chatID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotSubscribed
		}
		return nil, err
	}
	return sub, nil
}

// CountActive reports the number of outstanding watches (admin stats).
func (uc *SubscriptionUseCase) CountActive(ctx context.Context) (int, error) {
	subs, err := uc.store.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	return len(subs), nil
}

// CurrentNumber exposes the cached live number for the /now command.
func (uc *SubscriptionUseCase) CurrentNumber(ctx context.Context) (int, error) {
	return uc.source.CurrentNumber(ctx)
}
