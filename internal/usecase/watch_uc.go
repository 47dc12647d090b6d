package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"telegram-queue-bot/internal/domain/model"
	"telegram-queue-bot/internal/domain/ports/adapter"
	"telegram-queue-bot/internal/domain/ports/repository"
	"telegram-queue-bot/internal/infra/metrics"
)

// WatchUseCase is the matching & expiry engine: one Tick reconciles every
// outstanding watch against the live current number.
type WatchUseCase struct {
	store     repository.SubscriptionStore
	source    adapter.CurrentNumberSource
	messenger adapter.MessengerAdapter
	expiry    time.Duration
	now       func() time.Time
	log       *zerolog.Logger
}

func NewWatchUseCase(store repository.SubscriptionStore, source adapter.CurrentNumberSource, messenger adapter.MessengerAdapter, expiry time.Duration, logger *zerolog.Logger) *WatchUseCase {
	watchLog := logger.With().Str("component", "WatchUC").Logger()
	return &WatchUseCase{
		store:     store,
		source:    source,
		messenger: messenger,
		expiry:    expiry,
		now:       time.Now,
		log:       &watchLog,
	}
}

// WithClock swaps the wall clock; tests inject a fake here.
func (uc *WatchUseCase) WithClock(now func() time.Time) *WatchUseCase {
	uc.now = now
	return uc
}

type pendingNotice struct {
	chatID    int64
	text      string
	replyToID int
}

// Tick runs one full reconciliation pass. Invariants:
//
//   - an empty watch list skips the upstream fetch entirely;
//   - an unavailable upstream skips the whole tick without touching any
//     watch, so a transient outage can never cause a false expiry or a
//     silent drop;
//   - each watch classifies into exactly one of reached / expired /
//     pending, first rule wins, reached before expired;
//   - the retained set is persisted with a single ReplaceAll before any
//     notification goes out, so a crash between the two can only lose a
//     notification, never duplicate one.
func (uc *WatchUseCase) Tick(ctx context.Context) error {
	subs, err := uc.store.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list watches: %w", err)
	}
	if len(subs) == 0 {
		metrics.IncTickSkipped("empty")
		return nil
	}

	current, err := uc.source.CurrentNumber(ctx)
	if err != nil {
		metrics.IncTickSkipped("unavailable")
		uc.log.Warn().Err(err).Msg("tick skipped: upstream unavailable")
		return nil
	}

	now := uc.now()
	retained := make([]*model.QueueSubscription, 0, len(subs))
	var notices []pendingNotice
	for _, sub := range subs {
		switch {
		case sub.Reached(current):
			metrics.IncSubscriptionFired()
			notices = append(notices, pendingNotice{
				chatID:    sub.ChatID,
				text:      reachedText(sub, current),
				replyToID: sub.OriginMessageID,
			})
		case sub.Expired(now, uc.expiry):
			metrics.IncSubscriptionExpired()
			notices = append(notices, pendingNotice{
				chatID:    sub.ChatID,
				text:      expiredText(sub),
				replyToID: sub.OriginMessageID,
			})
		default:
			retained = append(retained, sub)
		}
	}

	// Persist before dispatching. A write failure is logged and dispatch
	// proceeds anyway; holding notifications back would not make the disk
	// healthier.
	if err := uc.store.ReplaceAll(ctx, retained); err != nil {
		uc.log.Error().Err(err).Int("retained", len(retained)).Msg("persist retained watches failed")
	}

	for _, n := range notices {
		if err := uc.messenger.SendReply(ctx, n.chatID, n.text, n.replyToID); err != nil {
			// Dropped, not retried: the watch is already gone from the store.
			metrics.IncNotifyFailure()
			uc.log.Error().Err(err).Int64("chat", n.chatID).Msg("notification dropped")
		}
	}

	uc.log.Debug().
		Int("current", current).
		Int("checked", len(subs)).
		Int("notified", len(notices)).
		Msg("tick done")
	return nil
}

func reachedText(sub *model.QueueSubscription, current int) string {
	return fmt.Sprintf("@%s 你訂閱的號碼 %d 到了！目前叫號 %d，快去櫃台吧", sub.DisplayName, sub.TargetNumber, current)
}

func expiredText(sub *model.QueueSubscription) string {
	return fmt.Sprintf("@%s 等了太久都沒等到 %d 號，先幫你取消訂閱了", sub.DisplayName, sub.TargetNumber)
}
