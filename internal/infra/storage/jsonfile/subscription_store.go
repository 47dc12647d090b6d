package jsonfile

import (
	"context"

	"telegram-queue-bot/internal/domain"
	"telegram-queue-bot/internal/domain/model"
	"telegram-queue-bot/internal/domain/ports/repository"
)

const subscriptionsKey = "subscriptions"

var _ repository.SubscriptionStore = (*SubscriptionStore)(nil)

// SubscriptionStore keeps queue watches in the "subscriptions" document.
// Every read goes back to disk rather than trusting a cached slice; the
// snapshot is therefore always what a restarted process would see.
type SubscriptionStore struct {
	store *Store
}

func NewSubscriptionStore(store *Store) *SubscriptionStore {
	return &SubscriptionStore{store: store}
}

func (r *SubscriptionStore) ListAll(ctx context.Context) ([]*model.QueueSubscription, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.listLocked()
}

func (r *SubscriptionStore) listLocked() ([]*model.QueueSubscription, error) {
	var subs []*model.QueueSubscription
	if err := r.store.readDoc(subscriptionsKey, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *SubscriptionStore) ReplaceAll(ctx context.Context, subs []*model.QueueSubscription) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if subs == nil {
		subs = []*model.QueueSubscription{}
	}
	return r.store.writeDoc(subscriptionsKey, subs)
}

func (r *SubscriptionStore) Find(ctx context.Context, chatID, userID int64) (*model.QueueSubscription, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	subs, err := r.listLocked()
	if err != nil {
		return nil, err
	}
	for _, s := range subs {
		if s.ChatID == chatID && s.UserID == userID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Add treats the existence check and the append as one logical operation;
// the mutex makes that safe in this single-process system.
func (r *SubscriptionStore) Add(ctx context.Context, sub *model.QueueSubscription) error {
	if sub == nil {
		return domain.ErrInvalidArgument
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	subs, err := r.listLocked()
	if err != nil {
		return err
	}
	for _, s := range subs {
		if s.ChatID == sub.ChatID && s.UserID == sub.UserID {
			return domain.ErrAlreadyExists
		}
	}
	subs = append(subs, sub)
	return r.store.writeDoc(subscriptionsKey, subs)
}

func (r *SubscriptionStore) Remove(ctx context.Context, chatID, userID int64) (*model.QueueSubscription, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	subs, err := r.listLocked()
	if err != nil {
		return nil, err
	}
	var removed *model.QueueSubscription
	kept := subs[:0]
	for _, s := range subs {
		if removed == nil && s.ChatID == chatID && s.UserID == userID {
			removed = s
			continue
		}
		kept = append(kept, s)
	}
	if removed == nil {
		return nil, domain.ErrNotFound
	}
	if err := r.store.writeDoc(subscriptionsKey, kept); err != nil {
		return nil, err
	}
	return removed, nil
}
