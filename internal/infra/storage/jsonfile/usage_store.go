package jsonfile

import (
	"context"

	"telegram-queue-bot/internal/domain"
	"telegram-queue-bot/internal/domain/model"
	"telegram-queue-bot/internal/domain/ports/repository"
)

const usageKey = "usage"

var _ repository.UsageLogStore = (*UsageLogStore)(nil)

type UsageLogStore struct {
	store *Store
}

func NewUsageLogStore(store *Store) *UsageLogStore {
	return &UsageLogStore{store: store}
}

func (r *UsageLogStore) Append(ctx context.Context, rec *model.UsageRecord) error {
	if rec == nil || rec.ID == "" {
		return domain.ErrInvalidArgument
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var recs []*model.UsageRecord
	if err := r.store.readDoc(usageKey, &recs); err != nil {
		return err
	}
	recs = append(recs, rec)
	return r.store.writeDoc(usageKey, recs)
}

func (r *UsageLogStore) Count(ctx context.Context) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var recs []*model.UsageRecord
	if err := r.store.readDoc(usageKey, &recs); err != nil {
		return 0, err
	}
	return len(recs), nil
}
