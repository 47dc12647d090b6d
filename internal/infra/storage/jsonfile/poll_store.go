package jsonfile

import (
	"context"

	"telegram-queue-bot/internal/domain"
	"telegram-queue-bot/internal/domain/model"
	"telegram-queue-bot/internal/domain/ports/repository"
)

const pollsKey = "polls"

var _ repository.PollStore = (*PollStore)(nil)

type PollStore struct {
	store *Store
}

func NewPollStore(store *Store) *PollStore {
	return &PollStore{store: store}
}

func (r *PollStore) listLocked() ([]*model.GroupPoll, error) {
	var polls []*model.GroupPoll
	if err := r.store.readDoc(pollsKey, &polls); err != nil {
		return nil, err
	}
	return polls, nil
}

// Save upserts by poll ID.
func (r *PollStore) Save(ctx context.Context, p *model.GroupPoll) error {
	if p == nil || p.ID == "" {
		return domain.ErrInvalidArgument
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	polls, err := r.listLocked()
	if err != nil {
		return err
	}
	replaced := false
	for i, existing := range polls {
		if existing.ID == p.ID {
			polls[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		polls = append(polls, p)
	}
	return r.store.writeDoc(pollsKey, polls)
}

func (r *PollStore) FindByTelegramID(ctx context.Context, telegramPollID string) (*model.GroupPoll, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	polls, err := r.listLocked()
	if err != nil {
		return nil, err
	}
	for _, p := range polls {
		if p.TelegramPollID == telegramPollID {
			return p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *PollStore) FindOpenByChat(ctx context.Context, chatID int64) (*model.GroupPoll, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	polls, err := r.listLocked()
	if err != nil {
		return nil, err
	}
	for _, p := range polls {
		if p.ChatID == chatID && p.Open {
			return p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *PollStore) CountOpen(ctx context.Context) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	polls, err := r.listLocked()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, p := range polls {
		if p.Open {
			n++
		}
	}
	return n, nil
}
