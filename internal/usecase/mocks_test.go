package usecase_test

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"telegram-queue-bot/internal/domain"
	"telegram-queue-bot/internal/domain/model"
	"telegram-queue-bot/internal/domain/ports/adapter"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// memSubStore is a small in-memory implementation used by unit tests.
// Every method can be overridden through its ...Func field.
type memSubStore struct {
	mu   sync.Mutex
	subs []*model.QueueSubscription

	ReplaceAllCalls int
	replaceErr      error

	ListAllFunc func(ctx context.Context) ([]*model.QueueSubscription, error)
}

func newMemSubStore(subs ...*model.QueueSubscription) *memSubStore {
	return &memSubStore{subs: subs}
}

func (m *memSubStore) snapshot() []*model.QueueSubscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.QueueSubscription, len(m.subs))
	for i, s := range m.subs {
		cp := *s
		out[i] = &cp
	}
	return out
}

func (m *memSubStore) ListAll(ctx context.Context) ([]*model.QueueSubscription, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	return m.snapshot(), nil
}

func (m *memSubStore) ReplaceAll(ctx context.Context, subs []*model.QueueSubscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReplaceAllCalls++
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.subs = subs
	return nil
}

func (m *memSubStore) Find(ctx context.Context, chatID, userID int64) (*model.QueueSubscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subs {
		if s.ChatID == chatID && s.UserID == userID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memSubStore) Add(ctx context.Context, sub *model.QueueSubscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subs {
		if s.ChatID == sub.ChatID && s.UserID == sub.UserID {
			return domain.ErrAlreadyExists
		}
	}
	m.subs = append(m.subs, sub)
	return nil
}

func (m *memSubStore) Remove(ctx context.Context, chatID, userID int64) (*model.QueueSubscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.subs {
		if s.ChatID == chatID && s.UserID == userID {
			m.subs = append(m.subs[:i], m.subs[i+1:]...)
			return s, nil
		}
	}
	return nil, domain.ErrNotFound
}

// mockSource counts upstream calls and serves a scripted number.
type mockSource struct {
	mu    sync.Mutex
	Calls int

	CurrentNumberFunc func(ctx context.Context) (int, error)
	number            int
}

func newMockSource(number int) *mockSource {
	return &mockSource{number: number}
}

func (m *mockSource) CurrentNumber(ctx context.Context) (int, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	if m.CurrentNumberFunc != nil {
		return m.CurrentNumberFunc(ctx)
	}
	return m.number, nil
}

type sentMessage struct {
	ChatID    int64
	Text      string
	ReplyToID int
}

// mockMessenger records outbound sends.
type mockMessenger struct {
	mu   sync.Mutex
	Sent []sentMessage

	SendReplyFunc func(ctx context.Context, chatID int64, text string, replyToMessageID int) error
	PollID        string
	PollMessageID int
	StopCalls     int
}

func (m *mockMessenger) SendMessage(ctx context.Context, chatID int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, sentMessage{ChatID: chatID, Text: text})
	return nil
}

func (m *mockMessenger) SendReply(ctx context.Context, chatID int64, text string, replyToMessageID int) error {
	if m.SendReplyFunc != nil {
		if err := m.SendReplyFunc(ctx, chatID, text, replyToMessageID); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, sentMessage{ChatID: chatID, Text: text, ReplyToID: replyToMessageID})
	return nil
}

func (m *mockMessenger) SendPoll(ctx context.Context, chatID int64, question string, options []string, multi bool) (string, int, error) {
	if m.PollID == "" {
		m.PollID = "tg-poll-1"
	}
	if m.PollMessageID == 0 {
		m.PollMessageID = 42
	}
	return m.PollID, m.PollMessageID, nil
}

func (m *mockMessenger) StopPoll(ctx context.Context, chatID int64, messageID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StopCalls++
	return nil
}

// memPollStore is the in-memory PollStore for tests.
type memPollStore struct {
	mu    sync.Mutex
	polls map[string]*model.GroupPoll
}

func newMemPollStore() *memPollStore {
	return &memPollStore{polls: map[string]*model.GroupPoll{}}
}

func (m *memPollStore) Save(ctx context.Context, p *model.GroupPoll) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.polls[p.ID] = p
	return nil
}

func (m *memPollStore) FindByTelegramID(ctx context.Context, telegramPollID string) (*model.GroupPoll, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.polls {
		if p.TelegramPollID == telegramPollID {
			return p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memPollStore) FindOpenByChat(ctx context.Context, chatID int64) (*model.GroupPoll, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.polls {
		if p.ChatID == chatID && p.Open {
			return p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memPollStore) CountOpen(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, p := range m.polls {
		if p.Open {
			n++
		}
	}
	return n, nil
}

// memUsageStore collects usage records.
type memUsageStore struct {
	mu   sync.Mutex
	recs []*model.UsageRecord

	AppendFunc func(ctx context.Context, rec *model.UsageRecord) error
}

func (m *memUsageStore) Append(ctx context.Context, rec *model.UsageRecord) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, rec)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, rec)
	return nil
}

func (m *memUsageStore) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.recs), nil
}

// mockAI returns a scripted reply.
type mockAI struct {
	ChatFunc func(ctx context.Context, model string, messages []adapter.Message) (string, adapter.Usage, error)
}

func (m *mockAI) Chat(ctx context.Context, modelName string, messages []adapter.Message) (string, adapter.Usage, error) {
	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, modelName, messages)
	}
	return "ok", adapter.Usage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5}, nil
}
