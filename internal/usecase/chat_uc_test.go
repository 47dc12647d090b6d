package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"telegram-queue-bot/internal/domain"
	"telegram-queue-bot/internal/domain/model"
	"telegram-queue-bot/internal/domain/ports/adapter"
	red "telegram-queue-bot/internal/infra/redis"
	"telegram-queue-bot/internal/usecase"
)

// fakeRedis is an in-memory RedisClient good enough for the fixed-window
// counter.
type fakeRedis struct {
	counts map[string]int64
	incErr error
}

func newFakeRedis() *fakeRedis { return &fakeRedis{counts: map[string]int64{}} }

func (f *fakeRedis) Ping(ctx context.Context) error { return nil }

func (f *fakeRedis) Incr(ctx context.Context, key string) (int64, error) {
	if f.incErr != nil {
		return 0, f.incErr
	}
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeRedis) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return nil
}

func (f *fakeRedis) Close() error { return nil }

func TestChatUseCase_Reply(t *testing.T) {
	const persona = "你是榮勾斯揪，一隻愛吃拉麵的狗。"

	t.Run("prepends the persona and returns the answer", func(t *testing.T) {
		// Arrange
		var seen []adapter.Message
		ai := &mockAI{ChatFunc: func(ctx context.Context, modelName string, messages []adapter.Message) (string, adapter.Usage, error) {
			seen = messages
			return "汪！", adapter.Usage{PromptTokens: 10, CompletionTokens: 4, TotalTokens: 14}, nil
		}}
		usage := &memUsageStore{}
		uc := usecase.NewChatUseCase(ai, usage, nil, persona, "gpt-4o-mini", 5, time.Minute, newTestLogger())

		// Act
		reply, err := uc.Reply(context.Background(), 1, 2, "你好")

		// Assert
		if err != nil {
			t.Fatalf("Reply: %v", err)
		}
		if reply != "汪！" {
			t.Errorf("unexpected reply %q", reply)
		}
		if len(seen) != 2 || seen[0].Role != "system" || seen[0].Content != persona {
			t.Fatalf("expected persona system message first, got %+v", seen)
		}
		if seen[1].Role != "user" || seen[1].Content != "你好" {
			t.Errorf("unexpected user message: %+v", seen[1])
		}
	})

	t.Run("appends a usage record per call", func(t *testing.T) {
		usage := &memUsageStore{}
		uc := usecase.NewChatUseCase(&mockAI{}, usage, nil, persona, "gpt-4o-mini", 5, time.Minute, newTestLogger())

		if _, err := uc.Reply(context.Background(), 1, 2, "hi"); err != nil {
			t.Fatalf("Reply: %v", err)
		}
		if _, err := uc.Reply(context.Background(), 1, 2, "again"); err != nil {
			t.Fatalf("Reply: %v", err)
		}

		n, err := uc.UsageCount(context.Background())
		if err != nil {
			t.Fatalf("UsageCount: %v", err)
		}
		if n != 2 {
			t.Errorf("expected 2 usage records, got %d", n)
		}
		if usage.recs[0].TotalTokens != 5 || usage.recs[0].UserID != 2 {
			t.Errorf("unexpected record: %+v", usage.recs[0])
		}
	})

	t.Run("a failed usage append does not block the reply", func(t *testing.T) {
		usage := &memUsageStore{AppendFunc: func(ctx context.Context, rec *model.UsageRecord) error {
			return errors.New("disk full")
		}}
		uc := usecase.NewChatUseCase(&mockAI{}, usage, nil, persona, "gpt-4o-mini", 5, time.Minute, newTestLogger())

		reply, err := uc.Reply(context.Background(), 1, 2, "hi")
		if err != nil {
			t.Fatalf("Reply: %v", err)
		}
		if reply == "" {
			t.Error("expected a reply despite the accounting failure")
		}
	})

	t.Run("provider errors surface to the caller", func(t *testing.T) {
		ai := &mockAI{ChatFunc: func(ctx context.Context, modelName string, messages []adapter.Message) (string, adapter.Usage, error) {
			return "", adapter.Usage{}, errors.New("upstream 500")
		}}
		usage := &memUsageStore{}
		uc := usecase.NewChatUseCase(ai, usage, nil, persona, "gpt-4o-mini", 5, time.Minute, newTestLogger())

		if _, err := uc.Reply(context.Background(), 1, 2, "hi"); err == nil {
			t.Fatal("expected an error")
		}
		if n, _ := uc.UsageCount(context.Background()); n != 0 {
			t.Errorf("expected no usage record on failure, got %d", n)
		}
	})

	t.Run("over-limit users are rejected", func(t *testing.T) {
		limiter := red.NewRateLimiter(newFakeRedis())
		uc := usecase.NewChatUseCase(&mockAI{}, &memUsageStore{}, limiter, persona, "gpt-4o-mini", 2, time.Minute, newTestLogger())

		for i := 0; i < 2; i++ {
			if _, err := uc.Reply(context.Background(), 1, 2, "hi"); err != nil {
				t.Fatalf("call %d: %v", i, err)
			}
		}
		if _, err := uc.Reply(context.Background(), 1, 2, "hi"); !errors.Is(err, domain.ErrRateLimited) {
			t.Errorf("expected ErrRateLimited, got %v", err)
		}
		// A different user has their own window.
		if _, err := uc.Reply(context.Background(), 1, 3, "hi"); err != nil {
			t.Errorf("other user: %v", err)
		}
	})

	t.Run("a broken limiter store allows the call", func(t *testing.T) {
		broken := newFakeRedis()
		broken.incErr = errors.New("connection refused")
		uc := usecase.NewChatUseCase(&mockAI{}, &memUsageStore{}, red.NewRateLimiter(broken), persona, "gpt-4o-mini", 2, time.Minute, newTestLogger())

		if _, err := uc.Reply(context.Background(), 1, 2, "hi"); err != nil {
			t.Errorf("expected the call allowed, got %v", err)
		}
	})

	t.Run("nil limiter allows everything", func(t *testing.T) {
		uc := usecase.NewChatUseCase(&mockAI{}, &memUsageStore{}, nil, persona, "gpt-4o-mini", 1, time.Minute, newTestLogger())

		for i := 0; i < 5; i++ {
			if _, err := uc.Reply(context.Background(), 1, 2, "hi"); err != nil {
				t.Fatalf("call %d: %v", i, err)
			}
		}
	})
}
