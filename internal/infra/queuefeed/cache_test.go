package queuefeed_test

import (
	"context"
	"testing"
	"time"

	"telegram-queue-bot/internal/domain"
	"telegram-queue-bot/internal/infra/queuefeed"
)

type fakeSource struct {
	calls  int
	number int
	err    error
}

func (f *fakeSource) CurrentNumber(ctx context.Context) (int, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.number, nil
}

func TestCachedSource(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("two reads inside the TTL make one upstream call", func(t *testing.T) {
		// Arrange
		src := &fakeSource{number: 1050}
		now := base
		cached := queuefeed.NewCachedSource(src, time.Minute).WithClock(func() time.Time { return now })

		// Act: 30 seconds apart, inside the 60s window.
		n1, err1 := cached.CurrentNumber(context.Background())
		now = base.Add(30 * time.Second)
		n2, err2 := cached.CurrentNumber(context.Background())

		// Assert
		if err1 != nil || err2 != nil {
			t.Fatalf("errors: %v, %v", err1, err2)
		}
		if n1 != 1050 || n2 != 1050 {
			t.Errorf("expected 1050 both times, got %d and %d", n1, n2)
		}
		if src.calls != 1 {
			t.Errorf("expected 1 upstream call, got %d", src.calls)
		}
	})

	t.Run("an elapsed TTL triggers a fresh fetch", func(t *testing.T) {
		src := &fakeSource{number: 1050}
		now := base
		cached := queuefeed.NewCachedSource(src, time.Minute).WithClock(func() time.Time { return now })

		if _, err := cached.CurrentNumber(context.Background()); err != nil {
			t.Fatalf("first read: %v", err)
		}
		src.number = 1060
		now = base.Add(time.Minute)

		n, err := cached.CurrentNumber(context.Background())
		if err != nil {
			t.Fatalf("second read: %v", err)
		}
		if n != 1060 {
			t.Errorf("expected the refreshed number 1060, got %d", n)
		}
		if src.calls != 2 {
			t.Errorf("expected 2 upstream calls, got %d", src.calls)
		}
	})

	t.Run("a failed refresh never serves the stale value", func(t *testing.T) {
		src := &fakeSource{number: 1050}
		now := base
		cached := queuefeed.NewCachedSource(src, time.Minute).WithClock(func() time.Time { return now })

		if _, err := cached.CurrentNumber(context.Background()); err != nil {
			t.Fatalf("warm-up read: %v", err)
		}

		src.err = domain.ErrUpstreamUnavailable
		now = base.Add(2 * time.Minute)

		if _, err := cached.CurrentNumber(context.Background()); err == nil {
			t.Fatal("expected the upstream error, got the stale value")
		}
	})

	t.Run("errors are not cached", func(t *testing.T) {
		src := &fakeSource{err: domain.ErrUpstreamUnavailable}
		now := base
		cached := queuefeed.NewCachedSource(src, time.Minute).WithClock(func() time.Time { return now })

		if _, err := cached.CurrentNumber(context.Background()); err == nil {
			t.Fatal("expected an error")
		}

		// Upstream recovers; the next read goes through immediately.
		src.err = nil
		src.number = 1070
		n, err := cached.CurrentNumber(context.Background())
		if err != nil {
			t.Fatalf("read after recovery: %v", err)
		}
		if n != 1070 {
			t.Errorf("expected 1070, got %d", n)
		}
		if src.calls != 2 {
			t.Errorf("expected 2 upstream calls, got %d", src.calls)
		}
	})
}
