package queuefeed

import (
	"context"
	"sync"
	"time"

	"telegram-queue-bot/internal/domain/ports/adapter"
	"telegram-queue-bot/internal/infra/metrics"
)

var _ adapter.CurrentNumberSource = (*CachedSource)(nil)

// CachedSource reuses the last fetched number while it is younger than the
// TTL, bounding the upstream request rate to at most one call per TTL
// window regardless of caller concurrency (the mutex covers the fetch).
//
// A failed refresh never falls back to the stale value: once the TTL has
// lapsed, callers get the upstream error rather than old data dressed up
// as live.
type CachedSource struct {
	src adapter.CurrentNumberSource
	ttl time.Duration
	now func() time.Time

	mu        sync.Mutex
	value     int
	fetchedAt time.Time
	valid     bool
}

func NewCachedSource(src adapter.CurrentNumberSource, ttl time.Duration) *CachedSource {
	return &CachedSource{src: src, ttl: ttl, now: time.Now}
}

// WithClock swaps the time source; tests inject a fake clock here.
func (c *CachedSource) WithClock(now func() time.Time) *CachedSource {
	c.now = now
	return c
}

func (c *CachedSource) CurrentNumber(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.valid && now.Sub(c.fetchedAt) < c.ttl {
		metrics.IncFeedCacheHit()
		return c.value, nil
	}

	n, err := c.src.CurrentNumber(ctx)
	if err != nil {
		metrics.IncFeedFetchError()
		return 0, err
	}
	c.value = n
	c.fetchedAt = now
	c.valid = true
	metrics.IncFeedFetch()
	return n, nil
}
