package metrics

import (
	"strconv"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	watchOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watch_outcomes_total",
			Help: "Watch engine classifications per tick outcome (reached/expired).",
		},
		[]string{"outcome"},
	)

	watchTicksSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watch_ticks_skipped_total",
			Help: "Ticks skipped, by reason (empty/unavailable/overlap).",
		},
		[]string{"reason"},
	)

	notifySendFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notify_send_failures_total",
			Help: "Notifications dropped after a transport error.",
		},
	)

	feedFetches = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_fetches_total",
			Help: "Upstream current-number fetches that succeeded.",
		},
	)

	feedFetchErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_fetch_errors_total",
			Help: "Upstream current-number fetches that failed.",
		},
	)

	feedCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_cache_hits_total",
			Help: "Current-number reads served from the TTL cache.",
		},
	)

	aiTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_tokens_total",
			Help: "Sum of total tokens per model.",
		},
		[]string{"model"},
	)

	aiCallsLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_calls_latency_ms",
			Help:    "AI call latency distribution in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000},
		},
		[]string{"model", "success"},
	)
)

// MustRegister registers collectors with the default registry (idempotent).
func MustRegister() {
	once.Do(func() {
		prometheus.MustRegister(
			watchOutcomes, watchTicksSkipped, notifySendFailures,
			feedFetches, feedFetchErrors, feedCacheHits,
			aiTokensTotal, aiCallsLatencyMs,
		)
	})
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// -------- Watch engine helpers --------

func IncSubscriptionFired()   { watchOutcomes.WithLabelValues("reached").Inc() }
func IncSubscriptionExpired() { watchOutcomes.WithLabelValues("expired").Inc() }

func IncTickSkipped(reason string) { watchTicksSkipped.WithLabelValues(norm(reason)).Inc() }

func IncNotifyFailure() { notifySendFailures.Inc() }

// -------- Feed helpers --------

func IncFeedFetch()      { feedFetches.Inc() }
func IncFeedFetchError() { feedFetchErrors.Inc() }
func IncFeedCacheHit()   { feedCacheHits.Inc() }

// -------- Chat helpers --------

func ObserveChatUsage(model string, totalTokens int, latencyMs int64, success bool) {
	aiTokensTotal.WithLabelValues(norm(model)).Add(float64(totalTokens))
	aiCallsLatencyMs.WithLabelValues(norm(model), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}
