package sched

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"telegram-queue-bot/internal/infra/metrics"
	"telegram-queue-bot/internal/usecase"
)

// WatchWorker drives the matching & expiry engine on a fixed interval.
// A tick that is still running when the next interval fires is not
// overlapped: the upstream fetch can stall, and two concurrent passes over
// the same watch list would race on the single ReplaceAll.
type WatchWorker struct {
	interval time.Duration
	watchUC  *usecase.WatchUseCase
	log      *zerolog.Logger

	running atomic.Bool
}

func NewWatchWorker(interval time.Duration, watchUC *usecase.WatchUseCase, logger *zerolog.Logger) *WatchWorker {
	workerLog := logger.With().Str("component", "WatchWorker").Logger()
	return &WatchWorker{
		interval: interval,
		watchUC:  watchUC,
		log:      &workerLog,
	}
}

func (w *WatchWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("starting watch worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping watch worker")
			return ctx.Err()
		case <-ticker.C:
			w.runTick(ctx)
		}
	}
}

func (w *WatchWorker) runTick(ctx context.Context) {
	if !w.running.CompareAndSwap(false, true) {
		metrics.IncTickSkipped("overlap")
		w.log.Warn().Msg("previous tick still running, skipping")
		return
	}
	defer w.running.Store(false)

	if err := w.watchUC.Tick(ctx); err != nil {
		w.log.Error().Err(err).Msg("tick failed")
	}
}
