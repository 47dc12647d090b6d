package telegram

import (
	"context"
	"errors"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-queue-bot/internal/application"
	"telegram-queue-bot/internal/config"
)

// RealBotAdapter polls Telegram updates and delegates commands to the
// BotFacade. Outbound sends go through the shared Sender.
type RealBotAdapter struct {
	bot    *tgbotapi.BotAPI
	cfg    *config.BotConfig
	facade *application.BotFacade
	sender *Sender
	log    *zerolog.Logger

	adminIDsMap   map[int64]struct{}
	updateWorkers int
	cancelPolling context.CancelFunc
}

func NewRealBotAdapter(bot *tgbotapi.BotAPI, cfg *config.BotConfig, facade *application.BotFacade, sender *Sender, logger *zerolog.Logger) (*RealBotAdapter, error) {
	if bot == nil {
		return nil, errors.New("bot api is nil")
	}
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if facade == nil {
		return nil, errors.New("bot facade is nil")
	}
	if sender == nil {
		return nil, errors.New("sender is nil")
	}

	adminMap := map[int64]struct{}{}
	for _, id := range cfg.AdminIDs {
		adminMap[id] = struct{}{}
	}

	botLog := logger.With().Str("component", "telegram").Logger()
	workers := cfg.Workers
	if workers <= 0 {
		workers = 5
	}
	return &RealBotAdapter{
		bot:           bot,
		cfg:           cfg,
		facade:        facade,
		sender:        sender,
		log:           &botLog,
		adminIDsMap:   adminMap,
		updateWorkers: workers,
	}, nil
}

func (r *RealBotAdapter) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < r.updateWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case up := <-updateChan:
					if err := r.handleUpdate(ctx, up); err != nil {
						r.log.Error().Err(err).Int("worker", id).Msg("update handling failed")
					}
				}
			}
		}(i)
	}

	for {
		select {
		case <-ctx.Done():
			close(updateChan)
			wg.Wait()
			return ctx.Err()
		case up := <-updates:
			updateChan <- up
		}
	}
}

// isAdmin gates admin-only commands. An empty admin list means the gate
// is off.
func (r *RealBotAdapter) isAdmin(userID int64) bool {
	if len(r.adminIDsMap) == 0 {
		return true
	}
	_, ok := r.adminIDsMap[userID]
	return ok
}

func (r *RealBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}
