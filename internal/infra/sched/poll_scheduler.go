package sched

import (
	"context"
	"errors"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"telegram-queue-bot/internal/application"
)

// PollScheduler posts the ramen-order poll on a cron schedule, e.g.
// "0 10 * * 5" for Friday mornings.
type PollScheduler struct {
	cron   *cron.Cron
	facade *application.BotFacade
	chatID int64
	log    *zerolog.Logger
}

func NewPollScheduler(spec string, chatID int64, facade *application.BotFacade, logger *zerolog.Logger) (*PollScheduler, error) {
	if spec == "" {
		return nil, errors.New("poll scheduler: empty cron spec")
	}
	if chatID == 0 {
		return nil, errors.New("poll scheduler: ramen_chat_id is required")
	}
	schedLog := logger.With().Str("component", "PollScheduler").Logger()
	s := &PollScheduler{
		cron:   cron.New(),
		facade: facade,
		chatID: chatID,
		log:    &schedLog,
	}
	if _, err := s.cron.AddFunc(spec, s.post); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PollScheduler) Start() {
	s.log.Info().Msg("starting poll scheduler")
	s.cron.Start()
}

func (s *PollScheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *PollScheduler) post() {
	text, err := s.facade.HandleRamen(context.Background(), s.chatID)
	if err != nil {
		s.log.Error().Err(err).Msg("scheduled ramen poll failed")
		return
	}
	if text != "" {
		// Non-empty text means the poll was not opened (e.g. one is
		// already running in the chat).
		s.log.Info().Str("reason", text).Msg("scheduled ramen poll skipped")
	}
}
