package telegram

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-queue-bot/internal/domain/ports/adapter"
)

var _ adapter.MessengerAdapter = (*Sender)(nil)

// Sender is the outbound half of the transport. It exists separately from
// RealBotAdapter so the use cases can send through it before the inbound
// router (which needs the facade, which needs the use cases) is built.
type Sender struct {
	bot *tgbotapi.BotAPI
	log *zerolog.Logger
}

func NewSender(bot *tgbotapi.BotAPI, logger *zerolog.Logger) *Sender {
	senderLog := logger.With().Str("component", "telegram").Logger()
	return &Sender{bot: bot, log: &senderLog}
}

func (s *Sender) SendMessage(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := s.bot.Send(msg)
	return err
}

// SendReply threads under replyToMessageID; when Telegram reports the
// target message gone, it degrades to a top-level send so the recipient is
// still notified.
func (s *Sender) SendReply(ctx context.Context, chatID int64, text string, replyToMessageID int) error {
	if replyToMessageID == 0 {
		return s.SendMessage(ctx, chatID, text)
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = replyToMessageID
	_, err := s.bot.Send(msg)
	if err != nil && isReplyTargetMissing(err) {
		s.log.Debug().Int64("chat", chatID).Int("reply_to", replyToMessageID).Msg("reply target gone, sending top-level")
		return s.SendMessage(ctx, chatID, text)
	}
	return err
}

func (s *Sender) SendPoll(ctx context.Context, chatID int64, question string, options []string, multi bool) (string, int, error) {
	cfg := tgbotapi.NewPoll(chatID, question, options...)
	cfg.IsAnonymous = false // poll_answer updates carry the voter only for non-anonymous polls
	cfg.AllowsMultipleAnswers = multi
	sent, err := s.bot.Send(cfg)
	if err != nil {
		return "", 0, err
	}
	if sent.Poll == nil {
		return "", 0, errors.New("telegram: sent message has no poll")
	}
	return sent.Poll.ID, sent.MessageID, nil
}

func (s *Sender) StopPoll(ctx context.Context, chatID int64, messageID int) error {
	_, err := s.bot.StopPoll(tgbotapi.NewStopPoll(chatID, messageID))
	return err
}

func isReplyTargetMissing(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "replied message not found") ||
		strings.Contains(s, "message to reply not found")
}
