package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"telegram-queue-bot/internal/domain"
	"telegram-queue-bot/internal/domain/model"
	"telegram-queue-bot/internal/domain/ports/adapter"
	"telegram-queue-bot/internal/domain/ports/repository"
)

// PollUseCase runs group polls, including the ramen-order poll whose
// options carry per-item quantities.
type PollUseCase struct {
	polls       repository.PollStore
	messenger   adapter.MessengerAdapter
	maxQuantity int
	log         *zerolog.Logger
}

func NewPollUseCase(polls repository.PollStore, messenger adapter.MessengerAdapter, maxQuantity int, logger *zerolog.Logger) *PollUseCase {
	pollLog := logger.With().Str("component", "PollUC").Logger()
	return &PollUseCase{
		polls:       polls,
		messenger:   messenger,
		maxQuantity: maxQuantity,
		log:         &pollLog,
	}
}

// newID is safe for concurrent update workers; ulid.Make locks its
// entropy source.
func (uc *PollUseCase) newID() string {
	return ulid.Make().String()
}

// Open posts a plain poll. One open poll per chat.
func (uc *PollUseCase) Open(ctx context.Context, chatID int64, question string, options []string) (*model.GroupPoll, error) {
	if question == "" || len(options) < 2 {
		return nil, domain.ErrInvalidArgument
	}
	if existing, err := uc.polls.FindOpenByChat(ctx, chatID); err == nil && existing != nil {
		return nil, domain.ErrAlreadyExists
	}

	opts := make([]model.PollOption, 0, len(options))
	for _, o := range options {
		opts = append(opts, model.PollOption{Text: o})
	}
	return uc.open(ctx, chatID, model.PollKindPlain, question, opts, false)
}

// OpenRamen posts the ramen-order poll: every item expands into quantity
// options ("叉燒拉麵 x1" … "xN") and voters may pick several lines.
func (uc *PollUseCase) OpenRamen(ctx context.Context, chatID int64, items []string) (*model.GroupPoll, error) {
	if len(items) == 0 {
		return nil, domain.ErrInvalidArgument
	}
	if existing, err := uc.polls.FindOpenByChat(ctx, chatID); err == nil && existing != nil {
		return nil, domain.ErrAlreadyExists
	}

	var opts []model.PollOption
	for _, item := range items {
		for q := 1; q <= uc.maxQuantity; q++ {
			opts = append(opts, model.PollOption{
				Text:     fmt.Sprintf("%s x%d", item, q),
				Item:     item,
				Quantity: q,
			})
		}
	}
	return uc.open(ctx, chatID, model.PollKindRamen, "今天拉麵要點什麼？", opts, true)
}

func (uc *PollUseCase) open(ctx context.Context, chatID int64, kind model.PollKind, question string, opts []model.PollOption, multi bool) (*model.GroupPoll, error) {
	texts := make([]string, 0, len(opts))
	for _, o := range opts {
		texts = append(texts, o.Text)
	}
	tgID, messageID, err := uc.messenger.SendPoll(ctx, chatID, question, texts, multi)
	if err != nil {
		return nil, fmt.Errorf("send poll: %w", err)
	}

	p := &model.GroupPoll{
		ID:             uc.newID(),
		TelegramPollID: tgID,
		ChatID:         chatID,
		MessageID:      messageID,
		Kind:           kind,
		Question:       question,
		Options:        opts,
		Answers:        map[int64][]int{},
		Voters:         map[int64]string{},
		Open:           true,
		CreatedAt:      time.Now(),
	}
	if err := uc.polls.Save(ctx, p); err != nil {
		uc.log.Error().Err(err).Str("poll", p.ID).Msg("persist poll failed")
	}
	uc.log.Info().Str("poll", p.ID).Int64("chat", chatID).Str("kind", string(kind)).Msg("poll opened")
	return p, nil
}

// RecordAnswer stores a poll_answer update. Unknown polls are ignored:
// they predate the store or belong to another bot.
func (uc *PollUseCase) RecordAnswer(ctx context.Context, telegramPollID string, userID int64, displayName string, optionIDs []int) error {
	p, err := uc.polls.FindByTelegramID(ctx, telegramPollID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	if !p.Open {
		return domain.ErrPollClosed
	}
	p.Record(userID, displayName, optionIDs)
	return uc.polls.Save(ctx, p)
}

// Close stops the chat's open poll and returns the summary text.
func (uc *PollUseCase) Close(ctx context.Context, chatID int64) (string, error) {
	p, err := uc.polls.FindOpenByChat(ctx, chatID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrNoOpenPoll
		}
		return "", err
	}

	if err := uc.messenger.StopPoll(ctx, chatID, p.MessageID); err != nil {
		// The Telegram poll may already be stopped (e.g. by an admin);
		// closing our record still proceeds.
		uc.log.Warn().Err(err).Str("poll", p.ID).Msg("stop poll failed")
	}
	p.Open = false
	if err := uc.polls.Save(ctx, p); err != nil {
		return "", err
	}
	uc.log.Info().Str("poll", p.ID).Int64("chat", chatID).Msg("poll closed")
	return uc.Summary(p), nil
}

// Summary renders the result text: vote counts for plain polls, total
// bowls per item for ramen polls.
func (uc *PollUseCase) Summary(p *model.GroupPoll) string {
	var sb strings.Builder
	sb.WriteString(p.Question)
	sb.WriteString("\n投票結果：\n")

	if p.Kind == model.PollKindRamen {
		quantities := p.Quantities()
		if len(quantities) == 0 {
			sb.WriteString("沒有人點餐 😢")
			return sb.String()
		}
		items := make([]string, 0, len(quantities))
		for item := range quantities {
			items = append(items, item)
		}
		sort.Strings(items)
		total := 0
		for _, item := range items {
			sb.WriteString(fmt.Sprintf("%s：%d 碗\n", item, quantities[item]))
			total += quantities[item]
		}
		sb.WriteString(fmt.Sprintf("總計 %d 碗（%d 人點餐）", total, len(p.Answers)))
		return sb.String()
	}

	counts := p.Tally()
	for i, o := range p.Options {
		sb.WriteString(fmt.Sprintf("%s：%d 票\n", o.Text, counts[i]))
	}
	sb.WriteString(fmt.Sprintf("共 %d 人投票", len(p.Answers)))
	return sb.String()
}

// CountOpen reports open polls (admin stats).
func (uc *PollUseCase) CountOpen(ctx context.Context) (int, error) {
	return uc.polls.CountOpen(ctx)
}
