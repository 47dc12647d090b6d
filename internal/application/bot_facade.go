package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"telegram-queue-bot/internal/domain"
	"telegram-queue-bot/internal/usecase"
)

// BotFacade composes usecases into high-level bot commands. Methods return
// the user-facing string so the Telegram adapter just forwards it.
type BotFacade struct {
	SubUC  *usecase.SubscriptionUseCase
	ChatUC *usecase.ChatUseCase
	PollUC *usecase.PollUseCase

	ramenItems []string
}

func NewBotFacade(subUC *usecase.SubscriptionUseCase, chatUC *usecase.ChatUseCase, pollUC *usecase.PollUseCase, ramenItems []string) *BotFacade {
	return &BotFacade{
		SubUC:      subUC,
		ChatUC:     chatUC,
		PollUC:     pollUC,
		ramenItems: ramenItems,
	}
}

// HandleStart greets the user; a deep-link payload "number_<n>" registers
// a watch directly.
func (b *BotFacade) HandleStart(ctx context.Context, chatID, userID int64, displayName, payload string, messageID int) (string, error) {
	payload = strings.TrimSpace(payload)
	if n, ok := strings.CutPrefix(payload, "number_"); ok {
		return b.HandleWatch(ctx, chatID, userID, displayName, n, messageID)
	}
	return "哈囉！我是榮勾斯揪 🍜\n用 /number <號碼> 訂閱叫號通知，/now 看目前號碼，或直接跟我聊天。", nil
}

// HandleWatch registers a queue-number watch and reports failure reasons
// in user terms.
func (b *BotFacade) HandleWatch(ctx context.Context, chatID, userID int64, displayName, arg string, messageID int) (string, error) {
	target, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return "號碼看不懂耶，用 /number 1050 這種格式", nil
	}
	sub, err := b.SubUC.Watch(ctx, chatID, userID, displayName, target, messageID)
	switch {
	case errors.Is(err, domain.ErrOutOfRange):
		return fmt.Sprintf("%d 不是有效的號碼喔", target), nil
	case errors.Is(err, domain.ErrNumberPassed):
		return fmt.Sprintf("%d 已經過號了，訂了也等不到 😅", target), nil
	case errors.Is(err, domain.ErrAlreadyExists):
		return "你已經訂閱一個號碼了，先 /cancel 再訂新的", nil
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return "現在查不到叫號，晚點再試一次", nil
	case err != nil:
		return "訂閱失敗了，晚點再試一次", err
	}
	return fmt.Sprintf("好喔！%d 號到了會叫你", sub.TargetNumber), nil
}

// HandleWatchStatus reports the caller's outstanding watch.
func (b *BotFacade) HandleWatchStatus(ctx context.Context, chatID, userID int64) (string, error) {
	sub, err := b.SubUC.Status(ctx, chatID, userID)
	if errors.Is(err, domain.ErrNotSubscribed) {
		return "你目前沒有訂閱號碼，用 /number <號碼> 訂一個", nil
	}
	if err != nil {
		return "查不到訂閱狀態，晚點再試一次", err
	}
	return fmt.Sprintf("你訂閱了 %d 號（%s 訂的）", sub.TargetNumber, sub.CreatedAt.Format("15:04")), nil
}

func (b *BotFacade) HandleCancel(ctx context.Context, chatID, userID int64) (string, error) {
	sub, err := b.SubUC.Cancel(ctx, chatID, userID)
	if errors.Is(err, domain.ErrNotSubscribed) {
		return "你本來就沒有訂閱號碼喔", nil
	}
	if err != nil {
		return "取消失敗了，晚點再試一次", err
	}
	return fmt.Sprintf("已取消 %d 號的訂閱", sub.TargetNumber), nil
}

func (b *BotFacade) HandleNow(ctx context.Context) (string, error) {
	n, err := b.SubUC.CurrentNumber(ctx)
	if errors.Is(err, domain.ErrUpstreamUnavailable) {
		return "現在查不到叫號，晚點再試一次", nil
	}
	if err != nil {
		return "現在查不到叫號，晚點再試一次", err
	}
	return fmt.Sprintf("目前叫號：%d", n), nil
}

// HandlePollOpen parses "/poll 問題 | 選項 | 選項…".
func (b *BotFacade) HandlePollOpen(ctx context.Context, chatID int64, args string) (string, error) {
	parts := strings.Split(args, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 3 || parts[0] == "" {
		return "格式：/poll 問題 | 選項一 | 選項二", nil
	}
	_, err := b.PollUC.Open(ctx, chatID, parts[0], parts[1:])
	if errors.Is(err, domain.ErrAlreadyExists) {
		return "這個群已經有進行中的投票了，先 /closepoll", nil
	}
	if err != nil {
		return "開投票失敗了，晚點再試一次", err
	}
	// The poll itself is the reply; no extra text needed.
	return "", nil
}

func (b *BotFacade) HandlePollClose(ctx context.Context, chatID int64) (string, error) {
	summary, err := b.PollUC.Close(ctx, chatID)
	if errors.Is(err, domain.ErrNoOpenPoll) {
		return "這個群沒有進行中的投票", nil
	}
	if err != nil {
		return "關投票失敗了，晚點再試一次", err
	}
	return summary, nil
}

func (b *BotFacade) HandleRamen(ctx context.Context, chatID int64) (string, error) {
	_, err := b.PollUC.OpenRamen(ctx, chatID, b.ramenItems)
	if errors.Is(err, domain.ErrAlreadyExists) {
		return "已經在點餐了啦，先 /closepoll 結單", nil
	}
	if err != nil {
		return "開點餐投票失敗了，晚點再試一次", err
	}
	return "", nil
}

func (b *BotFacade) HandlePollAnswer(ctx context.Context, telegramPollID string, userID int64, displayName string, optionIDs []int) error {
	err := b.PollUC.RecordAnswer(ctx, telegramPollID, userID, displayName, optionIDs)
	if errors.Is(err, domain.ErrPollClosed) {
		return nil
	}
	return err
}

// HandleChat forwards free-form text to the persona LLM.
func (b *BotFacade) HandleChat(ctx context.Context, chatID, userID int64, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	reply, err := b.ChatUC.Reply(ctx, chatID, userID, text)
	if errors.Is(err, domain.ErrRateLimited) {
		return "讓我休息一下，等等再聊 😮‍💨", nil
	}
	if err != nil {
		return "我現在腦袋打結了，晚點再聊", err
	}
	return reply, nil
}
