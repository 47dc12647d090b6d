package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type cmdHandler func(ctx context.Context, msg *tgbotapi.Message, args string) (string, error)

func (r *RealBotAdapter) cmdRoutes() map[string]cmdHandler {
	return map[string]cmdHandler{
		"start": func(ctx context.Context, m *tgbotapi.Message, args string) (string, error) {
			return r.facade.HandleStart(ctx, m.Chat.ID, m.From.ID, displayName(m.From), args, m.MessageID)
		},
		"number": func(ctx context.Context, m *tgbotapi.Message, args string) (string, error) {
			if strings.TrimSpace(args) == "" {
				return r.facade.HandleWatchStatus(ctx, m.Chat.ID, m.From.ID)
			}
			return r.facade.HandleWatch(ctx, m.Chat.ID, m.From.ID, displayName(m.From), args, m.MessageID)
		},
		"cancel": func(ctx context.Context, m *tgbotapi.Message, _ string) (string, error) {
			return r.facade.HandleCancel(ctx, m.Chat.ID, m.From.ID)
		},
		"now": func(ctx context.Context, m *tgbotapi.Message, _ string) (string, error) {
			return r.facade.HandleNow(ctx)
		},
		"poll": func(ctx context.Context, m *tgbotapi.Message, args string) (string, error) {
			return r.facade.HandlePollOpen(ctx, m.Chat.ID, args)
		},
		"closepoll": func(ctx context.Context, m *tgbotapi.Message, _ string) (string, error) {
			if !r.isAdmin(m.From.ID) {
				return "這個指令要管理員才能用喔", nil
			}
			return r.facade.HandlePollClose(ctx, m.Chat.ID)
		},
		"ramen": func(ctx context.Context, m *tgbotapi.Message, _ string) (string, error) {
			if !r.isAdmin(m.From.ID) {
				return "這個指令要管理員才能用喔", nil
			}
			return r.facade.HandleRamen(ctx, m.Chat.ID)
		},
	}
}

func (r *RealBotAdapter) handleUpdate(ctx context.Context, up tgbotapi.Update) error {
	switch {
	case up.PollAnswer != nil:
		return r.handlePollAnswer(ctx, up.PollAnswer)
	case up.Message != nil:
		return r.handleMessage(ctx, up.Message)
	default:
		return nil
	}
}

func (r *RealBotAdapter) handleMessage(ctx context.Context, m *tgbotapi.Message) error {
	if m.From == nil || m.From.IsBot {
		return nil
	}

	if m.IsCommand() {
		handler, ok := r.cmdRoutes()[m.Command()]
		if !ok {
			return nil
		}
		text, err := handler(ctx, m, m.CommandArguments())
		if err != nil {
			r.log.Warn().Err(err).Str("command", m.Command()).Int64("chat", m.Chat.ID).Msg("command failed")
		}
		if text == "" {
			return nil
		}
		return r.sender.SendReply(ctx, m.Chat.ID, text, m.MessageID)
	}

	// Free-form text goes to the persona chat when the bot is addressed:
	// always in private chats, only when mentioned in groups.
	if m.Text == "" {
		return nil
	}
	if !m.Chat.IsPrivate() && !r.mentioned(m) {
		return nil
	}
	text, err := r.facade.HandleChat(ctx, m.Chat.ID, m.From.ID, stripMention(m.Text, r.cfg.Username))
	if err != nil {
		r.log.Warn().Err(err).Int64("chat", m.Chat.ID).Msg("chat reply failed")
	}
	if text == "" {
		return nil
	}
	return r.sender.SendReply(ctx, m.Chat.ID, text, m.MessageID)
}

func (r *RealBotAdapter) handlePollAnswer(ctx context.Context, pa *tgbotapi.PollAnswer) error {
	return r.facade.HandlePollAnswer(ctx, pa.PollID, pa.User.ID, displayName(&pa.User), pa.OptionIDs)
}

func (r *RealBotAdapter) mentioned(m *tgbotapi.Message) bool {
	if r.cfg.Username == "" {
		return false
	}
	if strings.Contains(m.Text, "@"+r.cfg.Username) {
		return true
	}
	return m.ReplyToMessage != nil && m.ReplyToMessage.From != nil &&
		m.ReplyToMessage.From.UserName == r.cfg.Username
}

func stripMention(text, username string) string {
	if username == "" {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(strings.ReplaceAll(text, "@"+username, ""))
}

func displayName(u *tgbotapi.User) string {
	if u == nil {
		return ""
	}
	if u.UserName != "" {
		return u.UserName
	}
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	return name
}
