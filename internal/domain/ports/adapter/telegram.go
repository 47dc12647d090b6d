package adapter

import "context"

// MessengerAdapter is the outbound chat transport the use cases depend on.
//
// SendReply threads the message under replyToMessageID; implementations
// fall back to a top-level SendMessage when the transport reports the
// reply target missing, so the recipient is still notified after the
// original message was deleted.
type MessengerAdapter interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendReply(ctx context.Context, chatID int64, text string, replyToMessageID int) error
	SendPoll(ctx context.Context, chatID int64, question string, options []string, multi bool) (telegramPollID string, messageID int, err error)
	StopPoll(ctx context.Context, chatID int64, messageID int) error
}
