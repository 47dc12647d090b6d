package model

import (
	"time"

	"telegram-queue-bot/internal/domain"
)

// QueueSubscription is one outstanding "notify me when this number is
// reached" request. At most one exists per (chat,user) pair; the pair
// uniqueness is enforced at creation time, not by storage.
type QueueSubscription struct {
	ChatID          int64     `json:"chatId"`
	UserID          int64     `json:"userId"`
	DisplayName     string    `json:"displayName"`
	TargetNumber    int       `json:"targetNumber"`
	CreatedAt       time.Time `json:"createdAt"`
	OriginMessageID int       `json:"originMessageId"`
}

// NewQueueSubscription creates a watch request. Range and already-passed
// checks against the live number belong to the use case; this only rejects
// structurally invalid input.
func NewQueueSubscription(chatID, userID int64, displayName string, target, originMessageID int) (*QueueSubscription, error) {
	if chatID == 0 || userID == 0 || target <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &QueueSubscription{
		ChatID:          chatID,
		UserID:          userID,
		DisplayName:     displayName,
		TargetNumber:    target,
		CreatedAt:       time.Now(),
		OriginMessageID: originMessageID,
	}, nil
}

// Reached reports whether the externally observed number has caught up to
// or passed the target.
func (s *QueueSubscription) Reached(current int) bool {
	return current >= s.TargetNumber
}

// Expired reports whether the watch has waited longer than maxWait without
// being reached. Reached takes precedence over Expired when both hold.
func (s *QueueSubscription) Expired(now time.Time, maxWait time.Duration) bool {
	return now.Sub(s.CreatedAt) > maxWait
}
