package model

import (
	"time"
)

type PollKind string

const (
	PollKindPlain PollKind = "plain"
	PollKindRamen PollKind = "ramen" // options encode item + quantity
)

// PollOption is one selectable answer. For ramen polls Item and Quantity
// are set and Text is derived ("叉燒拉麵 x2"); for plain polls only Text is.
type PollOption struct {
	Text     string `json:"text"`
	Item     string `json:"item,omitempty"`
	Quantity int    `json:"quantity,omitempty"`
}

// GroupPoll mirrors one Telegram poll the bot posted, plus every answer
// seen so far. Answers are last-write-wins per user; a retraction removes
// the user's entry.
type GroupPoll struct {
	ID             string          `json:"id"` // ULID, sortable by creation
	TelegramPollID string          `json:"telegramPollId"`
	ChatID         int64           `json:"chatId"`
	MessageID      int             `json:"messageId"`
	Kind           PollKind        `json:"kind"`
	Question       string          `json:"question"`
	Options        []PollOption    `json:"options"`
	Answers        map[int64][]int `json:"answers"` // userId -> chosen option indexes
	Voters         map[int64]string `json:"voters"` // userId -> display name
	Open           bool            `json:"open"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// Record stores a user's answer, replacing any previous one. An empty
// option list is a retraction.
func (p *GroupPoll) Record(userID int64, displayName string, optionIDs []int) {
	if p.Answers == nil {
		p.Answers = make(map[int64][]int)
	}
	if p.Voters == nil {
		p.Voters = make(map[int64]string)
	}
	if len(optionIDs) == 0 {
		delete(p.Answers, userID)
		delete(p.Voters, userID)
		return
	}
	p.Answers[userID] = append([]int(nil), optionIDs...)
	p.Voters[userID] = displayName
}

// Tally returns vote counts per option index.
func (p *GroupPoll) Tally() []int {
	counts := make([]int, len(p.Options))
	for _, opts := range p.Answers {
		for _, i := range opts {
			if i >= 0 && i < len(counts) {
				counts[i]++
			}
		}
	}
	return counts
}

// Quantities aggregates ramen-poll answers into total bowls per item.
// Plain polls return an empty map.
func (p *GroupPoll) Quantities() map[string]int {
	out := make(map[string]int)
	if p.Kind != PollKindRamen {
		return out
	}
	for _, opts := range p.Answers {
		for _, i := range opts {
			if i < 0 || i >= len(p.Options) {
				continue
			}
			o := p.Options[i]
			if o.Item != "" {
				out[o.Item] += o.Quantity
			}
		}
	}
	return out
}
