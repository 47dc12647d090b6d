package telegram

import (
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func TestIsReplyTargetMissing(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"replied message not found", errors.New("Bad Request: replied message not found"), true},
		{"message to reply not found", errors.New("Bad Request: message to reply not found"), true},
		{"unrelated bad request", errors.New("Bad Request: chat not found"), false},
		{"network error", errors.New("dial tcp: connection refused"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isReplyTargetMissing(tc.err); got != tc.want {
				t.Errorf("isReplyTargetMissing(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestStripMention(t *testing.T) {
	cases := []struct {
		text, username, want string
	}{
		{"@ronggousjiu_bot 你好", "ronggousjiu_bot", "你好"},
		{"你好 @ronggousjiu_bot", "ronggousjiu_bot", "你好"},
		{"你好", "ronggousjiu_bot", "你好"},
		{"  你好  ", "", "你好"},
	}
	for _, tc := range cases {
		if got := stripMention(tc.text, tc.username); got != tc.want {
			t.Errorf("stripMention(%q, %q) = %q, want %q", tc.text, tc.username, got, tc.want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	cases := []struct {
		name string
		user *tgbotapi.User
		want string
	}{
		{"nil user", nil, ""},
		{"username wins", &tgbotapi.User{UserName: "alice", FirstName: "Alice"}, "alice"},
		{"first name only", &tgbotapi.User{FirstName: "Alice"}, "Alice"},
		{"first and last", &tgbotapi.User{FirstName: "Alice", LastName: "Wong"}, "Alice Wong"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := displayName(tc.user); got != tc.want {
				t.Errorf("displayName = %q, want %q", got, tc.want)
			}
		})
	}
}
