package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
bot:
  token: "123:abc"
queue:
  feed_url: "https://example.com/feed"
`

func TestLoadConfig(t *testing.T) {
	t.Run("minimal config gets defaults", func(t *testing.T) {
		cfg, err := LoadConfig(writeConfig(t, minimalConfig), false)
		if err != nil {
			t.Fatalf("LoadConfig: %v", err)
		}

		if cfg.Bot.Workers != 8 {
			t.Errorf("Workers = %d, want 8", cfg.Bot.Workers)
		}
		if cfg.Queue.MinNumber != 1001 || cfg.Queue.MaxNumber != 1200 {
			t.Errorf("number range = [%d,%d], want [1001,1200]", cfg.Queue.MinNumber, cfg.Queue.MaxNumber)
		}
		if cfg.Queue.WatchExpiry != 5*time.Hour {
			t.Errorf("WatchExpiry = %v, want 5h", cfg.Queue.WatchExpiry)
		}
		if cfg.Queue.CacheTTL != time.Minute || cfg.Queue.TickInterval != time.Minute {
			t.Errorf("CacheTTL=%v TickInterval=%v, want 1m each", cfg.Queue.CacheTTL, cfg.Queue.TickInterval)
		}
		if cfg.Storage.Driver != "file" || cfg.Storage.Path != "data/bot.json" {
			t.Errorf("unexpected storage defaults: %+v", cfg.Storage)
		}
		if cfg.Poll.MaxQuantity != 3 {
			t.Errorf("MaxQuantity = %d, want 3", cfg.Poll.MaxQuantity)
		}
		if cfg.Runtime.Dev {
			t.Error("Dev should be false")
		}
	})

	t.Run("explicit values survive defaulting", func(t *testing.T) {
		body := minimalConfig + `
  min_number: 2001
  max_number: 2300
  watch_expiry: 2h
storage:
  driver: file
  path: /tmp/other.json
`
		cfg, err := LoadConfig(writeConfig(t, body), true)
		if err != nil {
			t.Fatalf("LoadConfig: %v", err)
		}
		if cfg.Queue.MinNumber != 2001 || cfg.Queue.MaxNumber != 2300 {
			t.Errorf("number range = [%d,%d]", cfg.Queue.MinNumber, cfg.Queue.MaxNumber)
		}
		if cfg.Queue.WatchExpiry != 2*time.Hour {
			t.Errorf("WatchExpiry = %v", cfg.Queue.WatchExpiry)
		}
		if !cfg.Runtime.Dev {
			t.Error("Dev should be true")
		}
	})

	t.Run("missing token is rejected", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "queue:\n  feed_url: \"x\"\n"), false)
		if err == nil || !strings.Contains(err.Error(), "bot.token") {
			t.Errorf("expected a bot.token error, got %v", err)
		}
	})

	t.Run("missing feed url is rejected", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "bot:\n  token: \"x\"\n"), false)
		if err == nil || !strings.Contains(err.Error(), "feed_url") {
			t.Errorf("expected a feed_url error, got %v", err)
		}
	})

	t.Run("postgres driver needs a url", func(t *testing.T) {
		body := minimalConfig + `
storage:
  driver: postgres
`
		_, err := LoadConfig(writeConfig(t, body), false)
		if err == nil || !strings.Contains(err.Error(), "storage.url") {
			t.Errorf("expected a storage.url error, got %v", err)
		}
	})

	t.Run("inverted number range is rejected", func(t *testing.T) {
		body := minimalConfig + `
  min_number: 1200
  max_number: 1100
`
		_, err := LoadConfig(writeConfig(t, body), false)
		if err == nil || !strings.Contains(err.Error(), "min_number") {
			t.Errorf("expected a range error, got %v", err)
		}
	})

	t.Run("missing file is an error", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), false); err == nil {
			t.Error("expected an error")
		}
	})
}
