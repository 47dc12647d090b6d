package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token    string  `yaml:"token"`
	Username string  `yaml:"username"`
	Workers  int     `yaml:"workers"` // polling update workers
	AdminIDs []int64 `yaml:"admin_ids"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

// QueueConfig drives the number-watch engine and the upstream feed adapter.
type QueueConfig struct {
	FeedURL      string        `yaml:"feed_url"`
	NumberField  string        `yaml:"number_field"` // key inside the feed record's selection map
	MinNumber    int           `yaml:"min_number"`
	MaxNumber    int           `yaml:"max_number"`
	CacheTTL     time.Duration `yaml:"cache_ttl"`
	TickInterval time.Duration `yaml:"tick_interval"`
	WatchExpiry  time.Duration `yaml:"watch_expiry"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"` // file | postgres
	Path   string `yaml:"path"`   // data file for the file driver
	URL    string `yaml:"url"`    // dsn for the postgres driver
}

type RedisConfig struct {
	URL      string `yaml:"url"` // empty disables rate limiting
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AIConfig struct {
	OpenAIKey    string        `yaml:"openai_key"`
	GeminiKey    string        `yaml:"gemini_key"`
	GeminiURL    string        `yaml:"gemini_url"`
	DefaultModel string        `yaml:"default_model"`
	PersonaFile  string        `yaml:"persona_file"` // system prompt text file
	MaxOutTokens int           `yaml:"max_out_tokens"`
	RateLimit    int           `yaml:"rate_limit"` // chat calls per user per window
	RateWindow   time.Duration `yaml:"rate_window"`
}

type PollConfig struct {
	RamenCron   string   `yaml:"ramen_cron"` // empty disables the scheduled poll
	RamenChatID int64    `yaml:"ramen_chat_id"`
	RamenItems  []string `yaml:"ramen_items"`
	MaxQuantity int      `yaml:"max_quantity"`
}

type AdminConfig struct {
	Port       int           `yaml:"port"`
	APIKey     string        `yaml:"api_key"`
	JWTSecret  string        `yaml:"jwt_secret"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

type Config struct {
	Bot     BotConfig     `yaml:"bot"`
	Log     LogConfig     `yaml:"log"`
	Queue   QueueConfig   `yaml:"queue"`
	Storage StorageConfig `yaml:"storage"`
	Redis   RedisConfig   `yaml:"redis"`
	AI      AIConfig      `yaml:"ai"`
	Poll    PollConfig    `yaml:"poll"`
	Admin   AdminConfig   `yaml:"admin"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()

	// Minimal validation
	if cfg.Bot.Token == "" {
		return nil, errors.New("bot.token is required")
	}
	if cfg.Queue.FeedURL == "" {
		return nil, errors.New("queue.feed_url is required")
	}
	if cfg.Storage.Driver == "postgres" && cfg.Storage.URL == "" {
		return nil, errors.New("storage.url is required for the postgres driver")
	}
	if cfg.Queue.MinNumber >= cfg.Queue.MaxNumber {
		return nil, fmt.Errorf("queue: min_number %d must be below max_number %d", cfg.Queue.MinNumber, cfg.Queue.MaxNumber)
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Queue.NumberField == "" {
		cfg.Queue.NumberField = "number"
	}
	if cfg.Queue.MinNumber == 0 {
		cfg.Queue.MinNumber = 1001
	}
	if cfg.Queue.MaxNumber == 0 {
		cfg.Queue.MaxNumber = 1200
	}
	if cfg.Queue.CacheTTL <= 0 {
		cfg.Queue.CacheTTL = time.Minute
	}
	if cfg.Queue.TickInterval <= 0 {
		cfg.Queue.TickInterval = time.Minute
	}
	if cfg.Queue.WatchExpiry <= 0 {
		cfg.Queue.WatchExpiry = 5 * time.Hour
	}
	if cfg.Queue.FetchTimeout <= 0 {
		cfg.Queue.FetchTimeout = 10 * time.Second
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "file"
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "data/bot.json"
	}
	if cfg.AI.DefaultModel == "" {
		cfg.AI.DefaultModel = "gpt-4o-mini"
	}
	if cfg.AI.MaxOutTokens <= 0 {
		cfg.AI.MaxOutTokens = 1024
	}
	if cfg.AI.RateLimit <= 0 {
		cfg.AI.RateLimit = 10
	}
	if cfg.AI.RateWindow <= 0 {
		cfg.AI.RateWindow = time.Minute
	}
	if cfg.Poll.MaxQuantity <= 0 {
		cfg.Poll.MaxQuantity = 3
	}
	if cfg.Admin.Port == 0 {
		cfg.Admin.Port = 8081
	}
	if cfg.Admin.SessionTTL <= 0 {
		cfg.Admin.SessionTTL = 30 * time.Minute
	}
}
