package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-queue-bot/internal/application"
	"telegram-queue-bot/internal/config"
	"telegram-queue-bot/internal/domain/ports/adapter"
	"telegram-queue-bot/internal/domain/ports/repository"
	aiAdapters "telegram-queue-bot/internal/infra/adapters/ai"
	tele "telegram-queue-bot/internal/infra/adapters/telegram"
	pg "telegram-queue-bot/internal/infra/db/postgres"
	"telegram-queue-bot/internal/infra/logging"
	"telegram-queue-bot/internal/infra/metrics"
	"telegram-queue-bot/internal/infra/queuefeed"
	red "telegram-queue-bot/internal/infra/redis"
	"telegram-queue-bot/internal/infra/sched"
	"telegram-queue-bot/internal/infra/storage/jsonfile"
	"telegram-queue-bot/internal/infra/web"
	"telegram-queue-bot/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}
	metrics.MustRegister()

	// ---- Storage ----
	var subStore repository.SubscriptionStore
	var pollStore repository.PollStore
	var usageStore repository.UsageLogStore
	switch cfg.Storage.Driver {
	case "postgres":
		pool, err := pg.NewPgxPool(ctx, cfg.Storage.URL, 10)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer pool.Close()
		subStore = pg.NewSubscriptionStore(pool)
		// Polls and usage stay on the JSON document store; only the watch
		// collection has a networked backend.
		doc, err := jsonfile.Open(cfg.Storage.Path, logger)
		if err != nil {
			log.Fatalf("storage: %v", err)
		}
		pollStore = jsonfile.NewPollStore(doc)
		usageStore = jsonfile.NewUsageLogStore(doc)
	default:
		doc, err := jsonfile.Open(cfg.Storage.Path, logger)
		if err != nil {
			log.Fatalf("storage: %v", err)
		}
		subStore = jsonfile.NewSubscriptionStore(doc)
		pollStore = jsonfile.NewPollStore(doc)
		usageStore = jsonfile.NewUsageLogStore(doc)
	}

	// ---- Queue feed ----
	feed := queuefeed.NewHTTPSource(cfg.Queue.FeedURL, cfg.Queue.NumberField, cfg.Queue.FetchTimeout, logger)
	source := queuefeed.NewCachedSource(feed, cfg.Queue.CacheTTL)

	// ---- Redis (optional) ----
	var rateLimiter *red.RateLimiter
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer redisClient.Close()
		rateLimiter = red.NewRateLimiter(redisClient)
	} else {
		logger.Warn().Msg("redis.url not set; chat rate limiting disabled")
	}

	// ---- AI adapter (OpenAI -> Gemini) ----
	var ai adapter.AIServiceAdapter
	if cfg.AI.OpenAIKey != "" {
		ai, err = aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.DefaultModel, cfg.AI.MaxOutTokens)
		if err != nil {
			log.Fatalf("openai adapter: %v", err)
		}
		logger.Info().Str("model", cfg.AI.DefaultModel).Msg("AI adapter: OpenAI")
	} else if cfg.AI.GeminiKey != "" {
		ai, err = aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, cfg.AI.DefaultModel, cfg.AI.MaxOutTokens)
		if err != nil {
			log.Fatalf("gemini adapter: %v", err)
		}
		logger.Info().Str("model", cfg.AI.DefaultModel).Msg("AI adapter: Gemini")
	} else {
		log.Fatalf("no AI provider configured: set ai.openai_key or ai.gemini_key in %s", *cfgPath)
	}

	persona := ""
	if cfg.AI.PersonaFile != "" {
		b, err := os.ReadFile(cfg.AI.PersonaFile)
		if err != nil {
			log.Fatalf("persona: %v", err)
		}
		persona = strings.TrimSpace(string(b))
	}

	// ---- Telegram transport ----
	botAPI, err := tgbotapi.NewBotAPI(cfg.Bot.Token)
	if err != nil {
		log.Fatalf("telegram: %v", err)
	}
	sender := tele.NewSender(botAPI, logger)

	// ---- Use cases ----
	subUC := usecase.NewSubscriptionUseCase(subStore, source, cfg.Queue.MinNumber, cfg.Queue.MaxNumber, logger)
	watchUC := usecase.NewWatchUseCase(subStore, source, sender, cfg.Queue.WatchExpiry, logger)
	chatUC := usecase.NewChatUseCase(ai, usageStore, rateLimiter, persona, cfg.AI.DefaultModel, cfg.AI.RateLimit, cfg.AI.RateWindow, logger)
	pollUC := usecase.NewPollUseCase(pollStore, sender, cfg.Poll.MaxQuantity, logger)

	// ---- Facade + inbound bot ----
	facade := application.NewBotFacade(subUC, chatUC, pollUC, cfg.Poll.RamenItems)
	botAdapter, err := tele.NewRealBotAdapter(botAPI, &cfg.Bot, facade, sender, logger)
	if err != nil {
		log.Fatalf("telegram adapter: %v", err)
	}
	go func() {
		if err := botAdapter.StartPolling(ctx); err != nil {
			logger.Info().Err(err).Msg("telegram polling stopped")
		}
	}()

	// ---- Watch worker ----
	worker := sched.NewWatchWorker(cfg.Queue.TickInterval, watchUC, logger)
	go func() { _ = worker.Run(ctx) }()

	// ---- Scheduled ramen poll (optional) ----
	if cfg.Poll.RamenCron != "" {
		scheduler, err := sched.NewPollScheduler(cfg.Poll.RamenCron, cfg.Poll.RamenChatID, facade, logger)
		if err != nil {
			log.Fatalf("poll scheduler: %v", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	// ---- Admin HTTP server ----
	auth := web.NewAuthManager(cfg.Admin.JWTSecret, !cfg.Runtime.Dev, cfg.Admin.SessionTTL)
	srv := web.NewServer(subUC, pollUC, chatUC, auth, cfg.Admin.APIKey, logger)
	server := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Admin.Port), Handler: srv.Router()}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("admin server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("admin server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()
	_ = server.Close()
}
