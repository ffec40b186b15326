package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/kamilkurczyna/okazje-bot/config"
	"github.com/kamilkurczyna/okazje-bot/helpers"
	"github.com/kamilkurczyna/okazje-bot/internal/bot"
	"github.com/kamilkurczyna/okazje-bot/internal/scanner"
	"github.com/kamilkurczyna/okazje-bot/internal/scraper"
	"github.com/kamilkurczyna/okazje-bot/internal/search"
	"github.com/kamilkurczyna/okazje-bot/logger"
	"github.com/kamilkurczyna/okazje-bot/services/cache"
	"github.com/kamilkurczyna/okazje-bot/services/classifier"
	"github.com/kamilkurczyna/okazje-bot/services/notify"
	"github.com/kamilkurczyna/okazje-bot/services/store"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Dur("scan_interval", cfg.ScanInterval).
		Str("seen_backend", cfg.SeenBackend).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize services
	services := initializeServices(ctx, &cfg)
	defer services.Cleanup()

	fetcher := helpers.NewFetcher(cfg.HTTPTimeout, services.Cache)
	dispatcher := scraper.NewDispatcher(fetcher)
	searchers := search.NewSearchers(fetcher, cfg.SprzedajemySearchURL, cfg.GratkaSearchURL)

	cls := classifier.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.HTTPTimeout)
	tg := notify.NewClient(cfg.TelegramToken)

	chatID := parseChatID(cfg.ChatID)
	var notifier scanner.Notifier
	if chatID != 0 {
		notifier = notify.NewTelegramNotifier(tg, chatID)
	}

	sc := scanner.New(
		searchers,
		services.Seen,
		services.Keywords,
		notifier,
		cfg.ScanDelay,
		cfg.MaxPrice,
		cfg.MaxAlerts,
	)

	// Scheduled scans need a destination chat
	if chatID != 0 {
		go runScheduledScans(ctx, sc, &cfg)
		log.Info().
			Dur("interval", cfg.ScanInterval).
			Int64("chat_id", chatID).
			Msg("Auto-scan enabled")
	} else {
		log.Warn().Msg("CHAT_ID not set, auto-scan alerts disabled. Use /start to get your ID.")
	}

	// Create and start the bot
	b := bot.New(tg, dispatcher, cls, sc, services.Seen, services.Keywords, cfg)

	botDone := make(chan error, 1)
	go func() {
		log.Info().Msg("Starting update polling")
		botDone <- b.Run(ctx)
	}()

	// Wait for shutdown signal or bot error
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
	case err := <-botDone:
		if err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("Bot exited with error")
		} else {
			log.Info().Msg("Bot exited normally")
		}
	}

	// Graceful shutdown
	log.Info().Msg("Shutting down gracefully...")
}

// Services holds the initialized backing services
type Services struct {
	Cache    cache.CacheService
	Seen     store.SeenStore
	Keywords store.KeywordStore

	redisSeen *store.RedisSeenStore
}

// Cleanup closes services that hold connections
func (s *Services) Cleanup() {
	if s.redisSeen != nil {
		s.redisSeen.Close()
	}
}

// initializeServices wires the cache and the persistence backend
func initializeServices(ctx context.Context, cfg *config.Config) *Services {
	services := &Services{}

	if cfg.MemcacheAddr != "" {
		services.Cache = cache.NewMemcacheService(cfg.MemcacheAddr)
		logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
	} else {
		services.Cache = cache.NewMemoryService()
	}

	switch cfg.SeenBackend {
	case "redis":
		redisSeen := store.NewRedisSeenStore(ctx, cfg.RedisAddr, cfg.RedisDB)
		services.Seen = redisSeen
		services.redisSeen = redisSeen
		logger.Info("Seen-set on Redis at %s (DB: %d)", cfg.RedisAddr, cfg.RedisDB)
	default:
		services.Seen = store.NewFileSeenStore(cfg.DataFile)
		logger.Info("Seen-set in %s", cfg.DataFile)
	}

	services.Keywords = store.NewFileKeywordStore(cfg.KeywordsFile)
	return services
}

// runScheduledScans waits the initial delay, then scans on the
// configured interval until ctx is cancelled
func runScheduledScans(ctx context.Context, sc *scanner.Scanner, cfg *config.Config) {
	log := logger.ForScanner()

	timer := time.NewTimer(cfg.FirstScanWait)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		return
	}

	ticker := time.NewTicker(cfg.ScanInterval)
	defer ticker.Stop()

	for {
		if _, err := sc.Run(ctx); err != nil {
			log.Error().Err(err).Msg("Scheduled scan failed")
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

// parseChatID returns 0 when no valid chat is configured
func parseChatID(raw string) int64 {
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		logger.Default.Warn().Str("chat_id", raw).Msg("CHAT_ID is not numeric, ignoring")
		return 0
	}
	return id
}
