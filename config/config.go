package config

import (
	"os"
	"strconv"
	"time"

	"github.com/kamilkurczyna/okazje-bot/pkg/errors"
)

// Config represents the application configuration
type Config struct {
	// Telegram configuration
	TelegramToken string
	ChatID        string

	// Anthropic configuration
	AnthropicAPIKey string
	AnthropicModel  string

	// Scan configuration
	ScanInterval  time.Duration
	ScanDelay     time.Duration
	MaxPrice      float64
	MinMarginPct  int
	MaxAlerts     int
	FirstScanWait time.Duration

	// Persistence configuration
	SeenBackend  string // "file" or "redis"
	DataFile     string
	KeywordsFile string
	RedisAddr    string
	RedisDB      int

	// Memcache configuration (optional host-cooldown cache)
	MemcacheAddr string

	// HTTP configuration
	HTTPTimeout time.Duration

	// Search URLs for discovery-capable platforms
	SprzedajemySearchURL string
	GratkaSearchURL      string

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	scanInterval, _ := strconv.Atoi(getEnv("SCAN_INTERVAL", "30"))
	scanDelay, _ := strconv.Atoi(getEnv("SCAN_DELAY_SECONDS", "2"))
	maxPrice, _ := strconv.ParseFloat(getEnv("MAX_PRICE", "550"), 64)
	minMargin, _ := strconv.Atoi(getEnv("MIN_MARGIN", "200"))
	maxAlerts, _ := strconv.Atoi(getEnv("MAX_ALERTS", "10"))
	httpTimeout, _ := strconv.Atoi(getEnv("HTTP_TIMEOUT_SECONDS", "15"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	return Config{
		TelegramToken:        os.Getenv("TELEGRAM_TOKEN"),
		ChatID:               os.Getenv("CHAT_ID"),
		AnthropicAPIKey:      os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:       getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		ScanInterval:         time.Duration(scanInterval) * time.Minute,
		ScanDelay:            time.Duration(scanDelay) * time.Second,
		MaxPrice:             maxPrice,
		MinMarginPct:         minMargin,
		MaxAlerts:            maxAlerts,
		FirstScanWait:        time.Minute,
		SeenBackend:          getEnv("SEEN_BACKEND", "file"),
		DataFile:             getEnv("DATA_FILE", "okazje_data.json"),
		KeywordsFile:         getEnv("KEYWORDS_FILE", "keywords.json"),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:              redisDB,
		MemcacheAddr:         os.Getenv("MEMCACHE_ADDR"),
		HTTPTimeout:          time.Duration(httpTimeout) * time.Second,
		SprzedajemySearchURL: getEnv("SPRZEDAJEMY_SEARCH_URL", "https://sprzedajemy.pl/szukaj"),
		GratkaSearchURL:      getEnv("GRATKA_SEARCH_URL", "https://gratka.pl/szukaj"),
		Environment:          getEnv("OKAZJE_ENVIRONMENT", "development"),
	}
}

// Validate checks that required credentials are present.
// Missing credentials at startup is the only fatal condition.
func (c Config) Validate() error {
	if c.TelegramToken == "" {
		return errors.NewConfiguration("TELEGRAM_TOKEN is required", nil)
	}
	if c.AnthropicAPIKey == "" {
		return errors.NewConfiguration("ANTHROPIC_API_KEY is required", nil)
	}
	if c.SeenBackend != "file" && c.SeenBackend != "redis" {
		return errors.NewConfiguration("SEEN_BACKEND must be 'file' or 'redis'", nil)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
