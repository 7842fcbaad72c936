package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

type Config struct {
	CacheTTL       time.Duration
	CacheMaxMB     int
	RequestGap     time.Duration
	MaxRetries     int
	BackoffBase    time.Duration
	RequestTimeout time.Duration
	BatchWorkers   int
	BatchMinGap    time.Duration

	YahooBaseURL   string
	FinnhubBaseURL string
	FinnhubAPIKey  string
	RedisURL       string

	HTTPPort int
	APIKey   string
	LogLevel string

	WarmerEnabled  bool
	WarmerInterval time.Duration

	PopularSymbols []string
	IndexSymbols   []string

	OpenAIAPIKey     string
	OpenAIModel      string
	TelegramBotToken string
}

func Load() *Config {
	cfg := &Config{
		YahooBaseURL:     strings.TrimSpace(os.Getenv("YAHOO_BASE_URL")),
		FinnhubBaseURL:   strings.TrimSpace(os.Getenv("FINNHUB_BASE_URL")),
		FinnhubAPIKey:    strings.TrimSpace(os.Getenv("FINNHUB_API_KEY")),
		RedisURL:         strings.TrimSpace(os.Getenv("REDIS_URL")),
		APIKey:           strings.TrimSpace(os.Getenv("API_KEY")),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
	}

	cfg.CacheTTL = time.Duration(positiveInt("CACHE_TTL_SECS", 300)) * time.Second
	cfg.CacheMaxMB = positiveInt("CACHE_MAX_MB", 64)
	cfg.RequestGap = time.Duration(positiveInt("REQUEST_GAP_MS", 2000)) * time.Millisecond
	cfg.BackoffBase = time.Duration(positiveInt("BACKOFF_BASE_MS", 1000)) * time.Millisecond
	cfg.RequestTimeout = time.Duration(positiveInt("REQUEST_TIMEOUT_SECS", 10)) * time.Second
	cfg.BatchWorkers = positiveInt("BATCH_WORKERS", 4)
	cfg.HTTPPort = positiveInt("HTTP_PORT", 8080)
	cfg.WarmerInterval = time.Duration(positiveInt("WARMER_INTERVAL_SECS", 240)) * time.Second

	cfg.MaxRetries = 5
	if v := strings.TrimSpace(os.Getenv("MAX_RETRIES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}

	// Zero turns cross-symbol spacing off.
	cfg.BatchMinGap = 250 * time.Millisecond
	if v := strings.TrimSpace(os.Getenv("BATCH_MIN_GAP_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.BatchMinGap = time.Duration(n) * time.Millisecond
		}
	}

	if cfg.FinnhubAPIKey == "" {
		log.Warn("FINNHUB_API_KEY not set, fallback quote tier disabled")
	}
	if cfg.TelegramBotToken == "" {
		log.Warn("TELEGRAM_BOT_TOKEN not set")
	}
	if cfg.OpenAIAPIKey == "" {
		log.Warn("OPENAI_API_KEY not set, recommendation narration disabled")
	}

	cfg.OpenAIModel = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4o-mini"
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.WarmerEnabled = strings.EqualFold(strings.TrimSpace(os.Getenv("WARMER_ENABLED")), "true")

	cfg.PopularSymbols = symbolList("POPULAR_SYMBOLS")
	cfg.IndexSymbols = symbolList("INDEX_SYMBOLS")

	return cfg
}

// ApplyLogLevel sets the global logger level, keeping info on bad input.
func (c *Config) ApplyLogLevel() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.Warn("invalid LOG_LEVEL, using info", "value", c.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

func positiveInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Warn("invalid config value, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func symbolList(key string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if s := strings.ToUpper(strings.TrimSpace(part)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
