package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	PostgresURL          string
	Port                 string
	LogLevel             logrus.Level
	QuoteTTL             time.Duration
	QuoteTimeout         time.Duration
	QuoteStaleMaxAge     time.Duration
	QuoteRefreshInterval time.Duration
	QuoteConcurrency     int
	YahooBaseURL         string
}

// Load reads configuration from the environment. A .env file is loaded if
// present. Invalid values fall back to defaults with a warning.
func Load(log *logrus.Logger) Config {
	// Missing .env is expected in production.
	_ = godotenv.Load()

	return Config{
		PostgresURL:          os.Getenv("POSTGRES_URL"),
		Port:                 envOrDefault("PORT", "8080"),
		LogLevel:             envLevel(log, "LOG_LEVEL", logrus.DebugLevel),
		QuoteTTL:             envDuration(log, "QUOTE_TTL", 60*time.Second),
		QuoteTimeout:         envDuration(log, "QUOTE_TIMEOUT", 5*time.Second),
		QuoteStaleMaxAge:     envDuration(log, "QUOTE_STALE_MAX", 24*time.Hour),
		QuoteRefreshInterval: envDuration(log, "QUOTE_REFRESH_INTERVAL", time.Hour),
		QuoteConcurrency:     envInt(log, "QUOTE_CONCURRENCY", 8),
		YahooBaseURL:         envOrDefault("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(log *logrus.Logger, key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Warnf("invalid %s=%q, using %d", key, v, def)
		return def
	}
	return n
}

// envDuration accepts Go durations ("90s") or bare seconds ("90").
func envDuration(log *logrus.Logger, key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		log.Warnf("invalid %s=%q, using %s", key, v, def)
		return def
	}
	return d
}

func envLevel(log *logrus.Logger, key string, def logrus.Level) logrus.Level {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	lvl, err := logrus.ParseLevel(v)
	if err != nil {
		log.Warnf("invalid %s=%q, using %s", key, v, def)
		return def
	}
	return lvl
}
