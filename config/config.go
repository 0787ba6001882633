package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	SOURCE_TELEGRAM = "telegram"
	SOURCE_REDDIT   = "reddit"

	DEFAULT_PORT            = "8080"
	DEFAULT_TELEGRAM_URL    = "https://t.me"
	DEFAULT_FETCH_CACHE_TTL = 300 // seconds
	DEFAULT_FETCH_TIMEOUT   = 30  // seconds
	DEFAULT_HEALTH_INTERVAL = 60  // seconds
)

type Config struct {
	AppEnv   string
	Port     string
	LogLevel string
	Source   string

	TelegramChannel string
	TelegramBaseURL string

	RedditClientID     string
	RedditClientSecret string
	RedditSubreddit    string

	ValkeyAddress  string
	ValkeyPassword string
	ValkeyTLS      bool

	FetchCacheTTL time.Duration
	FetchTimeout  time.Duration

	HealthInterval time.Duration
}

// Load reads the configuration from the environment. Call LoadEnv first if a
// .env file should be honoured.
func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:             AppEnv(),
		Port:               getEnv("PORT", DEFAULT_PORT),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		Source:             strings.ToLower(getEnv("SOURCE", SOURCE_TELEGRAM)),
		TelegramChannel:    strings.TrimPrefix(os.Getenv("TELEGRAM_CHANNEL"), "@"),
		TelegramBaseURL:    getEnv("TELEGRAM_BASE_URL", DEFAULT_TELEGRAM_URL),
		RedditClientID:     os.Getenv("REDDIT_CLIENT_ID"),
		RedditClientSecret: os.Getenv("REDDIT_CLIENT_SECRET"),
		RedditSubreddit:    os.Getenv("REDDIT_SUBREDDIT"),
		ValkeyAddress:      os.Getenv("VALKEY_INIT_ADDRESS"),
		ValkeyPassword:     os.Getenv("VALKEY_PASSWORD"),
		ValkeyTLS:          os.Getenv("VALKEY_TLS") == "true",
	}

	cacheTTL, err := getSeconds("FETCH_CACHE_TTL", DEFAULT_FETCH_CACHE_TTL)
	if err != nil {
		return nil, err
	}
	cfg.FetchCacheTTL = cacheTTL

	timeout, err := getSeconds("FETCH_TIMEOUT", DEFAULT_FETCH_TIMEOUT)
	if err != nil {
		return nil, err
	}
	cfg.FetchTimeout = timeout

	healthInterval, err := getSeconds("HEALTH_CHECK_INTERVAL", DEFAULT_HEALTH_INTERVAL)
	if err != nil {
		return nil, err
	}
	cfg.HealthInterval = healthInterval

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Source {
	case SOURCE_TELEGRAM:
		if c.TelegramChannel == "" {
			return errors.New("[Config] TELEGRAM_CHANNEL is required when SOURCE=telegram")
		}
	case SOURCE_REDDIT:
		if c.RedditSubreddit == "" {
			return errors.New("[Config] REDDIT_SUBREDDIT is required when SOURCE=reddit")
		}
		if c.RedditClientID == "" || c.RedditClientSecret == "" {
			return errors.New("[Config] REDDIT_CLIENT_ID and REDDIT_CLIENT_SECRET are required when SOURCE=reddit")
		}
	default:
		return fmt.Errorf("[Config] unknown SOURCE %q, must be %q or %q", c.Source, SOURCE_TELEGRAM, SOURCE_REDDIT)
	}
	return nil
}

// CacheEnabled reports whether a valkey address was configured.
func (c *Config) CacheEnabled() bool {
	return c.ValkeyAddress != "" && c.FetchCacheTTL > 0
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getSeconds(key string, fallback int) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return time.Duration(fallback) * time.Second, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("[Config] %s must be a non-negative number of seconds, got %q", key, raw)
	}
	return time.Duration(n) * time.Second, nil
}
