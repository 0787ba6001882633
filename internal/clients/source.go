package clients

import (
	"fmt"
	"log/slog"

	"github.com/spacesedan/confessit/config"
	"github.com/spacesedan/confessit/internal/processing"
)

// NewConfessionSource builds the remote source selected by cfg.Source.
func NewConfessionSource(cfg *config.Config) (processing.ConfessionSource, error) {
	switch cfg.Source {
	case config.SOURCE_TELEGRAM:
		return NewTelegramClient(cfg.TelegramBaseURL, cfg.TelegramChannel), nil
	case config.SOURCE_REDDIT:
		return NewRedditClient(cfg.RedditClientID, cfg.RedditClientSecret, cfg.RedditSubreddit), nil
	default:
		return nil, fmt.Errorf("[Clients] unknown source %q", cfg.Source)
	}
}

// NewFetcher wires the configured source behind a circuit breaker and, when
// enabled, the valkey fetch cache. The returned close function releases the cache connection.
func NewFetcher(cfg *config.Config) (*processing.Fetcher, func(), error) {
	source, err := NewConfessionSource(cfg)
	if err != nil {
		return nil, nil, err
	}

	opts := []processing.FetcherOption{processing.WithFetchTimeout(cfg.FetchTimeout)}
	closeFn := func() {}

	if cfg.CacheEnabled() {
		cache, err := NewValkeyClient(ValkeyOptions{
			Address:  cfg.ValkeyAddress,
			Password: cfg.ValkeyPassword,
			TLS:      cfg.ValkeyTLS,
			TTL:      cfg.FetchCacheTTL,
		})
		if err != nil {
			slog.Warn("[Clients] Fetch cache unavailable, continuing without it",
				slog.String("error", err.Error()))
		} else {
			opts = append(opts, processing.WithFetchCache(cache))
			closeFn = cache.Close
		}
	}

	return processing.NewFetcher(NewBreakerSource(source, BREAKER_OPEN_TIMEOUT), opts...), closeFn, nil
}
