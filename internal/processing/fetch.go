package processing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/spacesedan/confessit/internal/metrics"
	"github.com/spacesedan/confessit/internal/models"
)

const (
	MIN_FETCH_LIMIT = 30
	MAX_FETCH_LIMIT = 100
)

var (
	ErrInvalidLimit    = fmt.Errorf("[Fetcher] number of confessions must be between %d and %d", MIN_FETCH_LIMIT, MAX_FETCH_LIMIT)
	ErrFetchInProgress = errors.New("[Fetcher] a fetch is already in progress")
)

// ConfessionSource is a remote channel that confessions can be pulled from.
type ConfessionSource interface {
	Name() string
	// FetchConfessions returns up to limit confessions, newest first.
	FetchConfessions(ctx context.Context, limit int) ([]models.Confession, error)
}

// FetchCache short-circuits repeated fetches of the same source and limit.
type FetchCache interface {
	GetConfessions(ctx context.Context, key string) ([]models.Confession, bool, error)
	StoreConfessions(ctx context.Context, key string, confessions []models.Confession) error
}

// Fetcher runs one blocking fetch at a time against a source.
type Fetcher struct {
	source     ConfessionSource
	cache      FetchCache
	timeout    time.Duration
	inProgress atomic.Bool
}

type FetcherOption func(*Fetcher)

func WithFetchCache(cache FetchCache) FetcherOption {
	return func(f *Fetcher) {
		f.cache = cache
	}
}

func WithFetchTimeout(timeout time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.timeout = timeout
	}
}

func NewFetcher(source ConfessionSource, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{source: source}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func ValidateLimit(limit int) error {
	if limit < MIN_FETCH_LIMIT || limit > MAX_FETCH_LIMIT {
		return ErrInvalidLimit
	}
	return nil
}

// CacheKey identifies a fetch of limit confessions from source.
func CacheKey(source string, limit int) string {
	return fmt.Sprintf("%s:%d", source, limit)
}

// InProgress reports whether a fetch is currently running.
func (f *Fetcher) InProgress() bool {
	return f.inProgress.Load()
}

func (f *Fetcher) Source() ConfessionSource {
	return f.source
}

func (f *Fetcher) SourceName() string {
	return f.source.Name()
}

// Fetch pulls up to limit non-empty confessions from the source. An empty
// result is not an error. Source failures are returned wrapped.
func (f *Fetcher) Fetch(ctx context.Context, limit int) ([]models.Confession, error) {
	name := f.source.Name()
	if err := ValidateLimit(limit); err != nil {
		metrics.FetchRequestsTotal.WithLabelValues(name, "rejected").Inc()
		return nil, err
	}
	if !f.inProgress.CompareAndSwap(false, true) {
		metrics.FetchRequestsTotal.WithLabelValues(name, "rejected").Inc()
		return nil, ErrFetchInProgress
	}
	defer f.inProgress.Store(false)

	start := time.Now()
	key := CacheKey(name, limit)

	if f.cache != nil {
		cached, ok, err := f.cache.GetConfessions(ctx, key)
		switch {
		case err != nil:
			metrics.FetchCacheTotal.WithLabelValues("error").Inc()
			slog.WarnContext(ctx, "[Fetcher] Cache lookup failed, fetching from source",
				slog.String("key", key),
				slog.String("error", err.Error()))
		case ok:
			metrics.FetchCacheTotal.WithLabelValues("hit").Inc()
			metrics.FetchRequestsTotal.WithLabelValues(name, "cached").Inc()
			slog.InfoContext(ctx, "[Fetcher] Serving confessions from cache",
				slog.String("key", key),
				slog.Int("count", len(cached)))
			return cached, nil
		default:
			metrics.FetchCacheTotal.WithLabelValues("miss").Inc()
		}
	}

	fetchCtx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	raw, err := f.source.FetchConfessions(fetchCtx, limit)
	metrics.FetchDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.FetchRequestsTotal.WithLabelValues(name, "error").Inc()
		return nil, fmt.Errorf("[Fetcher] failed to fetch confessions from %s: %w", name, err)
	}
	metrics.FetchRequestsTotal.WithLabelValues(name, "ok").Inc()

	confessions := make([]models.Confession, 0, len(raw))
	for _, c := range raw {
		if strings.TrimSpace(c) == "" {
			continue
		}
		confessions = append(confessions, c)
		if len(confessions) == limit {
			break
		}
	}

	slog.InfoContext(ctx, "[Fetcher] Fetched confessions",
		slog.String("source", name),
		slog.Int("requested", limit),
		slog.Int("count", len(confessions)),
		slog.Duration("duration", time.Since(start)))

	if f.cache != nil && len(confessions) > 0 {
		if err := f.cache.StoreConfessions(ctx, key, confessions); err != nil {
			slog.WarnContext(ctx, "[Fetcher] Failed to cache confessions",
				slog.String("key", key),
				slog.String("error", err.Error()))
		}
	}

	return confessions, nil
}
