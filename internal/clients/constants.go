package clients

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"
)

const (
	MAX_RETRIES     = 5
	INITIAL_BACKOFF = 1 * time.Second
	MAX_BACKOFF     = 32 * time.Second
	USER_AGENT      = "confessit-client/1.0 (+https://github.com/spacesedan/confessit)"

	// Reddit allows 100 OAuth requests per minute.
	REDDIT_REQUEST_INTERVAL   = 600 * time.Millisecond
	REDDIT_REQUEST_BURST      = 5
	TELEGRAM_REQUEST_INTERVAL = 1 * time.Second
	TELEGRAM_REQUEST_BURST    = 3
)

// ErrSourceUnavailable wraps non-retryable or exhausted responses from a
// remote confession source.
var ErrSourceUnavailable = errors.New("confession source unavailable")

func nextBackoff(backoff, max time.Duration) time.Duration {
	backoff *= 2
	if backoff > max {
		backoff = max
	}
	return backoff
}

func newLimiter(interval time.Duration, burst int) *rate.Limiter {
	return rate.NewLimiter(rate.Every(interval), burst)
}

// waitLimiter blocks until limiter admits one request. A nil limiter never
// blocks.
func waitLimiter(ctx context.Context, limiter *rate.Limiter) error {
	if limiter == nil {
		return nil
	}
	return limiter.Wait(ctx)
}
