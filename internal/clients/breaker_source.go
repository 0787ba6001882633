package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
	"github.com/spacesedan/confessit/internal/metrics"
	"github.com/spacesedan/confessit/internal/models"
	"github.com/spacesedan/confessit/internal/processing"
)

const (
	BREAKER_MIN_REQUESTS  = 3
	BREAKER_FAILURE_RATIO = 0.6
	BREAKER_HALF_OPEN_MAX = 1
	BREAKER_INTERVAL      = 5 * time.Minute
	BREAKER_OPEN_TIMEOUT  = 1 * time.Minute
)

// BreakerSource stops calling a confession source that keeps failing, so a
// dead channel answers immediately instead of after every retry.
type BreakerSource struct {
	source processing.ConfessionSource
	cb     *gobreaker.CircuitBreaker
}

func NewBreakerSource(source processing.ConfessionSource, openTimeout time.Duration) *BreakerSource {
	name := source.Name()
	metrics.SourceBreakerState.WithLabelValues(name).Set(float64(gobreaker.StateClosed))

	return &BreakerSource{
		source: source,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: BREAKER_HALF_OPEN_MAX,
			Interval:    BREAKER_INTERVAL,
			Timeout:     openTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.Requests >= BREAKER_MIN_REQUESTS &&
					float64(counts.TotalFailures)/float64(counts.Requests) >= BREAKER_FAILURE_RATIO
			},
			// A caller giving up is not the source's fault.
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				metrics.SourceBreakerState.WithLabelValues(name).Set(float64(to))
				slog.Warn("[BreakerSource] Circuit breaker state changed",
					slog.String("source", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()))
			},
		}),
	}
}

func (b *BreakerSource) Name() string {
	return b.source.Name()
}

func (b *BreakerSource) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerSource) FetchConfessions(ctx context.Context, limit int) ([]models.Confession, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.source.FetchConfessions(ctx, limit)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("[BreakerSource] %s: %w: %w", b.source.Name(), ErrSourceUnavailable, err)
	}
	if err != nil {
		return nil, err
	}
	confessions, _ := result.([]models.Confession)
	return confessions, nil
}

// Ping probes the wrapped source directly so that recovery is noticed while
// the breaker is open. Sources without a probe are treated as reachable.
func (b *BreakerSource) Ping(ctx context.Context) error {
	if p, ok := b.source.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}
