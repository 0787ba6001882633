package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spacesedan/confessit/internal/metrics"
)

const (
	HEALTHCHECK_TIMER   = 60 * time.Second
	HEALTHCHECK_TIMEOUT = 10 * time.Second
)

// Pinger is implemented by confession sources that can cheaply check they are
// reachable.
type Pinger interface {
	Name() string
	Ping(ctx context.Context) error
}

// CheckSource pings source once and records the outcome in healthy. A ping
// that takes longer than timeout counts as unreachable.
func CheckSource(ctx context.Context, source Pinger, healthy *atomic.Bool, timeout time.Duration) bool {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := source.Ping(pingCtx)
	isHealthy := err == nil
	wasHealthy := healthy.Swap(isHealthy)
	metrics.SourceReachable.WithLabelValues(source.Name()).Set(metrics.BoolGauge(isHealthy))

	if !isHealthy {
		slog.Warn("[HealthCheck] Source is unreachable",
			slog.String("source", source.Name()),
			slog.String("error", err.Error()))
	} else if !wasHealthy {
		slog.Info("[HealthCheck] Source is reachable again", slog.String("source", source.Name()))
	}
	return isHealthy
}

// MonitorSourceHealth checks source immediately and then every interval until
// ctx is done.
func MonitorSourceHealth(ctx context.Context, clock clockwork.Clock, source Pinger, healthy *atomic.Bool, interval time.Duration) {
	if interval <= 0 {
		interval = HEALTHCHECK_TIMER
	}
	timeout := min(interval, HEALTHCHECK_TIMEOUT)
	ticker := clock.NewTicker(interval)
	defer ticker.Stop()

	CheckSource(ctx, source, healthy, timeout)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			CheckSource(ctx, source, healthy, timeout)
		}
	}
}
