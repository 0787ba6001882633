package clients

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestNextBackoff(t *testing.T) {
	assert.Equal(t, 2*time.Second, nextBackoff(time.Second, MAX_BACKOFF))
	assert.Equal(t, MAX_BACKOFF, nextBackoff(20*time.Second, MAX_BACKOFF))
}

func TestWaitLimiter(t *testing.T) {
	assert.NoError(t, waitLimiter(context.Background(), nil))

	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	assert.NoError(t, waitLimiter(context.Background(), limiter))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, waitLimiter(ctx, limiter), "second request must wait past the deadline")
}
