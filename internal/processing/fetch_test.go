package processing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spacesedan/confessit/internal/metrics"
	"github.com/spacesedan/confessit/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Fakes ---

type fakeSource struct {
	mu        sync.Mutex
	messages  []models.Confession
	err       error
	block     chan struct{}
	started   chan struct{}
	calls     int
	lastLimit int
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) FetchConfessions(ctx context.Context, limit int) ([]models.Confession, error) {
	f.mu.Lock()
	f.calls++
	f.lastLimit = limit
	f.mu.Unlock()

	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.messages, f.err
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeCache struct {
	mu     sync.Mutex
	data   map[string][]models.Confession
	getErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]models.Confession)}
}

func (c *fakeCache) GetConfessions(ctx context.Context, key string) ([]models.Confession, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *fakeCache) StoreConfessions(ctx context.Context, key string, confessions []models.Confession) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = confessions
	return nil
}

// --- Tests ---

func TestFetcher_InvalidLimit(t *testing.T) {
	source := &fakeSource{}
	f := NewFetcher(source)

	for _, limit := range []int{0, 29, 101} {
		_, err := f.Fetch(context.Background(), limit)
		assert.ErrorIs(t, err, ErrInvalidLimit)
	}
	assert.Zero(t, source.callCount())
}

func TestFetcher_FiltersBlankAndCaps(t *testing.T) {
	messages := []models.Confession{"", "first", "  ", "second"}
	for i := 0; i < 40; i++ {
		messages = append(messages, "more")
	}
	source := &fakeSource{messages: messages}

	got, err := NewFetcher(source).Fetch(context.Background(), 30)
	require.NoError(t, err)

	assert.Len(t, got, 30)
	assert.Equal(t, "first", got[0])
	assert.Equal(t, "second", got[1])
	assert.Equal(t, 30, source.lastLimit)
}

func TestFetcher_EmptyIsNotAnError(t *testing.T) {
	got, err := NewFetcher(&fakeSource{}).Fetch(context.Background(), 30)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFetcher_SourceErrorSurfaced(t *testing.T) {
	boom := errors.New("auth failed")
	_, err := NewFetcher(&fakeSource{err: boom}).Fetch(context.Background(), 50)

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "fake")
}

func TestFetcher_UsesCache(t *testing.T) {
	source := &fakeSource{messages: []models.Confession{"a", "b"}}
	cache := newFakeCache()
	f := NewFetcher(source, WithFetchCache(cache))

	first, err := f.Fetch(context.Background(), 40)
	require.NoError(t, err)
	second, err := f.Fetch(context.Background(), 40)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, source.callCount())
	assert.Contains(t, cache.data, CacheKey("fake", 40))

	_, err = f.Fetch(context.Background(), 41)
	require.NoError(t, err)
	assert.Equal(t, 2, source.callCount())
}

func TestFetcher_CacheFailureFallsBackToSource(t *testing.T) {
	source := &fakeSource{messages: []models.Confession{"a"}}
	cache := newFakeCache()
	cache.getErr = errors.New("connection refused")

	got, err := NewFetcher(source, WithFetchCache(cache)).Fetch(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, []models.Confession{"a"}, got)
}

func TestFetcher_EmptyResultNotCached(t *testing.T) {
	cache := newFakeCache()
	_, err := NewFetcher(&fakeSource{}, WithFetchCache(cache)).Fetch(context.Background(), 30)
	require.NoError(t, err)
	assert.Empty(t, cache.data)
}

func TestFetcher_InProgress(t *testing.T) {
	source := &fakeSource{
		messages: []models.Confession{"a"},
		block:    make(chan struct{}),
		started:  make(chan struct{}),
	}
	f := NewFetcher(source)
	assert.False(t, f.InProgress())

	done := make(chan error, 1)
	go func() {
		_, err := f.Fetch(context.Background(), 30)
		done <- err
	}()

	<-source.started
	assert.True(t, f.InProgress())

	_, err := f.Fetch(context.Background(), 30)
	assert.ErrorIs(t, err, ErrFetchInProgress)

	close(source.block)
	require.NoError(t, <-done)
	assert.False(t, f.InProgress())
}

func TestFetcher_Timeout(t *testing.T) {
	source := &fakeSource{block: make(chan struct{})}
	f := NewFetcher(source, WithFetchTimeout(10*time.Millisecond))

	_, err := f.Fetch(context.Background(), 30)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, f.InProgress())
}

func TestFetcher_RecordsOutcomes(t *testing.T) {
	counter := func(outcome string) float64 {
		return testutil.ToFloat64(metrics.FetchRequestsTotal.WithLabelValues("fake", outcome))
	}
	ok, cached, rejected := counter("ok"), counter("cached"), counter("rejected")

	f := NewFetcher(&fakeSource{messages: []models.Confession{"a"}}, WithFetchCache(newFakeCache()))
	_, err := f.Fetch(context.Background(), 30)
	require.NoError(t, err)
	_, err = f.Fetch(context.Background(), 30)
	require.NoError(t, err)
	_, err = f.Fetch(context.Background(), 5)
	require.ErrorIs(t, err, ErrInvalidLimit)

	assert.Equal(t, ok+1, counter("ok"))
	assert.Equal(t, cached+1, counter("cached"))
	assert.Equal(t, rejected+1, counter("rejected"))
}
