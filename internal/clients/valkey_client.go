package clients

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spacesedan/confessit/internal/models"
	"github.com/valkey-io/valkey-go"
)

const VALKEY_FETCH_KEY_PREFIX = "confessit:fetch:"

type ValkeyOptions struct {
	Address  string
	Password string
	TLS      bool
	TTL      time.Duration
}

// ValkeyClient caches fetched confession lists so repeated fetches of the
// same source and limit within TTL do not hit the remote channel.
type ValkeyClient struct {
	Client valkey.Client
	opts   ValkeyOptions
	mu     sync.Mutex
}

func (o ValkeyOptions) clientOption() valkey.ClientOption {
	opts := valkey.ClientOption{
		InitAddress: []string{
			o.Address,
		},
		Password:         o.Password,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}

	if o.TLS {
		opts.TLSConfig = &tls.Config{InsecureSkipVerify: false}
	}
	return opts
}

func connect(opts ValkeyOptions) (valkey.Client, error) {
	client, err := valkey.NewClient(opts.clientOption())
	if err != nil {
		return nil, fmt.Errorf("[ValkeyClient] failed to create Valkey: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[ValkeyClient] failed to ping Valkey: %w", err)
	}
	return client, nil
}

func NewValkeyClient(opts ValkeyOptions) (*ValkeyClient, error) {
	client, err := connect(opts)
	if err != nil {
		return nil, err
	}

	slog.Info("[ValkeyClient] Successfully connected to valkey",
		slog.String("address", opts.Address))
	return &ValkeyClient{Client: client, opts: opts}, nil
}

func (vc *ValkeyClient) client() valkey.Client {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	return vc.Client
}

func (vc *ValkeyClient) recreateClient() {
	vc.mu.Lock()
	defer vc.mu.Unlock()

	slog.Warn("[ValkeyClient] Attempting to recreate Valkey client...")
	client, err := connect(vc.opts)
	if err != nil {
		slog.Error("[ValkeyClient] Recreate failed", slog.String("error", err.Error()))
		return
	}

	vc.Client.Close()
	vc.Client = client
	slog.Info("[ValkeyClient] Successfully reconnected to valkey")
}

func (vc *ValkeyClient) Close() {
	vc.client().Close()
}

func FetchKey(key string) string {
	return VALKEY_FETCH_KEY_PREFIX + key
}

// GetConfessions returns the cached list for key. A miss is not an error.
func (vc *ValkeyClient) GetConfessions(ctx context.Context, key string) ([]models.Confession, bool, error) {
	res := vc.DoWithRetry(ctx, func(c valkey.Client) valkey.Completed {
		return c.B().Get().Key(FetchKey(key)).Build()
	}, 3)

	raw, err := res.ToString()
	if valkey.IsValkeyNil(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("[ValkeyClient] get %s: %w", key, err)
	}

	confessions, err := DecodeConfessions(raw)
	if err != nil {
		return nil, false, err
	}
	return confessions, true, nil
}

// StoreConfessions caches confessions under key for the configured TTL.
func (vc *ValkeyClient) StoreConfessions(ctx context.Context, key string, confessions []models.Confession) error {
	payload, err := EncodeConfessions(confessions)
	if err != nil {
		return err
	}

	ttl := vc.opts.TTL
	if ttl < time.Second {
		ttl = time.Second
	}
	res := vc.DoWithRetry(ctx, func(c valkey.Client) valkey.Completed {
		return c.B().Set().Key(FetchKey(key)).Value(payload).ExSeconds(int64(ttl / time.Second)).Build()
	}, 3)
	if err := res.Error(); err != nil {
		return fmt.Errorf("[ValkeyClient] set %s: %w", key, err)
	}

	slog.Debug("[ValkeyClient] Cached confessions",
		slog.String("key", key),
		slog.Int("count", len(confessions)))
	return nil
}

// DoWithRetry builds and runs a command up to retries times. Commands are
// rebuilt on every attempt because a completed command cannot be reused after
// Do and the client may have been recreated in between.
func (vc *ValkeyClient) DoWithRetry(ctx context.Context, build func(valkey.Client) valkey.Completed, retries int) valkey.ValkeyResult {
	var result valkey.ValkeyResult
	for i := 0; i < retries; i++ {
		c := vc.client()
		result = c.Do(ctx, build(c))
		err := result.Error()
		if err == nil || valkey.IsValkeyNil(err) {
			break
		}

		slog.Warn("[ValkeyClient] Do failed",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()))
		if isConnectionError(err) {
			vc.recreateClient()
		}

		select {
		case <-ctx.Done():
			return result
		case <-time.After(250 * time.Millisecond):
		}
	}

	return result
}

func EncodeConfessions(confessions []models.Confession) (string, error) {
	payload, err := json.Marshal(confessions)
	if err != nil {
		return "", fmt.Errorf("[ValkeyClient] failed to encode confessions: %w", err)
	}
	return string(payload), nil
}

func DecodeConfessions(raw string) ([]models.Confession, error) {
	var confessions []models.Confession
	if err := json.Unmarshal([]byte(raw), &confessions); err != nil {
		return nil, fmt.Errorf("[ValkeyClient] failed to decode cached confessions: %w", err)
	}
	return confessions, nil
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "i/o timeout")
}
