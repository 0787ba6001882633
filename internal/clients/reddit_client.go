package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spacesedan/confessit/internal/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const (
	REDDIT_SOURCE          = "reddit"
	REDDIT_AUTH_URL        = "https://www.reddit.com/api/v1/access_token"
	REDDIT_API_URL         = "https://oauth.reddit.com"
	REDDIT_PAGE_MAX        = 100
	REDDIT_REQUEST_TIMEOUT = 15 * time.Second
)

// RedditClient reads the newest posts of a confession subreddit using an
// application-only OAuth token.
type RedditClient struct {
	Config         *clientcredentials.Config
	Client         *http.Client
	APIURL         string
	Subreddit      string
	InitialBackoff time.Duration
	Limiter        *rate.Limiter
	mu             sync.Mutex
}

func NewRedditClient(clientID, clientSecret, subreddit string) *RedditClient {
	oauthConf := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     REDDIT_AUTH_URL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	return &RedditClient{
		Config:         oauthConf,
		Client:         newOAuthClient(oauthConf),
		APIURL:         REDDIT_API_URL,
		Subreddit:      strings.TrimPrefix(subreddit, "r/"),
		InitialBackoff: INITIAL_BACKOFF,
		Limiter:        newLimiter(REDDIT_REQUEST_INTERVAL, REDDIT_REQUEST_BURST),
	}
}

func (rc *RedditClient) Name() string {
	return REDDIT_SOURCE
}

func (rc *RedditClient) RefreshClient() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.Client = newOAuthClient(rc.Config)
}

// newOAuthClient bounds every request, token fetches included, by
// REDDIT_REQUEST_TIMEOUT.
func newOAuthClient(conf *clientcredentials.Config) *http.Client {
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: REDDIT_REQUEST_TIMEOUT})
	client := conf.Client(ctx)
	client.Timeout = REDDIT_REQUEST_TIMEOUT
	return client
}

func (rc *RedditClient) httpClient() *http.Client {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.Client
}

// FetchConfessions returns up to limit of the newest posts, newest first.
func (rc *RedditClient) FetchConfessions(ctx context.Context, limit int) ([]models.Confession, error) {
	confessions := make([]models.Confession, 0, limit)
	after := ""

	for len(confessions) < limit {
		posts, nextAfter, err := rc.FetchNewPosts(ctx, min(limit-len(confessions), REDDIT_PAGE_MAX), after)
		if err != nil {
			return nil, err
		}

		for _, post := range posts {
			if text := post.Confession(); strings.TrimSpace(text) != "" {
				confessions = append(confessions, text)
			}
		}

		if nextAfter == "" || len(posts) == 0 {
			break
		}
		after = nextAfter
	}

	return confessions, nil
}

// Ping checks that the subreddit listing is reachable with the current token.
func (rc *RedditClient) Ping(ctx context.Context) error {
	_, _, err := rc.FetchNewPosts(ctx, 1, "")
	return err
}

// FetchNewPosts fetches one listing page of /r/<subreddit>/new.
func (rc *RedditClient) FetchNewPosts(ctx context.Context, limit int, after string) ([]models.RedditPost, string, error) {
	parsedUrl, err := url.Parse(fmt.Sprintf("%s/r/%s/new", strings.TrimRight(rc.APIURL, "/"), rc.Subreddit))
	if err != nil {
		return nil, "", fmt.Errorf("[RedditClient] Failed to parse URL: %w", err)
	}
	queryParams := parsedUrl.Query()
	queryParams.Add("limit", strconv.Itoa(limit))
	queryParams.Add("raw_json", "1")
	if after != "" {
		queryParams.Add("after", after)
	}
	parsedUrl.RawQuery = queryParams.Encode()

	refreshed := false
	backoff := rc.InitialBackoff

	for attempt := 1; attempt <= MAX_RETRIES; attempt++ {
		if err := waitLimiter(ctx, rc.Limiter); err != nil {
			return nil, "", fmt.Errorf("[RedditClient] rate limiter: %w", err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsedUrl.String(), nil)
		if err != nil {
			return nil, "", err
		}
		req.Header.Set("User-Agent", USER_AGENT)

		resp, err := rc.httpClient().Do(req)
		if err != nil {
			return nil, "", fmt.Errorf("[RedditClient] request failed: %w", err)
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			posts, next, err := decodeListing(resp.Body)
			resp.Body.Close()
			return posts, next, err
		case resp.StatusCode == http.StatusUnauthorized && !refreshed:
			resp.Body.Close()
			slog.Warn("[RedditClient] Token expired - Refreshing and Retrying...")
			rc.RefreshClient()
			refreshed = true
			continue
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			slog.Warn("[RedditClient] Retrying request",
				slog.Int("status", resp.StatusCode),
				slog.Int("attempt", attempt),
				slog.Duration("backoff", backoff))
			if attempt == MAX_RETRIES {
				break
			}
			select {
			case <-ctx.Done():
				return nil, "", ctx.Err()
			case <-time.After(backoff):
			}
			backoff = nextBackoff(backoff, MAX_BACKOFF)
		default:
			resp.Body.Close()
			return nil, "", fmt.Errorf("[RedditClient] unexpected status %d for r/%s: %w",
				resp.StatusCode, rc.Subreddit, ErrSourceUnavailable)
		}
	}

	return nil, "", fmt.Errorf("[RedditClient] Max retries reached request failed: %w", ErrSourceUnavailable)
}

func decodeListing(body io.Reader) ([]models.RedditPost, string, error) {
	var listing models.RedditAPIResponse
	if err := json.NewDecoder(body).Decode(&listing); err != nil {
		return nil, "", fmt.Errorf("[RedditClient] Failed to parse JSON response: %w", err)
	}

	posts := make([]models.RedditPost, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		posts = append(posts, child.Data.ToPost())
	}
	return posts, listing.Data.After, nil
}
