package clients

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spacesedan/confessit/internal/models"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"
)

const (
	TELEGRAM_SOURCE        = "telegram"
	TELEGRAM_MESSAGE_CLASS = "tgme_widget_message_text"
	TELEGRAM_REPLY_CLASS   = "js-message_reply_text"
)

// TelegramClient reads posts from the public web preview of a channel
// (https://t.me/s/<channel>). The preview is served newest page first and
// older pages are reached with ?before=<message id>.
type TelegramClient struct {
	BaseURL        string
	Channel        string
	Client         *http.Client
	InitialBackoff time.Duration
	Limiter        *rate.Limiter
}

func NewTelegramClient(baseURL, channel string) *TelegramClient {
	return &TelegramClient{
		BaseURL:        strings.TrimRight(baseURL, "/"),
		Channel:        strings.TrimPrefix(channel, "@"),
		Client:         &http.Client{Timeout: 15 * time.Second},
		InitialBackoff: INITIAL_BACKOFF,
		Limiter:        newLimiter(TELEGRAM_REQUEST_INTERVAL, TELEGRAM_REQUEST_BURST),
	}
}

func (tc *TelegramClient) Name() string {
	return TELEGRAM_SOURCE
}

// FetchConfessions returns the text of up to limit of the most recent channel
// posts, newest first. Posts without text, such as bare media, are skipped.
func (tc *TelegramClient) FetchConfessions(ctx context.Context, limit int) ([]models.Confession, error) {
	confessions := make([]models.Confession, 0, limit)
	before := 0

	for len(confessions) < limit {
		page, err := tc.fetchPage(ctx, before)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}

		for i := len(page) - 1; i >= 0 && len(confessions) < limit; i-- {
			if page[i].Text == "" {
				continue
			}
			confessions = append(confessions, page[i].Text)
		}

		oldest := page[0].ID
		if oldest <= 1 || (before != 0 && oldest >= before) {
			break
		}
		before = oldest
	}

	slog.Debug("[TelegramClient] Fetched channel posts",
		slog.String("channel", tc.Channel),
		slog.Int("count", len(confessions)))
	return confessions, nil
}

// Ping checks that the channel preview is reachable.
func (tc *TelegramClient) Ping(ctx context.Context) error {
	_, err := tc.fetchPage(ctx, 0)
	return err
}

func (tc *TelegramClient) pageURL(before int) (string, error) {
	parsedUrl, err := url.Parse(fmt.Sprintf("%s/s/%s", tc.BaseURL, url.PathEscape(tc.Channel)))
	if err != nil {
		return "", fmt.Errorf("[TelegramClient] failed to parse URL: %w", err)
	}
	if before > 0 {
		queryParams := parsedUrl.Query()
		queryParams.Set("before", strconv.Itoa(before))
		parsedUrl.RawQuery = queryParams.Encode()
	}
	return parsedUrl.String(), nil
}

func (tc *TelegramClient) fetchPage(ctx context.Context, before int) ([]models.TelegramMessage, error) {
	pageUrl, err := tc.pageURL(before)
	if err != nil {
		return nil, err
	}

	backoff := tc.InitialBackoff
	for attempt := 1; attempt <= MAX_RETRIES; attempt++ {
		if err := waitLimiter(ctx, tc.Limiter); err != nil {
			return nil, fmt.Errorf("[TelegramClient] rate limiter: %w", err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageUrl, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", USER_AGENT)

		res, err := tc.Client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("[TelegramClient] request failed: %w", err)
		}

		switch {
		case res.StatusCode == http.StatusOK:
			messages, err := ParseChannelPage(res.Body)
			res.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("[TelegramClient] failed to parse channel page: %w", err)
			}
			return messages, nil
		case res.StatusCode == http.StatusNotFound:
			res.Body.Close()
			return nil, fmt.Errorf("[TelegramClient] channel %q not found: %w", tc.Channel, ErrSourceUnavailable)
		case res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= http.StatusInternalServerError:
			_, _ = io.Copy(io.Discard, res.Body)
			res.Body.Close()
			slog.Warn("[TelegramClient] Retrying request",
				slog.Int("status", res.StatusCode),
				slog.Int("attempt", attempt),
				slog.Duration("backoff", backoff))
			if attempt == MAX_RETRIES {
				break
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff = nextBackoff(backoff, MAX_BACKOFF)
		default:
			res.Body.Close()
			return nil, fmt.Errorf("[TelegramClient] unexpected status %d: %w", res.StatusCode, ErrSourceUnavailable)
		}
	}

	return nil, fmt.Errorf("[TelegramClient] max retries reached: %w", ErrSourceUnavailable)
}

// ParseChannelPage extracts the posts of a channel preview page in page order
// (oldest first). Quoted reply previews are ignored.
func ParseChannelPage(r io.Reader) ([]models.TelegramMessage, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var messages []models.TelegramMessage
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if post, ok := attr(n, "data-post"); ok {
				if id, ok := postID(post); ok {
					messages = append(messages, models.TelegramMessage{ID: id, Text: messageText(n)})
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return messages, nil
}

func messageText(post *html.Node) string {
	var body *html.Node
	var find func(n *html.Node)
	find = func(n *html.Node) {
		if body != nil {
			return
		}
		if n.Type == html.ElementNode && hasClass(n, TELEGRAM_MESSAGE_CLASS) && !hasClass(n, TELEGRAM_REPLY_CLASS) {
			body = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			find(c)
		}
	}
	find(post)
	if body == nil {
		return ""
	}

	var sb strings.Builder
	var collect func(n *html.Node)
	collect = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			sb.WriteString(n.Data)
		case n.Type == html.ElementNode && n.Data == "br":
			sb.WriteString("\n")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(body)

	return strings.TrimSpace(sb.String())
}

func postID(post string) (int, bool) {
	idx := strings.LastIndex(post, "/")
	if idx < 0 {
		return 0, false
	}
	id, err := strconv.Atoi(post[idx+1:])
	if err != nil {
		return 0, false
	}
	return id, true
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func hasClass(n *html.Node, class string) bool {
	classes, ok := attr(n, "class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(classes) {
		if c == class {
			return true
		}
	}
	return false
}
