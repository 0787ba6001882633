package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func channelPost(id int, body string) string {
	return fmt.Sprintf(`<div class="tgme_widget_message_wrap js-widget_message_wrap">
  <div class="tgme_widget_message js-widget_message" data-post="confessions/%d">
    <div class="tgme_widget_message_bubble">
      <div class="tgme_widget_message_text js-message_text" dir="auto">%s</div>
    </div>
  </div>
</div>`, id, body)
}

func channelPage(posts ...string) string {
	return "<html><body><section class=\"tgme_channel_history\">" + strings.Join(posts, "\n") + "</section></body></html>"
}

func TestParseChannelPage(t *testing.T) {
	page := channelPage(
		channelPost(7, "#Romance<br/>I <b>love</b> my hall &amp; my friends"),
		`<div class="tgme_widget_message js-widget_message" data-post="confessions/8">
		   <a class="tgme_widget_message_reply"><div class="tgme_widget_message_text js-message_reply_text">quoted</div></a>
		   <div class="tgme_widget_message_text js-message_text">actual reply</div>
		 </div>`,
		`<div class="tgme_widget_message js-widget_message" data-post="confessions/9"><div class="photo"></div></div>`,
	)

	messages, err := ParseChannelPage(strings.NewReader(page))
	require.NoError(t, err)
	require.Len(t, messages, 3)

	assert.Equal(t, 7, messages[0].ID)
	assert.Equal(t, "#Romance\nI love my hall & my friends", messages[0].Text)
	assert.Equal(t, "actual reply", messages[1].Text)
	assert.Equal(t, 9, messages[2].ID)
	assert.Empty(t, messages[2].Text)
}

func newTelegramTestClient(url string) *TelegramClient {
	tc := NewTelegramClient(url, "@confessions")
	tc.InitialBackoff = time.Millisecond
	tc.Limiter = rate.NewLimiter(rate.Inf, 1)
	return tc
}

func TestTelegramClient_PaginatesNewestFirst(t *testing.T) {
	// 45 posts, ids 1..45, 20 per page like the real preview.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/s/confessions", r.URL.Path)
		before := 46
		if b := r.URL.Query().Get("before"); b != "" {
			before, _ = strconv.Atoi(b)
		}
		var posts []string
		for id := max(1, before-20); id < before; id++ {
			posts = append(posts, channelPost(id, fmt.Sprintf("post %d", id)))
		}
		fmt.Fprint(w, channelPage(posts...))
	}))
	defer srv.Close()

	got, err := newTelegramTestClient(srv.URL).FetchConfessions(context.Background(), 30)
	require.NoError(t, err)
	require.Len(t, got, 30)
	assert.Equal(t, "post 45", got[0])
	assert.Equal(t, "post 26", got[19])
	assert.Equal(t, "post 16", got[29])
}

func TestTelegramClient_StopsAtChannelStart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("before") != "" {
			fmt.Fprint(w, channelPage())
			return
		}
		fmt.Fprint(w, channelPage(channelPost(1, "first"), channelPost(2, ""), channelPost(3, "third")))
	}))
	defer srv.Close()

	got, err := newTelegramTestClient(srv.URL).FetchConfessions(context.Background(), 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"third", "first"}, got)
}

func TestTelegramClient_EmptyChannel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, channelPage())
	}))
	defer srv.Close()

	got, err := newTelegramTestClient(srv.URL).FetchConfessions(context.Background(), 30)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTelegramClient_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := newTelegramTestClient(srv.URL).FetchConfessions(context.Background(), 30)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestTelegramClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, channelPage(channelPost(1, "only")))
	}))
	defer srv.Close()

	got, err := newTelegramTestClient(srv.URL).FetchConfessions(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, []string{"only"}, got)
	assert.Equal(t, int32(2), calls.Load())
}

func TestTelegramClient_GivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTelegramTestClient(srv.URL).FetchConfessions(context.Background(), 30)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.Equal(t, int32(MAX_RETRIES), calls.Load())
}

func TestTelegramClient_Ping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, channelPage())
	}))
	defer srv.Close()
	assert.NoError(t, newTelegramTestClient(srv.URL).Ping(context.Background()))

	missing := httptest.NewServer(http.NotFoundHandler())
	defer missing.Close()
	assert.ErrorIs(t, newTelegramTestClient(missing.URL).Ping(context.Background()), ErrSourceUnavailable)
}
