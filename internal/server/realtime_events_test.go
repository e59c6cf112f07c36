package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"knowhere/internal/featureflags"
	"knowhere/internal/models"
	"knowhere/internal/notifications"
	"knowhere/internal/testutil"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testArticle() *models.Article {
	return &models.Article{ID: "art-1", Slug: "hello", Title: "Hello", AuthorID: "user_ada", ClapsCount: 3}
}

func TestEventFor(t *testing.T) {
	s := &Server{}
	ev := s.eventFor(EventClap, testArticle(), "user_bob")

	assert.Equal(t, "clap", ev.Type)
	assert.Equal(t, "art-1", ev.ArticleID)
	assert.Equal(t, "user_bob", ev.ActorID)
	assert.Equal(t, "user_ada", ev.Payload["author_id"])
	assert.Equal(t, 3, ev.Payload["claps_count"])
	assert.False(t, ev.TS.IsZero())
}

func TestPublishEngagement_FlagOffIsNoop(t *testing.T) {
	ts := newTestServer(t)
	ts.featureFlags = featureflags.NewManager("")

	// Without the flag, nothing reaches the hub and nothing panics.
	ts.publishEngagement(context.Background(), ts.eventFor(EventClap, testArticle(), "user_bob"))
	assert.Equal(t, 0, ts.hub.Count())
}

func TestPublishEngagement_LocalHubWithoutRedis(t *testing.T) {
	ts := newTestServer(t)
	require.Nil(t, ts.notifier)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = ts.app.Listener(ln) }()
	t.Cleanup(func() { _ = ts.app.Shutdown() })

	url := "ws://" + ln.Addr().String() + "/api/ws/engagement"
	header := http.Header{"Authorization": []string{"Bearer " + tokenFor(t, "user_ada", "ada")}}
	author, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = author.Close() })

	anon, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = anon.Close() })

	require.Eventually(t, func() bool { return ts.hub.Count() == 2 }, 2*time.Second, 10*time.Millisecond)

	ts.publishEngagement(context.Background(), ts.eventFor(EventClap, testArticle(), "user_bob"))

	channels := func(conn *websocket.Conn, n int) []string {
		t.Helper()
		var got []string
		for range n {
			require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
			_, msg, err := conn.ReadMessage()
			require.NoError(t, err)
			var env notifications.Envelope
			require.NoError(t, json.Unmarshal(msg, &env))
			got = append(got, env.Channel)
		}
		return got
	}

	assert.ElementsMatch(t, []string{"engagement", "personal"}, channels(author, 2))
	assert.Equal(t, []string{"engagement"}, channels(anon, 1))
}

func TestEventJSONShape(t *testing.T) {
	s := &Server{}
	ev := s.eventFor(EventArticlePublished, testArticle(), "user_ada")

	raw, err := json.Marshal(ev)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "article_published", decoded["type"])
	assert.Equal(t, "art-1", decoded["article_id"])
	assert.Contains(t, decoded, "payload")
	assert.Contains(t, decoded, "ts")
}

func TestEngagementStream_RequiresUpgrade(t *testing.T) {
	ts := newTestServer(t)

	status, body := ts.do(t, http.MethodGet, "/api/ws/engagement", "", nil)
	assert.Equal(t, http.StatusUpgradeRequired, status)
	assert.Equal(t, models.CodeValidation, decode[models.ErrorResponse](t, body).Code)
}

func TestEngagementStream_DisabledByFlag(t *testing.T) {
	ts := newTestServer(t)
	ts.featureFlags = featureflags.NewManager("live_engagement=off")

	status, _ := ts.do(t, http.MethodGet, "/api/ws/engagement", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUpdateArticle_FirstPublishBroadcastsOnce(t *testing.T) {
	ts := newTestServer(t)
	testutil.CreateProfile(t, ts.db, "user_ada", "ada")
	draft := testutil.CreateArticle(t, ts.db, "user_ada", "coming-soon", false, time.Now().Add(-time.Hour))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = ts.app.Listener(ln) }()
	t.Cleanup(func() { _ = ts.app.Shutdown() })

	reader, resp, err := websocket.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/api/ws/engagement", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = reader.Close() })
	require.Eventually(t, func() bool { return ts.hub.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	ada := tokenFor(t, "user_ada", "ada")
	patch := func(body string) int {
		t.Helper()
		req, err := http.NewRequest(http.MethodPatch, "http://"+ln.Addr().String()+"/api/articles/"+draft.ID, strings.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+ada)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		return resp.StatusCode
	}

	require.Equal(t, http.StatusOK, patch(`{"published":true}`))

	require.NoError(t, reader.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := reader.ReadMessage()
	require.NoError(t, err)
	var env notifications.Envelope
	require.NoError(t, json.Unmarshal(msg, &env))
	var ev notifications.Event
	require.NoError(t, json.Unmarshal(env.Event, &ev))
	assert.Equal(t, EventArticlePublished, ev.Type)
	assert.Equal(t, draft.ID, ev.ArticleID)

	require.Equal(t, http.StatusOK, patch(`{"title":"Retitled","published":true}`))

	require.NoError(t, reader.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	_, _, err = reader.ReadMessage()
	assert.Error(t, err, "later edits are not announced")
}
