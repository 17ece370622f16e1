// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/livepoll/models"
	"github.com/danielhkuo/livepoll/testutil"
)

func dialFeed(t *testing.T, h *FeedHandler, pollID string) (*websocket.Conn, *http.Response, error) {
	t.Helper()

	r := chi.NewRouter()
	r.Get("/polls/{id}/feed", h.Stream)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/polls/" + pollID + "/feed"
	return websocket.DefaultDialer.Dial(url, nil)
}

func readNotification(t *testing.T, conn *websocket.Conn) models.Notification {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	kind, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.TextMessage, kind)

	var n models.Notification
	require.NoError(t, json.Unmarshal(payload, &n))
	return n
}

func TestFeed_StreamsNotifications(t *testing.T) {
	env := newTestEnv(t, models.TypeGeneral, 2)
	h := NewFeedHandler(env.svc)

	conn, _, err := dialFeed(t, h, testutil.PollID)
	require.NoError(t, err)
	defer conn.Close()

	env.start(t)
	n := readNotification(t, conn)
	assert.Equal(t, testutil.PollID, n.PollID)
	assert.Equal(t, models.KindQuestion, n.Kind)
	assert.NotZero(t, n.Seq)

	_, err = env.svc.CastVote(t.Context(), testutil.PollID, "alice", models.CastVoteRequest{QuestionID: "q1", OptionID: "q1-a"})
	require.NoError(t, err)
	n = readNotification(t, conn)
	assert.Equal(t, models.KindVote, n.Kind)
}

func TestFeed_UnknownPoll(t *testing.T) {
	env := newTestEnv(t, models.TypeGeneral, 1)
	h := NewFeedHandler(env.svc)

	_, resp, err := dialFeed(t, h, "nope")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFeed_SendsPings(t *testing.T) {
	env := newTestEnv(t, models.TypeGeneral, 1)
	h := NewFeedHandler(env.svc)
	h.PingInterval = 20 * time.Millisecond

	conn, _, err := dialFeed(t, h, testutil.PollID)
	require.NoError(t, err)
	defer conn.Close()

	pinged := make(chan struct{}, 1)
	conn.SetPingHandler(func(string) error {
		select {
		case pinged <- struct{}{}:
		default:
		}
		return nil
	})

	// control frames are handled while reading
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case <-pinged:
	case <-time.After(2 * time.Second):
		t.Fatal("no ping within 2s")
	}
}

func TestFeed_UnsubscribesOnClose(t *testing.T) {
	env := newTestEnv(t, models.TypeGeneral, 1)
	h := NewFeedHandler(env.svc)

	conn, _, err := dialFeed(t, h, testutil.PollID)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return env.broker.Subscribers(testutil.PollID) == 1 },
		2*time.Second, 10*time.Millisecond)

	conn.Close()

	require.Eventually(t, func() bool { return env.broker.Subscribers(testutil.PollID) == 0 },
		2*time.Second, 10*time.Millisecond)
}
