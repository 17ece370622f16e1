// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/livepoll/cliparse"
	"github.com/danielhkuo/livepoll/feed"
	"github.com/danielhkuo/livepoll/models"
	"github.com/danielhkuo/livepoll/service"
	"github.com/danielhkuo/livepoll/store"
	"github.com/danielhkuo/livepoll/testutil"
)

type testEnv struct {
	cfg    cliparse.Config
	svc    *service.Service
	broker *feed.Broker
}

// newTestEnv imports an open fixture poll with n questions into a memory store.
func newTestEnv(t *testing.T, pollType models.PollType, n int) testEnv {
	t.Helper()

	cfg := testutil.GetTestConfig()
	st := store.NewMemoryStore()
	testutil.ImportPoll(t, st, testutil.PollFixture(pollType, models.StatusOpen, n))

	broker := feed.NewBroker()
	svc := service.New(st, broker, service.Options{
		ControllerSalt:  cfg.ControllerSalt,
		ParticipantSalt: cfg.ParticipantSalt,
		BaseURL:         cfg.BaseURL,
	})
	return testEnv{cfg: cfg, svc: svc, broker: broker}
}

func (e testEnv) controller() map[string]string {
	return testutil.ControllerHeaders(e.cfg)
}

func (e testEnv) participant(userID string) map[string]string {
	return testutil.ParticipantHeaders(e.cfg, userID)
}

// start makes q1 live through the service.
func (e testEnv) start(t *testing.T) {
	t.Helper()
	res, err := e.svc.StartSession(context.Background(), testutil.PollID, e.controller()["X-Controller-Key"], nil)
	require.NoError(t, err)
	require.True(t, res.Applied)
}

// withParams attaches chi URL parameters the way the router would.
func withParams(req *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// serve runs h on a request for the fixture poll.
func serve(h http.HandlerFunc, method, path string, body interface{}, headers map[string]string, kv ...string) *httptest.ResponseRecorder {
	req := testutil.MakeRequest(method, path, body, headers)
	return serveRequest(h, withParams(req, append([]string{"id", testutil.PollID}, kv...)...))
}

func serveRequest(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h(w, req)
	return w
}
