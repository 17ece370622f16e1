// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/livepoll/models"
	"github.com/danielhkuo/livepoll/testutil"
)

func TestGetPoll(t *testing.T) {
	env := newTestEnv(t, models.TypeQuiz, 2)
	h := NewResultsHandler(env.svc)
	env.start(t)

	correctShown := func(agg models.PollAggregate) bool {
		for _, q := range agg.Questions {
			for _, o := range q.Options {
				if o.IsCorrect != nil {
					return true
				}
			}
		}
		return false
	}

	t.Run("participant", func(t *testing.T) {
		w := serve(h.GetPoll, "GET", "/polls/poll-1", nil, env.participant("alice"))
		testutil.AssertStatus(t, w, http.StatusOK)

		var agg models.PollAggregate
		testutil.AssertJSON(t, w, &agg)
		assert.Equal(t, testutil.PollID, agg.ID)
		assert.Equal(t, models.StatusLive, agg.Status)
		require.Len(t, agg.Questions, 2)
		assert.True(t, agg.Questions[0].IsLiveActive)
		assert.Equal(t, models.PhaseLive, agg.Questions[0].Phase)
		assert.False(t, correctShown(agg))
	})

	t.Run("controller", func(t *testing.T) {
		w := serve(h.GetPoll, "GET", "/polls/poll-1", nil, env.controller())
		testutil.AssertStatus(t, w, http.StatusOK)

		var agg models.PollAggregate
		testutil.AssertJSON(t, w, &agg)
		assert.True(t, correctShown(agg))
	})

	t.Run("unknown poll", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/polls/nope", nil, nil)
		w := serveRequest(h.GetPoll, withParams(req, "id", "nope"))
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}

func TestResolveSlug(t *testing.T) {
	env := newTestEnv(t, models.TypeGeneral, 1)
	h := NewResultsHandler(env.svc)

	tests := []struct {
		name       string
		group      string
		slug       string
		wantStatus int
	}{
		{"known", testutil.GroupID, testutil.Slug, http.StatusOK},
		{"other group", "group-2", testutil.Slug, http.StatusNotFound},
		{"unknown slug", testutil.GroupID, "nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("GET", "/groups/"+tt.group+"/polls/"+tt.slug, nil, nil)
			w := serveRequest(h.ResolveSlug, withParams(req, "group", tt.group, "slug", tt.slug))
			testutil.AssertStatus(t, w, tt.wantStatus)

			if tt.wantStatus == http.StatusOK {
				var resp models.ResolveSlugResponse
				testutil.AssertJSON(t, w, &resp)
				assert.Equal(t, testutil.PollID, resp.PollID)
			}
		})
	}
}

func TestGetTally(t *testing.T) {
	env := newTestEnv(t, models.TypeGeneral, 2)
	h := NewResultsHandler(env.svc)
	env.start(t)

	for _, user := range []string{"alice", "bob", "carol"} {
		option := "q1-a"
		if user == "carol" {
			option = "q1-b"
		}
		_, err := env.svc.CastVote(t.Context(), testutil.PollID, user, models.CastVoteRequest{QuestionID: "q1", OptionID: option})
		require.NoError(t, err)
	}

	tallyOf := func(headers map[string]string) (int, models.Tally) {
		w := serve(h.GetTally, "GET", "/polls/poll-1/questions/q1/tally", nil, headers, "qid", "q1")
		var tl models.Tally
		if w.Code == http.StatusOK {
			testutil.AssertJSON(t, w, &tl)
		}
		return w.Code, tl
	}

	code, _ := tallyOf(env.participant("alice"))
	assert.Equal(t, http.StatusUnauthorized, code, "participants must not see the distribution before reveal")

	code, tl := tallyOf(env.controller())
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 3, tl.Total)
	require.Len(t, tl.Options, 3)
	assert.Equal(t, 2, tl.Options[0].Count)
	assert.Equal(t, 1, tl.Options[1].Count)
	assert.Equal(t, 0, tl.Options[2].Count)

	_, err := env.svc.Reveal(t.Context(), testutil.PollID, env.controller()["X-Controller-Key"], "q1", nil)
	require.NoError(t, err)

	code, tl = tallyOf(env.participant("alice"))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 3, tl.Total)

	t.Run("unknown question", func(t *testing.T) {
		w := serve(h.GetTally, "GET", "/polls/poll-1/questions/q9/tally", nil, env.controller(), "qid", "q9")
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}

func TestGetLeaderboard(t *testing.T) {
	t.Run("quiz", func(t *testing.T) {
		env := newTestEnv(t, models.TypeQuiz, 1)
		h := NewResultsHandler(env.svc)
		env.start(t)

		_, err := env.svc.CastVote(t.Context(), testutil.PollID, "alice", models.CastVoteRequest{QuestionID: "q1", OptionID: "q1-a"})
		require.NoError(t, err)
		_, err = env.svc.CastVote(t.Context(), testutil.PollID, "bob", models.CastVoteRequest{QuestionID: "q1", OptionID: "q1-b"})
		require.NoError(t, err)

		w := serve(h.GetLeaderboard, "GET", "/polls/poll-1/leaderboard", nil, env.controller())
		testutil.AssertStatus(t, w, http.StatusOK)

		var lb models.Leaderboard
		testutil.AssertJSON(t, w, &lb)
		require.Len(t, lb.Entries, 2)
		assert.Equal(t, "alice", lb.Entries[0].UserID)
		assert.Equal(t, 1, lb.Entries[0].Score)
		assert.Equal(t, "1st", lb.Entries[0].RankLabel)
		assert.Equal(t, "bob", lb.Entries[1].UserID)
		assert.Equal(t, 0, lb.Entries[1].Score)
		assert.Equal(t, 1, lb.MaxScore)
	})

	t.Run("general poll", func(t *testing.T) {
		env := newTestEnv(t, models.TypeGeneral, 1)
		h := NewResultsHandler(env.svc)

		w := serve(h.GetLeaderboard, "GET", "/polls/poll-1/leaderboard", nil, nil)
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})
}
