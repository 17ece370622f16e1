// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/livepoll/models"
	"github.com/danielhkuo/livepoll/service"
	"github.com/danielhkuo/livepoll/testutil"
)

// TestConcurrentVotes verifies that many participants voting at once are all
// recorded exactly once.
func TestConcurrentVotes(t *testing.T) {
	env := newTestEnv(t, models.TypeGeneral, 1)
	h := NewVotingHandler(env.svc)
	env.start(t)

	numVoters := 20
	var created atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numVoters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			option := fmt.Sprintf("q1-%c", 'a'+i%3)
			w := serve(h.CastVote, "POST", "/polls/poll-1/votes",
				models.CastVoteRequest{QuestionID: "q1", OptionID: option},
				env.participant(fmt.Sprintf("voter-%02d", i)))
			if w.Code == http.StatusCreated {
				created.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(numVoters), created.Load())

	tl, err := env.svc.GetTally(t.Context(), testutil.PollID, "q1", env.controller()["X-Controller-Key"])
	require.NoError(t, err)
	assert.Equal(t, numVoters, tl.Total)
}

// TestConcurrentDuplicateVotes verifies that one participant submitting from
// several devices at once ends up with exactly one vote, and that every
// request is answered as a success.
func TestConcurrentDuplicateVotes(t *testing.T) {
	env := newTestEnv(t, models.TypeGeneral, 1)
	h := NewVotingHandler(env.svc)
	env.start(t)

	attempts := 10
	var recorded, duplicates, failed atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			option := fmt.Sprintf("q1-%c", 'a'+i%3)
			w := serve(h.CastVote, "POST", "/polls/poll-1/votes",
				models.CastVoteRequest{QuestionID: "q1", OptionID: option}, env.participant("alice"))

			var resp models.CastVoteResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				failed.Add(1)
				return
			}
			switch {
			case w.Code == http.StatusCreated && resp.Status == service.VoteRecorded:
				recorded.Add(1)
			case w.Code == http.StatusOK && resp.Status == service.VoteAlreadyVoted:
				duplicates.Add(1)
			default:
				failed.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), recorded.Load())
	assert.Equal(t, int32(attempts-1), duplicates.Load())
	assert.Zero(t, failed.Load())

	tl, err := env.svc.GetTally(t.Context(), testutil.PollID, "q1", env.controller()["X-Controller-Key"])
	require.NoError(t, err)
	assert.Equal(t, 1, tl.Total)
}

// TestConcurrentAdvance verifies that several controllers pressing "next" on the
// same state move the session exactly one step.
func TestConcurrentAdvance(t *testing.T) {
	env := newTestEnv(t, models.TypeGeneral, 4)
	h := NewControlHandler(env.svc)
	env.start(t)

	// without auto reveal every applied advance moves to the next question
	skip := false
	agg, err := env.svc.GetPollAggregate(t.Context(), testutil.PollID, "")
	require.NoError(t, err)
	seen := agg.StateVersion

	controllers := 5
	var applied atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < controllers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := serve(h.Advance, "POST", "/polls/poll-1/advance",
				models.AdvanceRequest{AutoReveal: &skip, IfVersion: &seen}, env.controller())
			var res models.TransitionResult
			if w.Code == http.StatusOK && json.Unmarshal(w.Body.Bytes(), &res) == nil && res.Applied {
				applied.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), applied.Load())

	agg, err = env.svc.GetPollAggregate(t.Context(), testutil.PollID, "")
	require.NoError(t, err)
	require.NotNil(t, agg.ActiveQuestionID)
	assert.Equal(t, "q2", *agg.ActiveQuestionID)

	live := 0
	for _, q := range agg.Questions {
		if q.IsLiveActive {
			live++
		}
	}
	assert.Equal(t, 1, live)
}

// TestConcurrentAdvance_WithoutVersion verifies that advances which do not
// say which state they were made against are refused without moving the
// session.
func TestConcurrentAdvance_WithoutVersion(t *testing.T) {
	env := newTestEnv(t, models.TypeGeneral, 3)
	h := NewControlHandler(env.svc)
	env.start(t)

	controllers := 2
	var refused atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < controllers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := serve(h.Advance, "POST", "/polls/poll-1/advance", nil, env.controller())
			if w.Code == http.StatusBadRequest {
				refused.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(controllers), refused.Load())

	agg, err := env.svc.GetPollAggregate(t.Context(), testutil.PollID, "")
	require.NoError(t, err)
	require.NotNil(t, agg.ActiveQuestionID)
	assert.Equal(t, "q1", *agg.ActiveQuestionID)
	assert.False(t, agg.Questions[0].IsRevealed)
	assert.False(t, agg.Questions[1].IsLiveActive)
}
