// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package views

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/livepoll/models"
	"github.com/danielhkuo/livepoll/tally"
)

func boolPtr(b bool) *bool { return &b }

func strPtr(s string) *string { return &s }

// aggregate builds a two-question quiz; option "<q>-a" is correct.
func aggregate(status models.PollStatus, active string, revealed bool) *models.PollAggregate {
	agg := &models.PollAggregate{Poll: models.Poll{
		ID: "p1", Title: "Friday Quiz", Type: models.TypeQuiz, Status: status,
	}}
	if active != "" {
		agg.ActiveQuestionID = strPtr(active)
	}
	for i, qid := range []string{"q1", "q2"} {
		q := models.Question{
			ID:         qid,
			OrderIndex: i,
			Options: []models.Option{
				{ID: qid + "-a", IsCorrect: boolPtr(true)},
				{ID: qid + "-b", IsCorrect: boolPtr(false)},
			},
		}
		if qid == active {
			q.IsLiveActive = true
			q.IsRevealed = revealed
		}
		agg.Questions = append(agg.Questions, q)
	}
	return agg
}

func vote(agg *models.PollAggregate, user, question, option string) {
	agg.Votes = append(agg.Votes, models.Vote{
		ID: user + question, UserID: user, QuestionID: question, OptionID: option,
		CreatedAt: time.Date(2025, 3, 1, 19, 0, 0, 0, time.UTC),
	})
}

func TestParticipant_States(t *testing.T) {
	tests := []struct {
		name     string
		agg      func() *models.PollAggregate
		user     string
		want     ParticipantState
		question string
	}{
		{"closed wins over everything", func() *models.PollAggregate {
			return aggregate(models.StatusClosed, "", false)
		}, "u1", StateClosed, ""},
		{"leaderboard", func() *models.PollAggregate {
			return aggregate(models.StatusLeaderboard, "", false)
		}, "u1", StateLeaderboard, ""},
		{"open without live question", func() *models.PollAggregate {
			return aggregate(models.StatusOpen, "", false)
		}, "u1", StateWaiting, ""},
		{"published", func() *models.PollAggregate {
			return aggregate(models.StatusPublished, "", false)
		}, "u1", StateWaiting, ""},
		{"voting", func() *models.PollAggregate {
			return aggregate(models.StatusLive, "q1", false)
		}, "u1", StateVoting, "q1"},
		{"submitted", func() *models.PollAggregate {
			agg := aggregate(models.StatusLive, "q2", false)
			vote(agg, "u1", "q2", "q2-b")
			return agg
		}, "u1", StateSubmitted, "q2"},
		{"someone else voted", func() *models.PollAggregate {
			agg := aggregate(models.StatusLive, "q2", false)
			vote(agg, "u2", "q2", "q2-b")
			return agg
		}, "u1", StateVoting, "q2"},
		{"results without vote", func() *models.PollAggregate {
			return aggregate(models.StatusLive, "q1", true)
		}, "u1", StateResults, "q1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Participant(tt.agg(), tt.user, tally.CorrectOnly{})
			assert.Equal(t, tt.want, v.State)
			assert.Equal(t, 2, v.QuestionCount)
			if tt.question == "" {
				assert.Nil(t, v.Question)
			} else {
				require.NotNil(t, v.Question)
				assert.Equal(t, tt.question, v.Question.ID)
			}
		})
	}
}

func TestParticipant_HidesAnswerUntilReveal(t *testing.T) {
	agg := aggregate(models.StatusLive, "q1", false)
	vote(agg, "u1", "q1", "q1-b")

	v := Participant(agg, "u1", nil)
	require.Equal(t, StateSubmitted, v.State)
	for _, o := range v.Question.Options {
		assert.Nil(t, o.IsCorrect)
	}
	assert.Nil(t, v.Tally)
	assert.Nil(t, v.Correct)
	require.NotNil(t, v.MyVote)
	assert.Equal(t, "q1-b", v.MyVote.OptionID)

	// the aggregate itself is untouched
	assert.NotNil(t, agg.Questions[0].Options[0].IsCorrect)
}

func TestParticipant_Results(t *testing.T) {
	agg := aggregate(models.StatusLive, "q1", true)
	vote(agg, "u1", "q1", "q1-b")
	vote(agg, "u2", "q1", "q1-a")

	v := Participant(agg, "u1", nil)
	require.Equal(t, StateResults, v.State)
	assert.Equal(t, 1, v.QuestionNumber)
	require.NotNil(t, v.Correct)
	assert.False(t, *v.Correct)
	require.NotNil(t, v.Tally)
	assert.Equal(t, 2, v.Tally.Total)
	assert.True(t, *v.Question.Options[0].IsCorrect)

	v = Participant(agg, "u2", nil)
	require.NotNil(t, v.Correct)
	assert.True(t, *v.Correct)
}

func TestParticipant_Leaderboard(t *testing.T) {
	agg := aggregate(models.StatusLeaderboard, "", false)
	agg.Questions[0].IsRevealed = true
	vote(agg, "u1", "q1", "q1-a")
	vote(agg, "u2", "q1", "q1-b")

	v := Participant(agg, "u2", tally.CorrectOnly{})
	require.NotNil(t, v.Leaderboard)
	require.Len(t, v.Leaderboard.Entries, 2)
	assert.Equal(t, "u1", v.Leaderboard.Entries[0].UserID)

	agg.Type = models.TypeGeneral
	assert.Nil(t, Participant(agg, "u2", nil).Leaderboard)
}

func TestDisplay_Views(t *testing.T) {
	join := Join{URL: "https://live.example.com/groups/g/live/s", Code: "abc123"}

	v := Display(aggregate(models.StatusOpen, "", false), join, nil)
	assert.Equal(t, DisplayWaiting, v.View)
	assert.Equal(t, join.URL, v.URL)
	assert.Equal(t, "abc123", v.Code)

	agg := aggregate(models.StatusLive, "q2", false)
	vote(agg, "u1", "q2", "q2-a")
	vote(agg, "u2", "q1", "q1-a")
	v = Display(agg, join, nil)
	assert.Equal(t, DisplayVoting, v.View)
	assert.Equal(t, 2, v.QuestionNumber)
	assert.Equal(t, 1, v.VoteCount)
	assert.Equal(t, "1 vote", v.VoteCountLabel)
	assert.Nil(t, v.Tally, "no distribution before reveal")
	assert.Nil(t, v.Question.Options[0].IsCorrect)

	agg.Questions[1].IsRevealed = true
	v = Display(agg, join, nil)
	assert.Equal(t, DisplayResults, v.View)
	require.NotNil(t, v.Tally)
	assert.Equal(t, 1, v.Tally.Options[0].Count)

	v = Display(aggregate(models.StatusClosed, "", false), join, nil)
	assert.Equal(t, DisplayClosed, v.View)
}

func TestDisplay_LeaderboardIsTruncated(t *testing.T) {
	agg := aggregate(models.StatusLeaderboard, "", false)
	for i := 0; i < 15; i++ {
		vote(agg, string(rune('a'+i)), "q1", "q1-a")
	}

	v := Display(agg, Join{}, tally.CorrectOnly{})
	assert.Equal(t, DisplayLeaderboard, v.View)
	require.NotNil(t, v.Leaderboard)
	assert.Len(t, v.Leaderboard.Entries, DisplayLeaderboardSize)
}

func TestVoteLabel(t *testing.T) {
	assert.Equal(t, "0 votes", VoteLabel(0))
	assert.Equal(t, "1 vote", VoteLabel(1))
	assert.Equal(t, "1,204 votes", VoteLabel(1204))
}

func TestRedact(t *testing.T) {
	agg := aggregate(models.StatusLive, "q1", true)
	out := Redact(agg)

	assert.NotNil(t, out.Questions[0].Options[0].IsCorrect, "revealed question keeps answers")
	assert.Nil(t, out.Questions[1].Options[0].IsCorrect)
	assert.NotNil(t, agg.Questions[1].Options[0].IsCorrect)
}

func TestRedact_HidesChoicesBeforeReveal(t *testing.T) {
	agg := aggregate(models.StatusLive, "q1", false)
	vote(agg, "u1", "q1", "q1-a")
	vote(agg, "u2", "q1", "q1-b")

	out := Redact(agg)
	require.Len(t, out.Votes, 2, "the vote count stays visible")
	for _, v := range out.Votes {
		assert.Empty(t, v.OptionID)
	}
	assert.Equal(t, "q1-a", agg.Votes[0].OptionID)

	agg.Questions[0].IsRevealed = true
	out = Redact(agg)
	assert.Equal(t, "q1-a", out.Votes[0].OptionID)
	assert.Equal(t, "q1-b", out.Votes[1].OptionID)
}
