// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package views

import (
	"github.com/danielhkuo/livepoll/models"
	"github.com/danielhkuo/livepoll/tally"
)

// ParticipantState is what a participant's device should show.
type ParticipantState string

const (
	StateWaiting     ParticipantState = "waiting"
	StateVoting      ParticipantState = "voting"
	StateSubmitted   ParticipantState = "submitted"
	StateResults     ParticipantState = "results"
	StateLeaderboard ParticipantState = "leaderboard"
	StateClosed      ParticipantState = "closed"
)

// ParticipantView is the full render state for one participant.
type ParticipantView struct {
	State          ParticipantState    `json:"state"`
	PollID         string              `json:"poll_id"`
	Title          string              `json:"title"`
	Status         models.PollStatus   `json:"poll_status"`
	Question       *models.Question    `json:"question,omitempty"`
	QuestionNumber int                 `json:"question_number,omitempty"`
	QuestionCount  int                 `json:"question_count"`
	MyVote         *models.Vote        `json:"my_vote,omitempty"`
	Correct        *bool               `json:"correct,omitempty"`
	Tally          *models.Tally       `json:"tally,omitempty"`
	Leaderboard    *models.Leaderboard `json:"leaderboard,omitempty"`
}

// Participant derives userID's view. States are checked in order: closed,
// leaderboard, waiting (nothing live), results (live question revealed),
// submitted (already voted), voting.
func Participant(agg *models.PollAggregate, userID string, scorer tally.Scorer) ParticipantView {
	v := ParticipantView{
		PollID:        agg.ID,
		Title:         agg.Title,
		Status:        agg.Status,
		QuestionCount: len(agg.Questions),
	}

	switch agg.Status {
	case models.StatusClosed:
		v.State = StateClosed
		return v
	case models.StatusLeaderboard:
		v.State = StateLeaderboard
		v.Leaderboard = leaderboardOf(agg, scorer, 0)
		return v
	}

	q, idx := agg.ActiveQuestion()
	if agg.Status != models.StatusLive || q == nil {
		v.State = StateWaiting
		return v
	}

	pq := publicQuestion(q)
	v.Question = &pq
	v.QuestionNumber = idx + 1

	if mine, ok := agg.HasVoted(q.ID, userID); ok {
		v.MyVote = &mine
	}

	switch {
	case q.IsRevealed:
		v.State = StateResults
		v.Tally = tallyOf(agg, q.ID)
		if v.MyVote != nil && agg.Type == models.TypeQuiz {
			v.Correct = correctness(q, v.MyVote.OptionID)
		}
	case v.MyVote != nil:
		v.State = StateSubmitted
	default:
		v.State = StateVoting
	}
	return v
}

// correctness is nil when the question has no correct option.
func correctness(q *models.Question, optionID string) *bool {
	scorable := false
	picked := false
	for _, o := range q.Options {
		if o.IsCorrect != nil && *o.IsCorrect {
			scorable = true
			if o.ID == optionID {
				picked = true
			}
		}
	}
	if !scorable {
		return nil
	}
	return &picked
}
