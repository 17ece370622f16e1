// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package views

import (
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/danielhkuo/livepoll/models"
	"github.com/danielhkuo/livepoll/tally"
)

// DisplayLeaderboardSize is how many entries the projector shows.
const DisplayLeaderboardSize = 10

// DisplayState is what the shared screen should show.
type DisplayState string

const (
	DisplayWaiting     DisplayState = "waiting"
	DisplayVoting      DisplayState = "voting"
	DisplayResults     DisplayState = "results"
	DisplayLeaderboard DisplayState = "leaderboard"
	DisplayClosed      DisplayState = "closed"
)

// Join is how participants find the poll.
type Join struct {
	URL  string `json:"join_url"`
	Code string `json:"join_code"`
}

// DisplayView is the render state of the projector.
type DisplayView struct {
	View DisplayState `json:"view"`
	Join
	PollID         string              `json:"poll_id"`
	Title          string              `json:"title"`
	Description    string              `json:"description,omitempty"`
	Question       *models.Question    `json:"question,omitempty"`
	QuestionNumber int                 `json:"question_number,omitempty"`
	QuestionCount  int                 `json:"question_count"`
	VoteCount      int                 `json:"vote_count"`
	VoteCountLabel string              `json:"vote_count_label,omitempty"`
	Tally          *models.Tally       `json:"tally,omitempty"`
	Leaderboard    *models.Leaderboard `json:"leaderboard,omitempty"`
}

// Display derives the projector view. While a question is being voted on only
// the number of votes is shown; the distribution appears on reveal.
func Display(agg *models.PollAggregate, join Join, scorer tally.Scorer) DisplayView {
	v := DisplayView{
		Join:          join,
		PollID:        agg.ID,
		Title:         agg.Title,
		Description:   agg.Description,
		QuestionCount: len(agg.Questions),
	}

	switch agg.Status {
	case models.StatusClosed:
		v.View = DisplayClosed
		return v
	case models.StatusLeaderboard:
		v.View = DisplayLeaderboard
		v.Leaderboard = leaderboardOf(agg, scorer, DisplayLeaderboardSize)
		return v
	}

	q, idx := agg.ActiveQuestion()
	if agg.Status != models.StatusLive || q == nil {
		v.View = DisplayWaiting
		return v
	}

	pq := publicQuestion(q)
	v.Question = &pq
	v.QuestionNumber = idx + 1
	for _, vote := range agg.Votes {
		if vote.QuestionID == q.ID {
			v.VoteCount++
		}
	}
	v.VoteCountLabel = VoteLabel(v.VoteCount)

	if q.IsRevealed {
		v.View = DisplayResults
		v.Tally = tallyOf(agg, q.ID)
	} else {
		v.View = DisplayVoting
	}
	return v
}

// VoteLabel formats a vote count, e.g. "1 vote" or "1,204 votes".
func VoteLabel(n int) string {
	return humanize.Comma(int64(n)) + " " + english.PluralWord(n, "vote", "")
}
