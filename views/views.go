// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package views

import (
	"github.com/danielhkuo/livepoll/models"
	"github.com/danielhkuo/livepoll/tally"
)

// Redact returns a copy of agg in which correct answers and the chosen option
// of every vote are hidden on each question whose results have not been shown
// yet. Votes stay in place so the vote count is still visible.
func Redact(agg *models.PollAggregate) *models.PollAggregate {
	out := *agg
	out.Questions = make([]models.Question, len(agg.Questions))
	hidden := make(map[string]bool, len(agg.Questions))
	for i := range agg.Questions {
		q := &agg.Questions[i]
		out.Questions[i] = publicQuestion(q)
		hidden[q.ID] = !q.IsRevealed
	}
	out.Votes = make([]models.Vote, len(agg.Votes))
	for i, v := range agg.Votes {
		if hidden[v.QuestionID] {
			v.OptionID = ""
		}
		out.Votes[i] = v
	}
	return &out
}

// publicQuestion copies q, dropping is_correct until q is revealed.
func publicQuestion(q *models.Question) models.Question {
	out := *q
	out.Options = make([]models.Option, len(q.Options))
	for i, o := range q.Options {
		if !q.IsRevealed {
			o.IsCorrect = nil
		}
		out.Options[i] = o
	}
	return out
}

// leaderboardOf returns nil when agg has no leaderboard.
func leaderboardOf(agg *models.PollAggregate, scorer tally.Scorer, top int) *models.Leaderboard {
	lb, err := tally.Leaderboard(agg, scorer)
	if err != nil {
		return nil
	}
	lb.Entries = tally.Top(lb, top)
	return &lb
}

func tallyOf(agg *models.PollAggregate, questionID string) *models.Tally {
	t, err := tally.Count(agg, questionID)
	if err != nil {
		return nil
	}
	return &t
}
