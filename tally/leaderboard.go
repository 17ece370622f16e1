// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/danielhkuo/livepoll/livepoll"
	"github.com/danielhkuo/livepoll/models"
)

// Leaderboard scores every participant of a quiz. Only questions with at
// least one correct option count; every voter is listed, even with zero
// points. Ties share a rank and the next rank is skipped ("1, 2, 2, 4").
func Leaderboard(agg *models.PollAggregate, scorer Scorer) (models.Leaderboard, error) {
	if agg.Type != models.TypeQuiz {
		return models.Leaderboard{}, errors.Wrapf(livepoll.ErrNotQuiz, "poll %s is %s", agg.ID, agg.Type)
	}
	if scorer == nil {
		scorer = CorrectOnly{}
	}

	type scorable struct {
		q       *models.Question
		correct map[string]bool
	}
	questions := make(map[string]scorable)
	for i := range agg.Questions {
		q := &agg.Questions[i]
		correct := make(map[string]bool)
		for _, o := range q.Options {
			if o.IsCorrect != nil && *o.IsCorrect {
				correct[o.ID] = true
			}
		}
		if len(correct) > 0 {
			questions[q.ID] = scorable{q: q, correct: correct}
		}
	}

	byUser := make(map[string]*models.LeaderboardEntry)
	for _, v := range agg.Votes {
		e, ok := byUser[v.UserID]
		if !ok {
			e = &models.LeaderboardEntry{UserID: v.UserID}
			byUser[v.UserID] = e
		}
		sq, ok := questions[v.QuestionID]
		if !ok {
			continue
		}
		e.Answered++
		if sq.correct[v.OptionID] {
			e.CorrectAnswers++
			e.ResponseTime += Elapsed(sq.q, v)
			e.Score += scorer.Score(sq.q, v, true)
		} else {
			e.Score += scorer.Score(sq.q, v, false)
		}
	}

	entries := make([]models.LeaderboardEntry, 0, len(byUser))
	for _, e := range byUser {
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.CorrectAnswers != b.CorrectAnswers {
			return a.CorrectAnswers > b.CorrectAnswers
		}
		if a.ResponseTime != b.ResponseTime {
			return a.ResponseTime < b.ResponseTime
		}
		return a.UserID < b.UserID
	})
	for i := range entries {
		if i > 0 && tied(entries[i-1], entries[i]) {
			entries[i].Rank = entries[i-1].Rank
		} else {
			entries[i].Rank = i + 1
		}
		entries[i].RankLabel = humanize.Ordinal(entries[i].Rank)
	}

	return models.Leaderboard{
		PollID:   agg.ID,
		Scoring:  scorer.Name(),
		MaxScore: len(questions) * scorer.Max(),
		Entries:  entries,
	}, nil
}

func tied(a, b models.LeaderboardEntry) bool {
	return a.Score == b.Score && a.CorrectAnswers == b.CorrectAnswers && a.ResponseTime == b.ResponseTime
}

// Top returns the first n entries, or all of them when n <= 0.
func Top(lb models.Leaderboard, n int) []models.LeaderboardEntry {
	if n <= 0 || n >= len(lb.Entries) {
		return lb.Entries
	}
	return lb.Entries[:n]
}
