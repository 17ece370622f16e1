// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"math"

	"github.com/pkg/errors"

	"github.com/danielhkuo/livepoll/livepoll"
	"github.com/danielhkuo/livepoll/models"
)

// Count returns every option of the question in display order with its vote
// count, including options nobody picked.
func Count(agg *models.PollAggregate, questionID string) (models.Tally, error) {
	q := agg.Question(questionID)
	if q == nil {
		return models.Tally{}, errors.Wrapf(livepoll.ErrNotFound, "question %s", questionID)
	}

	counts := make(map[string]int, len(q.Options))
	total := 0
	for _, v := range agg.Votes {
		if v.QuestionID != questionID {
			continue
		}
		counts[v.OptionID]++
		total++
	}

	t := models.Tally{
		QuestionID: questionID,
		Total:      total,
		Options:    make([]models.OptionCount, 0, len(q.Options)),
	}
	for _, o := range q.Options {
		t.Options = append(t.Options, models.OptionCount{
			OptionID:   o.ID,
			OptionText: o.OptionText,
			Count:      counts[o.ID],
			Share:      share(counts[o.ID], total),
			IsCorrect:  o.IsCorrect,
		})
	}
	return t, nil
}

// share is a percentage rounded to one decimal.
func share(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(n)*1000/float64(total)) / 10
}
