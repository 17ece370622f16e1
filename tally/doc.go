// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package tally computes vote counts and quiz leaderboards from an aggregate.

Everything here is a pure function of a models.PollAggregate; nothing is
cached.

# Counts

	t, err := tally.Count(agg, questionID)

Options come back in display order and include those with zero votes. Share
is a percentage rounded to one decimal.

# Leaderboard

	lb, err := tally.Leaderboard(agg, tally.CorrectOnly{})

Only quiz polls have a leaderboard (livepoll.ErrNotQuiz otherwise). Entries
are ordered by score, then correct answers, then total response time on
correct answers, then user id. Equal score, correct answers and response time
share a rank.

# Scoring

	correct  CorrectOnly    1 point per correct answer
	speed    SpeedBonus     500 + up to 500 decaying over 20s
*/
package tally
