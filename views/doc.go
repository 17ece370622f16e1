// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package views derives what each client role renders from a poll aggregate.

Clients hold no state of their own: every notification triggers a refetch and
the view is recomputed from scratch.

# Participant

	waiting      nothing is live (poll not started, between sessions)
	voting       a question is live and the user has not voted
	submitted    the user voted; results not shown yet
	results      the live question was revealed
	leaderboard  quiz finished
	closed       session ended

# Display

The shared screen shows the join URL and code while waiting, only the vote
count while voting, the distribution once revealed, and the top ten of the
leaderboard at the end of a quiz.

Correct answers are hidden from both views until a question is revealed.
*/
package views
