// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the domain, request, and response types shared by
every other package.

# Domain Types

  - Poll: poll metadata, lifecycle status, and the single live question
  - Question: one votable unit, ordered by order_index
  - Option: one answer for a question; is_correct only for quizzes
  - Vote: one participant's immutable choice
  - PollAggregate: poll + ordered questions (with options) + votes

The live question is stored once, as Poll.ActiveQuestionID. Question
exposes IsLiveActive for clients, but it is derived when the aggregate is
loaded, so two live questions cannot be represented.

# State Types

LiveState is the slice of a poll that control transitions read and write:
status, live question, per-question reveal flags, and the state version.

# Status Values

	draft → published → open → live → leaderboard → closed
	closed → open (re-open)
	open ⇄ closed

# Question Phases

PhaseOf(live, revealed) yields pending, live, revealed, or done.
*/
package models
