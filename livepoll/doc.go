// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package livepoll holds the live-event state machine as pure functions over
models.LiveState. It performs no I/O; the store runs each Command inside one
atomic read-modify-write.

# Commands

	Start()              first question becomes live
	Advance(autoReveal)  reveal the live question, or move to the next
	Reveal(questionID)   reveal only if questionID is live and unrevealed
	JumpTo(questionID)   make any question live, unrevealed
	End()                poll closed, nothing live
	SetStatus(status)    walk the status table (see CanTransition)

A command that targets state which has already moved on returns an error
matching ErrStale. Callers report it as a no-op: two controller tabs pressing
the same button produce one transition, not an error.

Expect(version) adds an optimistic precondition on LiveState.Version:

	cmd := livepoll.Advance(true).Expect(&observedVersion)

# Votes

CheckVote decides whether a vote may be accepted against the locked state:
the target must be the live, unrevealed question of a poll that is not
closed.
*/
package livepoll
