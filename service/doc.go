// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package service is the live-session boundary used by the HTTP handlers.

	svc := service.New(st, broker, service.Options{
		ControllerSalt:  cfg.ControllerSalt,
		ParticipantSalt: cfg.ParticipantSalt,
		BaseURL:         cfg.BaseURL,
		Scorer:          scorer,
	})

# Control plane

StartSession, Advance, Reveal, JumpTo, EndSession and SetStatus require the
group's controller key. Each takes the state version the controller last
saw; it is optional except for Advance, whose repeated call would otherwise
move past a question twice. Commands that no longer match the current state (duplicate clicks, a second
controller tab) return a TransitionResult with Applied false and no error.

# Votes

CastVote reports a duplicate as status "already_voted" rather than an error.
ErrQuestionNotLive means the question moved on; clients refetch.

# Notifications

Every applied transition and recorded vote publishes one notification on the
poll's change feed. Rejected and stale operations publish nothing.
*/
package service
