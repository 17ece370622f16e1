// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package livepoll

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyVoted means (question, user) already has a vote.
	ErrAlreadyVoted = errors.New("already voted")

	// ErrQuestionNotLive means the question is not the live, unrevealed question.
	ErrQuestionNotLive = errors.New("question not live")

	// ErrStale means a control command targeted state that is no longer current.
	// It is reported to callers as a no-op, never as a failure.
	ErrStale = errors.New("stale transition")

	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrNotQuiz           = errors.New("poll is not a quiz")
)

type staleError struct {
	reason string
}

func (e *staleError) Error() string { return "stale transition: " + e.reason }

func (e *staleError) Is(target error) bool { return target == ErrStale }

// Stale returns an ErrStale carrying a human-readable reason.
func Stale(reason string) error {
	return &staleError{reason: reason}
}

// StaleReason extracts the reason from a stale error, or "" if err is not stale.
func StaleReason(err error) string {
	var se *staleError
	if errors.As(err, &se) {
		return se.reason
	}
	return ""
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidTransition, fmt.Sprintf(format, args...))
}

func notFound(what, id string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, what, id)
}
