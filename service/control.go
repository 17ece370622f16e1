// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package service

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/danielhkuo/livepoll/livepoll"
	"github.com/danielhkuo/livepoll/metrics"
	"github.com/danielhkuo/livepoll/models"
)

// StartSession activates the first question.
func (s *Service) StartSession(ctx context.Context, pollID, key string, ifVersion *int64) (models.TransitionResult, error) {
	return s.Control(ctx, pollID, key, livepoll.Start().Expect(ifVersion))
}

// Advance reveals or moves past the live question. autoReveal defaults to true.
// version is the state_version the controller last saw; against any other
// version the call is a stale no-op.
func (s *Service) Advance(ctx context.Context, pollID, key string, autoReveal *bool, version int64) (models.TransitionResult, error) {
	reveal := true
	if autoReveal != nil {
		reveal = *autoReveal
	}
	return s.Control(ctx, pollID, key, livepoll.Advance(reveal).Expect(&version))
}

// Reveal shows results for the live question.
func (s *Service) Reveal(ctx context.Context, pollID, key, questionID string, ifVersion *int64) (models.TransitionResult, error) {
	return s.Control(ctx, pollID, key, livepoll.Reveal(questionID).Expect(ifVersion))
}

// JumpTo makes any question live.
func (s *Service) JumpTo(ctx context.Context, pollID, key, questionID string, ifVersion *int64) (models.TransitionResult, error) {
	return s.Control(ctx, pollID, key, livepoll.JumpTo(questionID).Expect(ifVersion))
}

// EndSession closes the poll.
func (s *Service) EndSession(ctx context.Context, pollID, key string, ifVersion *int64) (models.TransitionResult, error) {
	return s.Control(ctx, pollID, key, livepoll.End().Expect(ifVersion))
}

// SetStatus moves the poll along the status table.
func (s *Service) SetStatus(ctx context.Context, pollID, key string, status models.PollStatus, ifVersion *int64) (models.TransitionResult, error) {
	return s.Control(ctx, pollID, key, livepoll.SetStatus(status).Expect(ifVersion))
}

// Control authorizes and applies cmd. A stale command is reported as a
// result with Applied false and a nil error.
func (s *Service) Control(ctx context.Context, pollID, key string, cmd livepoll.Command) (models.TransitionResult, error) {
	if _, err := s.Authorize(ctx, pollID, key); err != nil {
		return models.TransitionResult{}, err
	}

	state, err := s.store.Transition(ctx, pollID, cmd, s.now())
	result := models.TransitionResult{
		Action:           cmd.Action,
		StateVersion:     state.Version,
		Status:           state.Status,
		ActiveQuestionID: state.ActiveQuestionID,
	}

	switch {
	case errors.Is(err, livepoll.ErrStale):
		metrics.TransitionsStale.Add(cmd.Action, 1)
		result.Reason = livepoll.StaleReason(err)
		log.Debug().Str("poll_id", pollID).Str("action", cmd.Action).Str("reason", result.Reason).Msg("stale transition ignored")
		return result, nil
	case err != nil:
		return models.TransitionResult{}, err
	}

	result.Applied = true
	metrics.TransitionsApplied.Add(cmd.Action, 1)

	ev := log.Info().Str("poll_id", pollID).Str("action", cmd.Action).
		Str("status", string(state.Status)).Int64("version", state.Version)
	if state.ActiveQuestionID != nil {
		ev = ev.Str("question_id", *state.ActiveQuestionID)
	}
	ev.Msg("transition applied")

	kind := models.KindQuestion
	if cmd.Action == livepoll.ActionEnd || cmd.Action == livepoll.ActionSetStatus {
		kind = models.KindPoll
	}
	s.notify(pollID, kind)
	return result, nil
}
