// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package service

import (
	"context"

	"github.com/pkg/errors"

	"github.com/danielhkuo/livepoll/livepoll"
	"github.com/danielhkuo/livepoll/models"
	"github.com/danielhkuo/livepoll/tally"
	"github.com/danielhkuo/livepoll/views"
)

// GetPollAggregate returns the full poll. While a session can still take
// votes, correct answers of unrevealed questions are only included for the
// controller.
func (s *Service) GetPollAggregate(ctx context.Context, pollID, key string) (*models.PollAggregate, error) {
	agg, err := s.store.Aggregate(ctx, pollID)
	if err != nil {
		return nil, err
	}
	return s.visible(agg, key), nil
}

func (s *Service) visible(agg *models.PollAggregate, key string) *models.PollAggregate {
	if agg.Status != models.StatusOpen && agg.Status != models.StatusLive {
		return agg
	}
	if s.IsController(agg, key) {
		return agg
	}
	return views.Redact(agg)
}

// ResolveSlug maps a group slug pair to a poll id.
func (s *Service) ResolveSlug(ctx context.Context, groupID, slug string) (string, error) {
	return s.store.ResolveSlug(ctx, groupID, slug)
}

// GetTally counts votes on one question. During a live session only the
// controller sees the distribution before the reveal.
func (s *Service) GetTally(ctx context.Context, pollID, questionID, key string) (models.Tally, error) {
	agg, err := s.store.Aggregate(ctx, pollID)
	if err != nil {
		return models.Tally{}, err
	}
	q := agg.Question(questionID)
	if q == nil {
		return models.Tally{}, errors.Wrapf(livepoll.ErrNotFound, "question %s", questionID)
	}
	if agg.Status == models.StatusLive && !q.IsRevealed && !s.IsController(agg, key) {
		return models.Tally{}, errors.Wrap(livepoll.ErrUnauthorized, "results are not revealed yet")
	}
	return tally.Count(agg, questionID)
}

// GetLeaderboard ranks quiz participants. Mid-session, non-controllers are
// scored on revealed questions only.
func (s *Service) GetLeaderboard(ctx context.Context, pollID, key string) (models.Leaderboard, error) {
	agg, err := s.store.Aggregate(ctx, pollID)
	if err != nil {
		return models.Leaderboard{}, err
	}
	return tally.Leaderboard(s.visible(agg, key), s.opts.Scorer)
}

// ParticipantView derives what userID's device shows.
func (s *Service) ParticipantView(ctx context.Context, pollID, userID string) (views.ParticipantView, error) {
	agg, err := s.store.Aggregate(ctx, pollID)
	if err != nil {
		return views.ParticipantView{}, err
	}
	return views.Participant(agg, userID, s.opts.Scorer), nil
}

// DisplayView derives the projector view.
func (s *Service) DisplayView(ctx context.Context, pollID string) (views.DisplayView, error) {
	agg, err := s.store.Aggregate(ctx, pollID)
	if err != nil {
		return views.DisplayView{}, err
	}
	return views.Display(agg, s.JoinInfo(agg), s.opts.Scorer), nil
}

// Subscribe opens the change feed of an existing poll. The channel closes
// when ctx is done.
func (s *Service) Subscribe(ctx context.Context, pollID string) (<-chan models.Notification, error) {
	if _, err := s.store.Aggregate(ctx, pollID); err != nil {
		return nil, err
	}
	if s.feed == nil {
		return nil, errors.New("change feed not configured")
	}
	return s.feed.Subscribe(ctx, pollID), nil
}
