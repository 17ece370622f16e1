// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package service

import (
	"context"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/danielhkuo/livepoll/auth"
	"github.com/danielhkuo/livepoll/livepoll"
	"github.com/danielhkuo/livepoll/models"
	"github.com/danielhkuo/livepoll/store"
	"github.com/danielhkuo/livepoll/tally"
	"github.com/danielhkuo/livepoll/views"
)

// Feed is the change feed the service publishes to.
type Feed interface {
	Publish(n models.Notification) models.Notification
	Subscribe(ctx context.Context, pollID string) <-chan models.Notification
}

// Options configures a Service.
type Options struct {
	ControllerSalt  string
	ParticipantSalt string
	BaseURL         string
	Scorer          tally.Scorer
	Clock           func() time.Time
}

// Service is the boundary every transport calls: control plane, vote
// ingestion and the derived reads.
type Service struct {
	store store.Store
	feed  Feed
	opts  Options
}

// New builds a service; a nil scorer means CorrectOnly.
func New(st store.Store, feed Feed, opts Options) *Service {
	if opts.Scorer == nil {
		opts.Scorer = tally.CorrectOnly{}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Service{store: st, feed: feed, opts: opts}
}

func (s *Service) now() time.Time { return s.opts.Clock().UTC() }

// Scorer returns the quiz scoring strategy in use.
func (s *Service) Scorer() tally.Scorer { return s.opts.Scorer }

// Authorize checks that key is the controller key of the poll's group.
func (s *Service) Authorize(ctx context.Context, pollID, key string) (*models.PollAggregate, error) {
	agg, err := s.store.Aggregate(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, errors.Wrap(livepoll.ErrUnauthorized, "controller key required")
	}
	if err := auth.ValidateControllerKey(agg.GroupID, key, s.opts.ControllerSalt); err != nil {
		return nil, errors.Wrapf(livepoll.ErrUnauthorized, "poll %s", pollID)
	}
	return agg, nil
}

// IsController reports whether key controls the poll.
func (s *Service) IsController(agg *models.PollAggregate, key string) bool {
	return key != "" && auth.ValidateControllerKey(agg.GroupID, key, s.opts.ControllerSalt) == nil
}

// Participant resolves a participant token to a user id.
func (s *Service) Participant(token string) (string, error) {
	if token == "" {
		return "", errors.Wrap(livepoll.ErrUnauthorized, "participant token required")
	}
	userID, err := auth.VerifyParticipant(token, s.opts.ParticipantSalt)
	if err != nil {
		return "", errors.Wrap(livepoll.ErrUnauthorized, err.Error())
	}
	return userID, nil
}

// NewParticipant issues an anonymous identity.
func (s *Service) NewParticipant() (userID, token string, err error) {
	return auth.NewParticipant(s.opts.ParticipantSalt)
}

// Import loads an externally authored poll and announces it.
func (s *Service) Import(ctx context.Context, agg models.PollAggregate) error {
	if err := s.store.Import(ctx, agg); err != nil {
		return err
	}
	log.Info().Str("poll_id", agg.ID).Str("slug", agg.Slug).Int("questions", len(agg.Questions)).Msg("poll imported")
	return nil
}

// JoinInfo returns the participant join link and code for a poll.
func (s *Service) JoinInfo(agg *models.PollAggregate) views.Join {
	return views.Join{
		URL:  s.opts.BaseURL + "/groups/" + url.PathEscape(agg.GroupID) + "/live/" + url.PathEscape(agg.Slug),
		Code: auth.JoinCode(agg.ID, s.opts.ParticipantSalt),
	}
}

func (s *Service) notify(pollID, kind string) {
	if s.feed == nil {
		return
	}
	s.feed.Publish(models.Notification{PollID: pollID, Kind: kind, At: s.now()})
}
