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
	"github.com/danielhkuo/livepoll/store"
)

// Vote statuses reported to participants.
const (
	VoteRecorded     = "recorded"
	VoteAlreadyVoted = "already_voted"
)

// CastVote records userID's answer. A duplicate is reported as a successful
// response with status already_voted; the first vote stands.
func (s *Service) CastVote(ctx context.Context, pollID, userID string, req models.CastVoteRequest) (models.CastVoteResponse, error) {
	if req.QuestionID == "" || req.OptionID == "" {
		return models.CastVoteResponse{}, errors.Wrap(livepoll.ErrNotFound, "question_id and option_id are required")
	}

	v := models.Vote{
		ID:         store.NewVoteID(),
		PollID:     pollID,
		QuestionID: req.QuestionID,
		UserID:     userID,
		OptionID:   req.OptionID,
		CreatedAt:  s.now(),
	}

	err := s.store.InsertVote(ctx, v)
	switch {
	case err == nil:
	case errors.Is(err, livepoll.ErrAlreadyVoted):
		metrics.VotesRejected.Add("already_voted", 1)
		log.Debug().Str("poll_id", pollID).Str("question_id", req.QuestionID).Str("user_id", userID).Msg("duplicate vote absorbed")
		return models.CastVoteResponse{Status: VoteAlreadyVoted}, nil
	case errors.Is(err, livepoll.ErrQuestionNotLive):
		metrics.VotesRejected.Add("question_not_live", 1)
		return models.CastVoteResponse{}, err
	case errors.Is(err, livepoll.ErrNotFound):
		metrics.VotesRejected.Add("not_found", 1)
		return models.CastVoteResponse{}, err
	default:
		return models.CastVoteResponse{}, err
	}

	metrics.VotesRecorded.Add(1)
	log.Info().Str("poll_id", pollID).Str("question_id", req.QuestionID).Str("user_id", userID).Msg("vote cast")
	s.notify(pollID, models.KindVote)
	return models.CastVoteResponse{Status: VoteRecorded, VoteID: v.ID}, nil
}
