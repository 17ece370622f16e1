// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/livepoll/livepoll"
	"github.com/danielhkuo/livepoll/models"
)

// Store is the canonical session state. Every method is safe to retry and
// to call concurrently; at most one question per poll is ever live and a user
// holds at most one vote per question.
type Store interface {
	// Aggregate returns poll + ordered questions/options + votes.
	Aggregate(ctx context.Context, pollID string) (*models.PollAggregate, error)

	// ResolveSlug maps (group, slug) to a poll id.
	ResolveSlug(ctx context.Context, groupID, slug string) (string, error)

	// Transition applies cmd atomically. The returned state is the state
	// after the command, or the unchanged state when cmd fails.
	Transition(ctx context.Context, pollID string, cmd livepoll.Command, now time.Time) (models.LiveState, error)

	// InsertVote records v after checking it against the locked live state.
	InsertVote(ctx context.Context, v models.Vote) error

	// Import writes an externally authored poll. It is the authoring boundary.
	Import(ctx context.Context, agg models.PollAggregate) error

	Close() error
}

// NewVoteID returns a fresh vote id.
func NewVoteID() string {
	return uuid.NewString()
}

// normalize derives live flags and phases and sorts children.
func normalize(agg *models.PollAggregate) {
	sort.SliceStable(agg.Questions, func(i, j int) bool {
		return agg.Questions[i].OrderIndex < agg.Questions[j].OrderIndex
	})
	for i := range agg.Questions {
		q := &agg.Questions[i]
		q.PollID = agg.ID
		q.IsLiveActive = agg.ActiveQuestionID != nil && *agg.ActiveQuestionID == q.ID
		q.Phase = models.PhaseOf(q.IsLiveActive, q.IsRevealed)
		if q.Options == nil {
			q.Options = []models.Option{}
		}
		sort.SliceStable(q.Options, func(a, b int) bool {
			return q.Options[a].OrderIndex < q.Options[b].OrderIndex
		})
	}
	if agg.Questions == nil {
		agg.Questions = []models.Question{}
	}
	if agg.Votes == nil {
		agg.Votes = []models.Vote{}
	}
	sort.SliceStable(agg.Votes, func(i, j int) bool {
		return agg.Votes[i].CreatedAt.Before(agg.Votes[j].CreatedAt)
	})
}

// prepareImport assigns missing ids and timestamps before an import.
func prepareImport(agg *models.PollAggregate) {
	if agg.ID == "" {
		agg.ID = uuid.NewString()
	}
	if agg.Type == "" {
		agg.Type = models.TypeGeneral
	}
	if agg.Status == "" {
		agg.Status = models.StatusDraft
	}
	now := time.Now().UTC()
	if agg.CreatedAt.IsZero() {
		agg.CreatedAt = now
	}
	if agg.UpdatedAt.IsZero() {
		agg.UpdatedAt = agg.CreatedAt
	}
	for i := range agg.Questions {
		q := &agg.Questions[i]
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		q.PollID = agg.ID
		for j := range q.Options {
			o := &q.Options[j]
			if o.ID == "" {
				o.ID = uuid.NewString()
			}
			o.QuestionID = q.ID
		}
	}
	for i := range agg.Votes {
		v := &agg.Votes[i]
		if v.ID == "" {
			v.ID = NewVoteID()
		}
		v.PollID = agg.ID
		if v.CreatedAt.IsZero() {
			v.CreatedAt = now
		}
	}
}

// liveStateOf projects an aggregate onto the transition state.
func liveStateOf(agg *models.PollAggregate) models.LiveState {
	s := models.LiveState{
		PollID:  agg.ID,
		Type:    agg.Type,
		Status:  agg.Status,
		Version: agg.StateVersion,
	}
	if agg.ActiveQuestionID != nil {
		id := *agg.ActiveQuestionID
		s.ActiveQuestionID = &id
	}
	for _, q := range agg.Questions {
		s.Questions = append(s.Questions, models.QuestionState{
			ID:          q.ID,
			OrderIndex:  q.OrderIndex,
			Revealed:    q.IsRevealed,
			ActivatedAt: q.ActivatedAt,
		})
	}
	return s
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
