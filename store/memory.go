// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/danielhkuo/livepoll/livepoll"
	"github.com/danielhkuo/livepoll/models"
)

type voteKey struct {
	questionID string
	userID     string
}

// MemoryStore keeps every poll in process memory behind one mutex.
type MemoryStore struct {
	mu    sync.RWMutex
	polls map[string]*models.PollAggregate
	votes map[voteKey]struct{}
}

// NewMemoryStore initializes storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		polls: make(map[string]*models.PollAggregate),
		votes: make(map[voteKey]struct{}),
	}
}

func (s *MemoryStore) Aggregate(ctx context.Context, pollID string) (*models.PollAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	agg, ok := s.polls[pollID]
	if !ok {
		return nil, errors.Wrapf(livepoll.ErrNotFound, "poll %s", pollID)
	}
	out := copyAggregate(agg)
	normalize(out)
	return out, nil
}

func (s *MemoryStore) ResolveSlug(ctx context.Context, groupID, slug string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for id, agg := range s.polls {
		if agg.GroupID == groupID && agg.Slug == slug {
			return id, nil
		}
	}
	return "", errors.Wrapf(livepoll.ErrNotFound, "poll %s/%s", groupID, slug)
}

func (s *MemoryStore) Transition(ctx context.Context, pollID string, cmd livepoll.Command, now time.Time) (models.LiveState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	agg, ok := s.polls[pollID]
	if !ok {
		return models.LiveState{}, errors.Wrapf(livepoll.ErrNotFound, "poll %s", pollID)
	}

	before := liveStateOf(agg)
	after := before.Clone()
	if err := cmd.Apply(&after, now.UTC()); err != nil {
		return before, err
	}

	agg.Status = after.Status
	agg.ActiveQuestionID = after.ActiveQuestionID
	agg.StateVersion = after.Version
	agg.UpdatedAt = now.UTC()
	for i, qs := range after.Questions {
		q := &agg.Questions[i]
		q.IsRevealed = qs.Revealed
		q.ActivatedAt = qs.ActivatedAt
	}
	return after, nil
}

func (s *MemoryStore) InsertVote(ctx context.Context, v models.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	agg, ok := s.polls[v.PollID]
	if !ok {
		return errors.Wrapf(livepoll.ErrNotFound, "poll %s", v.PollID)
	}

	key := voteKey{questionID: v.QuestionID, userID: v.UserID}
	if _, exists := s.votes[key]; exists {
		return livepoll.ErrAlreadyVoted
	}

	q := agg.Question(v.QuestionID)
	if q == nil || !hasOption(q, v.OptionID) {
		return errors.Wrapf(livepoll.ErrNotFound, "option %s on question %s", v.OptionID, v.QuestionID)
	}

	state := liveStateOf(agg)
	if err := livepoll.CheckVote(&state, v.QuestionID); err != nil {
		return err
	}

	if v.ID == "" {
		v.ID = NewVoteID()
	}
	v.CreatedAt = v.CreatedAt.UTC()
	agg.Votes = append(agg.Votes, v)
	s.votes[key] = struct{}{}
	return nil
}

func (s *MemoryStore) Import(ctx context.Context, agg models.PollAggregate) error {
	stored := copyAggregate(&agg)
	prepareImport(stored)
	normalize(stored)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.polls[stored.ID]; exists {
		return errors.Errorf("poll with ID %s already exists", stored.ID)
	}
	for id, other := range s.polls {
		if other.GroupID == stored.GroupID && other.Slug == stored.Slug {
			return errors.Errorf("slug %s already used by poll %s", stored.Slug, id)
		}
	}
	// nothing is written until every vote key has been checked
	keys := make(map[voteKey]struct{}, len(stored.Votes))
	for _, v := range stored.Votes {
		key := voteKey{questionID: v.QuestionID, userID: v.UserID}
		_, taken := s.votes[key]
		_, repeated := keys[key]
		if taken || repeated {
			return errors.Wrapf(livepoll.ErrAlreadyVoted, "imported vote %s", v.ID)
		}
		keys[key] = struct{}{}
	}
	for key := range keys {
		s.votes[key] = struct{}{}
	}
	s.polls[stored.ID] = stored
	return nil
}

func (s *MemoryStore) Close() error { return nil }

func hasOption(q *models.Question, optionID string) bool {
	for _, o := range q.Options {
		if o.ID == optionID {
			return true
		}
	}
	return false
}

func copyAggregate(in *models.PollAggregate) *models.PollAggregate {
	out := *in
	if in.ActiveQuestionID != nil {
		id := *in.ActiveQuestionID
		out.ActiveQuestionID = &id
	}
	out.Questions = make([]models.Question, len(in.Questions))
	for i, q := range in.Questions {
		q.Options = append([]models.Option(nil), q.Options...)
		if q.ActivatedAt != nil {
			at := *q.ActivatedAt
			q.ActivatedAt = &at
		}
		out.Questions[i] = q
	}
	out.Votes = append([]models.Vote(nil), in.Votes...)
	return &out
}
