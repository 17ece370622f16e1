// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package livepoll

import (
	"time"

	"github.com/danielhkuo/livepoll/models"
)

// Action names reported in TransitionResult.Action.
const (
	ActionStart     = "start"
	ActionAdvance   = "advance"
	ActionReveal    = "reveal"
	ActionJump      = "jump"
	ActionEnd       = "end"
	ActionSetStatus = "set_status"
)

// transitions is the complete SetStatus table.
var transitions = map[models.PollStatus][]models.PollStatus{
	models.StatusDraft:       {models.StatusPublished},
	models.StatusPublished:   {models.StatusOpen},
	models.StatusOpen:        {models.StatusLive, models.StatusClosed},
	models.StatusLive:        {models.StatusLeaderboard, models.StatusClosed},
	models.StatusLeaderboard: {models.StatusClosed},
	models.StatusClosed:      {models.StatusOpen},
}

// CanTransition reports whether SetStatus may move a poll from one status to another.
func CanTransition(from, to models.PollStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Command is one control-plane operation. Apply mutates a locked LiveState;
// a returned error means the state must be discarded.
type Command struct {
	Action    string
	IfVersion *int64
	apply     func(s *models.LiveState, now time.Time) error
}

// Expect makes the command a stale no-op unless the poll is still at version.
func (c Command) Expect(version *int64) Command {
	c.IfVersion = version
	return c
}

// Apply runs the command against s. On success the state version is bumped.
func (c Command) Apply(s *models.LiveState, now time.Time) error {
	if c.IfVersion != nil && *c.IfVersion != s.Version {
		return Stale("poll state changed since it was read")
	}
	if err := c.apply(s, now); err != nil {
		return err
	}
	s.Version++
	return nil
}

// Start activates the first question if nothing is live.
func Start() Command {
	return Command{Action: ActionStart, apply: start}
}

// Advance reveals the live question (autoReveal) or moves to the next one.
func Advance(autoReveal bool) Command {
	return Command{Action: ActionAdvance, apply: func(s *models.LiveState, now time.Time) error {
		i := activeIndex(s)
		if i < 0 {
			return start(s, now)
		}

		if !s.Questions[i].Revealed && autoReveal {
			s.Questions[i].Revealed = true
			return nil
		}

		if i+1 < len(s.Questions) {
			activate(s, i+1, now)
			return nil
		}

		if s.Type == models.TypeQuiz {
			s.Status = models.StatusLeaderboard
			s.ActiveQuestionID = nil
			return nil
		}
		return Stale("last question reached; end the session instead")
	}}
}

// Reveal shows results for questionID if it is the live, unrevealed question.
func Reveal(questionID string) Command {
	return Command{Action: ActionReveal, apply: func(s *models.LiveState, now time.Time) error {
		if indexOf(s, questionID) < 0 {
			return notFound("question", questionID)
		}
		i := activeIndex(s)
		if i < 0 || s.Questions[i].ID != questionID {
			return Stale("question is not live")
		}
		if s.Questions[i].Revealed {
			return Stale("question already revealed")
		}
		s.Questions[i].Revealed = true
		return nil
	}}
}

// JumpTo makes questionID live and unrevealed regardless of order.
func JumpTo(questionID string) Command {
	return Command{Action: ActionJump, apply: func(s *models.LiveState, now time.Time) error {
		idx := indexOf(s, questionID)
		if idx < 0 {
			return notFound("question", questionID)
		}
		if s.Status != models.StatusOpen && s.Status != models.StatusLive {
			return invalid("cannot jump while poll is %s", s.Status)
		}
		if s.ActiveQuestionID != nil && *s.ActiveQuestionID == questionID {
			return Stale("question is already live")
		}
		s.Status = models.StatusLive
		activate(s, idx, now)
		return nil
	}}
}

// End closes the poll and clears the live question.
func End() Command {
	return Command{Action: ActionEnd, apply: func(s *models.LiveState, now time.Time) error {
		switch s.Status {
		case models.StatusClosed:
			return Stale("session already ended")
		case models.StatusOpen, models.StatusLive, models.StatusLeaderboard:
		default:
			return invalid("cannot end a session while poll is %s", s.Status)
		}
		s.Status = models.StatusClosed
		s.ActiveQuestionID = nil
		return nil
	}}
}

// SetStatus moves the poll along the status table.
func SetStatus(to models.PollStatus) Command {
	return Command{Action: ActionSetStatus, apply: func(s *models.LiveState, now time.Time) error {
		if !to.Valid() {
			return invalid("unknown status %q", to)
		}
		if to == s.Status {
			return Stale("status unchanged")
		}
		if !CanTransition(s.Status, to) {
			return invalid("%s → %s is not allowed", s.Status, to)
		}
		if to == models.StatusLeaderboard && s.Type != models.TypeQuiz {
			return invalid("leaderboard is only available for quiz polls")
		}

		switch to {
		case models.StatusLeaderboard, models.StatusClosed, models.StatusOpen:
			// closed → open must not resume a question from the ended session
			s.ActiveQuestionID = nil
		}
		s.Status = to
		return nil
	}}
}

func start(s *models.LiveState, now time.Time) error {
	switch s.Status {
	case models.StatusLeaderboard, models.StatusClosed:
		return Stale("session already finished")
	case models.StatusOpen, models.StatusLive:
	default:
		return invalid("cannot start a session while poll is %s", s.Status)
	}
	if activeIndex(s) >= 0 {
		return Stale("a question is already live")
	}
	if len(s.Questions) == 0 {
		return invalid("poll has no questions")
	}
	s.Status = models.StatusLive
	activate(s, 0, now)
	return nil
}

// activate makes the question at idx live and unrevealed. ActivatedAt records
// the first time the question went live; revisits keep it.
func activate(s *models.LiveState, idx int, now time.Time) {
	q := &s.Questions[idx]
	q.Revealed = false
	if q.ActivatedAt == nil {
		at := now
		q.ActivatedAt = &at
	}
	id := q.ID
	s.ActiveQuestionID = &id
}

func activeIndex(s *models.LiveState) int {
	if s.ActiveQuestionID == nil {
		return -1
	}
	return indexOf(s, *s.ActiveQuestionID)
}

func indexOf(s *models.LiveState, questionID string) int {
	for i, q := range s.Questions {
		if q.ID == questionID {
			return i
		}
	}
	return -1
}

// CheckVote validates that a vote for questionID may be accepted in state s.
func CheckVote(s *models.LiveState, questionID string) error {
	if indexOf(s, questionID) < 0 {
		return notFound("question", questionID)
	}
	if s.Status == models.StatusClosed {
		return ErrQuestionNotLive
	}
	i := activeIndex(s)
	if i < 0 || s.Questions[i].ID != questionID || s.Questions[i].Revealed {
		return ErrQuestionNotLive
	}
	return nil
}
