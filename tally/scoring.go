// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"fmt"
	"time"

	"github.com/danielhkuo/livepoll/models"
)

// Scorer awards points for one answer to a scorable question.
type Scorer interface {
	Name() string
	Score(q *models.Question, v models.Vote, correct bool) int
	// Max is the most a single answer can earn.
	Max() int
}

// CorrectOnly awards one point per correct answer.
type CorrectOnly struct{}

func (CorrectOnly) Name() string { return "correct" }

func (CorrectOnly) Score(_ *models.Question, _ models.Vote, correct bool) int {
	if correct {
		return 1
	}
	return 0
}

func (CorrectOnly) Max() int { return 1 }

// SpeedBonus awards Base points for a correct answer plus up to MaxBonus
// points that decay linearly to zero over Window after the question went live.
type SpeedBonus struct {
	Base     int
	MaxBonus int
	Window   time.Duration
}

// DefaultSpeedBonus is 500 points plus up to 500 more within 20 seconds.
var DefaultSpeedBonus = SpeedBonus{Base: 500, MaxBonus: 500, Window: 20 * time.Second}

func (SpeedBonus) Name() string { return "speed" }

func (s SpeedBonus) Score(q *models.Question, v models.Vote, correct bool) int {
	if !correct {
		return 0
	}
	if s.Window <= 0 || q.ActivatedAt == nil {
		return s.Base
	}
	left := s.Window - Elapsed(q, v)
	if left <= 0 {
		return s.Base
	}
	// integer math keeps the floor exact
	return s.Base + int(int64(s.MaxBonus)*int64(left)/int64(s.Window))
}

func (s SpeedBonus) Max() int { return s.Base + s.MaxBonus }

// Elapsed is the time between the question going live and the vote, never
// negative. It is zero when the activation time is unknown.
func Elapsed(q *models.Question, v models.Vote) time.Duration {
	if q.ActivatedAt == nil {
		return 0
	}
	d := v.CreatedAt.Sub(*q.ActivatedAt)
	if d < 0 {
		return 0
	}
	return d
}

// NewScorer returns the scorer registered under name.
func NewScorer(name string) (Scorer, error) {
	switch name {
	case "", "correct":
		return CorrectOnly{}, nil
	case "speed":
		return DefaultSpeedBonus, nil
	}
	return nil, fmt.Errorf("unknown scoring %q", name)
}
