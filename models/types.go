package models

import "time"

// PollStatus is the poll-level lifecycle state.
type PollStatus string

// Poll status constants
const (
	StatusDraft       PollStatus = "draft"
	StatusPublished   PollStatus = "published"
	StatusOpen        PollStatus = "open"
	StatusLive        PollStatus = "live"
	StatusLeaderboard PollStatus = "leaderboard"
	StatusClosed      PollStatus = "closed"
)

// AllStatuses lists every poll status in lifecycle order.
var AllStatuses = []PollStatus{
	StatusDraft, StatusPublished, StatusOpen, StatusLive, StatusLeaderboard, StatusClosed,
}

// Valid reports whether s is a known status.
func (s PollStatus) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// PollType selects how a poll is delivered and scored.
type PollType string

// Poll type constants
const (
	TypeGeneral           PollType = "general"
	TypeQuiz              PollType = "quiz"
	TypeBuildingSelection PollType = "building_selection"
)

// Valid reports whether t is a known poll type.
func (t PollType) Valid() bool {
	switch t {
	case TypeGeneral, TypeQuiz, TypeBuildingSelection:
		return true
	}
	return false
}

// QuestionPhase is derived from (live, revealed); it is never stored.
type QuestionPhase string

const (
	PhasePending  QuestionPhase = "pending"  // not live, not revealed
	PhaseLive     QuestionPhase = "live"     // live, collecting votes
	PhaseRevealed QuestionPhase = "revealed" // live, results shown
	PhaseDone     QuestionPhase = "done"     // no longer live, results were shown
)

// PhaseOf derives the phase of a question.
func PhaseOf(live, revealed bool) QuestionPhase {
	switch {
	case live && revealed:
		return PhaseRevealed
	case live:
		return PhaseLive
	case revealed:
		return PhaseDone
	default:
		return PhasePending
	}
}

// Notification kinds
const (
	KindPoll     = "poll"
	KindQuestion = "question"
	KindVote     = "vote"
)

// Domain types

type Poll struct {
	ID               string     `json:"id"`
	GroupID          string     `json:"group_id"`
	Slug             string     `json:"slug"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Type             PollType   `json:"type"`
	Status           PollStatus `json:"status"`
	ActiveQuestionID *string    `json:"active_question_id,omitempty"`
	StateVersion     int64      `json:"state_version"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type Question struct {
	ID           string        `json:"id"`
	PollID       string        `json:"poll_id"`
	OrderIndex   int           `json:"order_index"`
	QuestionText string        `json:"question_text"`
	MediaURL     *string       `json:"media_url,omitempty"`
	IsLiveActive bool          `json:"is_live_active"`
	IsRevealed   bool          `json:"is_revealed"`
	Phase        QuestionPhase `json:"phase"`
	ActivatedAt  *time.Time    `json:"activated_at,omitempty"`
	Options      []Option      `json:"options"`
}

type Option struct {
	ID         string  `json:"id"`
	QuestionID string  `json:"question_id"`
	OptionText string  `json:"option_text"`
	MediaURL   *string `json:"media_url,omitempty"`
	OrderIndex int     `json:"order_index"`
	IsCorrect  *bool   `json:"is_correct,omitempty"`
}

type Vote struct {
	ID         string    `json:"id"`
	PollID     string    `json:"poll_id"`
	QuestionID string    `json:"question_id"`
	UserID     string    `json:"user_id"`
	OptionID   string    `json:"option_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// PollAggregate is the full read used by every client role.
type PollAggregate struct {
	Poll
	Questions []Question `json:"questions"`
	Votes     []Vote     `json:"votes"`
}

// ActiveQuestion returns the live question and its index, or nil and -1.
func (a *PollAggregate) ActiveQuestion() (*Question, int) {
	if a.ActiveQuestionID == nil {
		return nil, -1
	}
	for i := range a.Questions {
		if a.Questions[i].ID == *a.ActiveQuestionID {
			return &a.Questions[i], i
		}
	}
	return nil, -1
}

// Question looks up a question by id.
func (a *PollAggregate) Question(id string) *Question {
	for i := range a.Questions {
		if a.Questions[i].ID == id {
			return &a.Questions[i]
		}
	}
	return nil
}

// HasVoted reports whether userID has a vote on questionID.
func (a *PollAggregate) HasVoted(questionID, userID string) (Vote, bool) {
	for _, v := range a.Votes {
		if v.QuestionID == questionID && v.UserID == userID {
			return v, true
		}
	}
	return Vote{}, false
}

// QuestionState is the mutable part of a question owned by this service.
type QuestionState struct {
	ID          string
	OrderIndex  int
	Revealed    bool
	ActivatedAt *time.Time
}

// LiveState is the locked snapshot a control transition operates on.
// Questions are ordered by OrderIndex.
type LiveState struct {
	PollID           string
	Type             PollType
	Status           PollStatus
	ActiveQuestionID *string
	Version          int64
	Questions        []QuestionState
}

// Clone returns a deep copy of s.
func (s LiveState) Clone() LiveState {
	out := s
	if s.ActiveQuestionID != nil {
		id := *s.ActiveQuestionID
		out.ActiveQuestionID = &id
	}
	out.Questions = make([]QuestionState, len(s.Questions))
	copy(out.Questions, s.Questions)
	return out
}

// Notification is a cache-invalidation signal; consumers re-fetch.
type Notification struct {
	PollID string    `json:"poll_id" msgpack:"poll_id"`
	Kind   string    `json:"kind" msgpack:"kind"`
	Seq    uint64    `json:"seq" msgpack:"seq"`
	At     time.Time `json:"at" msgpack:"at"`
	Origin string    `json:"-" msgpack:"origin"`
}

// TransitionResult reports the outcome of a control-plane command.
type TransitionResult struct {
	Applied          bool       `json:"applied"`
	Action           string     `json:"action"`
	Reason           string     `json:"reason,omitempty"`
	StateVersion     int64      `json:"state_version"`
	Status           PollStatus `json:"poll_status"`
	ActiveQuestionID *string    `json:"active_question_id,omitempty"`
}

// Tally types

type OptionCount struct {
	OptionID   string  `json:"option_id"`
	OptionText string  `json:"option_text"`
	Count      int     `json:"count"`
	Share      float64 `json:"share"`
	IsCorrect  *bool   `json:"is_correct,omitempty"`
}

type Tally struct {
	QuestionID string        `json:"question_id"`
	Total      int           `json:"total"`
	Options    []OptionCount `json:"options"`
}

type LeaderboardEntry struct {
	Rank           int           `json:"rank"`
	RankLabel      string        `json:"rank_label"`
	UserID         string        `json:"user_id"`
	Score          int           `json:"score"`
	CorrectAnswers int           `json:"correct_answers"`
	Answered       int           `json:"answered"`
	ResponseTime   time.Duration `json:"response_time_ns"`
}

type Leaderboard struct {
	PollID   string             `json:"poll_id"`
	Scoring  string             `json:"scoring"`
	MaxScore int                `json:"max_score"`
	Entries  []LeaderboardEntry `json:"entries"`
}

// Request types

type ControlRequest struct {
	IfVersion *int64 `json:"if_version,omitempty"`
}

type AdvanceRequest struct {
	AutoReveal *bool  `json:"auto_reveal,omitempty"`
	IfVersion  *int64 `json:"if_version,omitempty"`
}

type QuestionCommandRequest struct {
	QuestionID string `json:"question_id"`
	IfVersion  *int64 `json:"if_version,omitempty"`
}

type SetStatusRequest struct {
	Status    PollStatus `json:"status"`
	IfVersion *int64     `json:"if_version,omitempty"`
}

type CastVoteRequest struct {
	QuestionID string `json:"question_id"`
	OptionID   string `json:"option_id"`
}

// Response types

type CastVoteResponse struct {
	Status string `json:"status"` // "recorded" or "already_voted"
	VoteID string `json:"vote_id,omitempty"`
}

type ParticipantResponse struct {
	UserID string `json:"user_id"`
	Token  string `json:"token"`
}

type ResolveSlugResponse struct {
	PollID string `json:"poll_id"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
