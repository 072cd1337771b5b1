// Package review provides spaced-repetition scheduling for person recall
// practice, using a boolean-answer SM-2 variant.
package review

import (
	"time"
)

// DefaultEaseFactor is the initial ease factor for new states.
const DefaultEaseFactor = 2.5

// MinEaseFactor is the lower ease bound; below it intervals collapse.
const MinEaseFactor = 1.3

// MaxEaseFactor is the upper ease bound.
const MaxEaseFactor = 2.5

const (
	// TroubleMinAttempts is how many answers a person needs before it can be
	// flagged for focused practice.
	TroubleMinAttempts = 2
	// TroubleAccuracy is the accuracy below which a person is "trouble".
	TroubleAccuracy = 0.6
	// MasteredMinAttempts is how many answers a person needs before it can
	// count as mastered.
	MasteredMinAttempts = 3
	// MasteredAccuracy is the accuracy at or above which a person counts as
	// mastered.
	MasteredAccuracy = 0.8
)

// State is the spaced-repetition state for one person. It is a plain value;
// Record returns a transformed copy and the caller persists it.
type State struct {
	EaseFactor      float64    `json:"ease_factor"`
	IntervalDays    int        `json:"interval_days"`
	Repetitions     int        `json:"repetitions"` // consecutive correct answers
	TotalAttempts   int        `json:"total_attempts"`
	CorrectAttempts int        `json:"correct_attempts"`
	LastReviewedAt  *time.Time `json:"last_reviewed_at,omitempty"`
	NextReviewAt    time.Time  `json:"next_review_at"`
}

// NewState returns the state for a person that has never been quizzed.
// NextReviewAt equals the creation time, meaning immediately due.
func NewState(now time.Time) State {
	return State{
		EaseFactor:   DefaultEaseFactor,
		IntervalDays: 0,
		NextReviewAt: now,
	}
}

// Accuracy is the fraction of correct answers, 0 when nothing was answered.
func (s State) Accuracy() float64 {
	if s.TotalAttempts == 0 {
		return 0
	}
	return float64(s.CorrectAttempts) / float64(s.TotalAttempts)
}

// Due reports whether the person should be reviewed at the given time.
func (s State) Due(now time.Time) bool {
	return !s.NextReviewAt.After(now)
}

// IsTrouble reports whether the person should be flagged for focused
// practice.
func IsTrouble(s State) bool {
	return s.TotalAttempts >= TroubleMinAttempts && s.Accuracy() < TroubleAccuracy
}

// IsMastered reports whether the person counts as mastered.
func IsMastered(s State) bool {
	return s.TotalAttempts >= MasteredMinAttempts && s.Accuracy() >= MasteredAccuracy
}
