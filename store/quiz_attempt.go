package store

import (
	"context"
)

// QuizAttempt is an immutable record of one review answer. Append-only.
type QuizAttempt struct {
	ID        int32
	PersonID  int32
	CreatedTs int64

	Correct   bool
	LatencyMs int64
	Guess     string
}

// FindQuizAttempt is the find condition for quiz attempt.
type FindQuizAttempt struct {
	PersonID *int32

	// Pagination
	Limit  *int
	Offset *int
}

// CreateQuizAttempt appends a quiz attempt.
func (s *Store) CreateQuizAttempt(ctx context.Context, create *QuizAttempt) (*QuizAttempt, error) {
	return s.driver.CreateQuizAttempt(ctx, create)
}

// ListQuizAttempts lists quiz attempts with filter, newest first.
func (s *Store) ListQuizAttempts(ctx context.Context, find *FindQuizAttempt) ([]*QuizAttempt, error) {
	return s.driver.ListQuizAttempts(ctx, find)
}
