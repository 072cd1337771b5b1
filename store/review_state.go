package store

import (
	"context"
)

// ReviewState is the persisted spaced-repetition state, one-to-one with a
// person. Created lazily on the first quiz answer.
type ReviewState struct {
	ID       int32
	PersonID int32

	EaseFactor      float64
	IntervalDays    int
	Repetitions     int
	TotalAttempts   int
	CorrectAttempts int
	LastReviewedTs  *int64
	NextReviewTs    int64
}

// FindReviewState is the find condition for review state.
type FindReviewState struct {
	PersonID *int32

	// DueBefore filters states whose next review is at or before this
	// unix timestamp.
	DueBefore *int64
}

// UpsertReviewState inserts or replaces the review state for a person.
func (s *Store) UpsertReviewState(ctx context.Context, upsert *ReviewState) (*ReviewState, error) {
	return s.driver.UpsertReviewState(ctx, upsert)
}

// GetReviewState gets the review state of a person, nil if never quizzed.
func (s *Store) GetReviewState(ctx context.Context, personID int32) (*ReviewState, error) {
	list, err := s.driver.ListReviewStates(ctx, &FindReviewState{PersonID: &personID})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// ListReviewStates lists review states with filter.
func (s *Store) ListReviewStates(ctx context.Context, find *FindReviewState) ([]*ReviewState, error) {
	return s.driver.ListReviewStates(ctx, find)
}
