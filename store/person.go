package store

import (
	"context"
)

// Person is a named identity in the gallery.
type Person struct {
	ID        int32
	UID       string
	CreatedTs int64
	UpdatedTs int64

	Name         string
	Relationship string
	Context      string
	Company      string
	Notes        string
	Interests    []string
	IsSelf       bool
	Favorite     bool

	// PrimarySampleUID points at the sample shown as the person's portrait.
	// Nullable; display falls back to the first sample when unset or
	// dangling.
	PrimarySampleUID *string
}

// FindPerson is the find condition for person.
type FindPerson struct {
	ID       *int32
	UID      *string
	IsSelf   *bool
	Favorite *bool

	// Pagination
	Limit  *int
	Offset *int
}

// UpdatePerson is the update request for person.
type UpdatePerson struct {
	ID               int32
	UpdatedTs        *int64
	Name             *string
	Relationship     *string
	Context          *string
	Company          *string
	Notes            *string
	Interests        *[]string
	IsSelf           *bool
	Favorite         *bool
	PrimarySampleUID *string
}

// DeletePerson is the delete request for person. Face samples, tag links,
// participations, review state and quiz attempts cascade.
type DeletePerson struct {
	ID int32
}

// CreatePerson creates a new person.
func (s *Store) CreatePerson(ctx context.Context, create *Person) (*Person, error) {
	return s.driver.CreatePerson(ctx, create)
}

// ListPersons lists persons with filter.
func (s *Store) ListPersons(ctx context.Context, find *FindPerson) ([]*Person, error) {
	return s.driver.ListPersons(ctx, find)
}

// GetPerson gets a person by find condition.
func (s *Store) GetPerson(ctx context.Context, find *FindPerson) (*Person, error) {
	list, err := s.driver.ListPersons(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// UpdatePerson updates a person.
func (s *Store) UpdatePerson(ctx context.Context, update *UpdatePerson) error {
	return s.driver.UpdatePerson(ctx, update)
}

// DeletePerson deletes a person.
func (s *Store) DeletePerson(ctx context.Context, delete *DeletePerson) error {
	return s.driver.DeletePerson(ctx, delete)
}
