package store

import (
	"context"
)

// Tag is a named label shared across persons and encounters, many-to-many.
type Tag struct {
	ID   int32
	Name string
}

// FindTag is the find condition for tag.
type FindTag struct {
	ID          *int32
	Name        *string
	PersonID    *int32
	EncounterID *int32
}

// UpsertTag creates the tag if it does not exist and returns it.
func (s *Store) UpsertTag(ctx context.Context, name string) (*Tag, error) {
	return s.driver.UpsertTag(ctx, name)
}

// ListTags lists tags with filter.
func (s *Store) ListTags(ctx context.Context, find *FindTag) ([]*Tag, error) {
	return s.driver.ListTags(ctx, find)
}

// UpsertPersonTag links a tag to a person; duplicates are no-ops.
func (s *Store) UpsertPersonTag(ctx context.Context, personID, tagID int32) error {
	return s.driver.UpsertPersonTag(ctx, personID, tagID)
}

// UpsertEncounterTag links a tag to an encounter; duplicates are no-ops.
func (s *Store) UpsertEncounterTag(ctx context.Context, encounterID, tagID int32) error {
	return s.driver.UpsertEncounterTag(ctx, encounterID, tagID)
}
