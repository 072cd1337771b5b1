package store

import (
	"context"
)

// BoundingBox is a normalized rectangle on a photo, optionally labeled with
// the person it currently belongs to. Boxes are stored as a JSON payload
// column on their containing photo (or directly on legacy encounters).
type BoundingBox struct {
	UID    string  `json:"uid"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	// PersonUID labels which person owns this detected face. Nullable; a
	// cleared label is ownership evidence too (the sample cut from this box
	// no longer belongs to anyone).
	PersonUID *string `json:"person_uid,omitempty"`
}

// Encounter groups the persons that appeared together at one occasion.
type Encounter struct {
	ID        int32
	UID       string
	CreatedTs int64
	UpdatedTs int64

	Title      string
	Location   string
	Notes      string
	OccurredTs int64

	// Thumbnail is the display image, recomputed as the chronologically
	// earliest attached photo after any photo mutation.
	Thumbnail []byte

	// Boxes is the legacy layout: old encounters store detected boxes
	// directly instead of per photo.
	Boxes []BoundingBox
}

// EncounterPhoto is one photo attached to an encounter, with its own box
// list.
type EncounterPhoto struct {
	ID          int32
	UID         string
	EncounterID int32
	CreatedTs   int64

	// AssetID is the external (camera roll) asset identifier, used as the
	// duplicate guard when photos move between encounters.
	AssetID string
	Data    []byte
	TakenTs int64

	Boxes []BoundingBox
}

// Participant links a person to an encounter.
type Participant struct {
	EncounterID int32
	PersonID    int32
}

// FindEncounter is the find condition for encounter.
type FindEncounter struct {
	ID  *int32
	UID *string

	// Pagination
	Limit  *int
	Offset *int
}

// UpdateEncounter is the update request for encounter.
type UpdateEncounter struct {
	ID         int32
	UpdatedTs  *int64
	Title      *string
	Location   *string
	Notes      *string
	OccurredTs *int64
	Thumbnail  *[]byte
	Boxes      *[]BoundingBox
}

// DeleteEncounter is the delete request for encounter. Photos, tag links and
// participations cascade; face samples cut from the encounter survive and
// keep their (now dangling) encounter reference.
type DeleteEncounter struct {
	ID int32
}

// FindEncounterPhoto is the find condition for encounter photo.
type FindEncounterPhoto struct {
	ID          *int32
	UID         *string
	EncounterID *int32
}

// UpdateEncounterPhoto is the update request for encounter photo.
// Reassigning EncounterID is how photos move between encounters.
type UpdateEncounterPhoto struct {
	ID          int32
	EncounterID *int32
	Boxes       *[]BoundingBox
}

// DeleteEncounterPhoto is the delete request for encounter photo.
type DeleteEncounterPhoto struct {
	ID int32
}

// FindParticipant is the find condition for participant links.
type FindParticipant struct {
	EncounterID *int32
	PersonID    *int32
}

// CreateEncounter creates a new encounter.
func (s *Store) CreateEncounter(ctx context.Context, create *Encounter) (*Encounter, error) {
	return s.driver.CreateEncounter(ctx, create)
}

// ListEncounters lists encounters with filter.
func (s *Store) ListEncounters(ctx context.Context, find *FindEncounter) ([]*Encounter, error) {
	return s.driver.ListEncounters(ctx, find)
}

// GetEncounter gets an encounter by find condition.
func (s *Store) GetEncounter(ctx context.Context, find *FindEncounter) (*Encounter, error) {
	list, err := s.driver.ListEncounters(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// UpdateEncounter updates an encounter.
func (s *Store) UpdateEncounter(ctx context.Context, update *UpdateEncounter) error {
	return s.driver.UpdateEncounter(ctx, update)
}

// DeleteEncounter deletes an encounter.
func (s *Store) DeleteEncounter(ctx context.Context, delete *DeleteEncounter) error {
	return s.driver.DeleteEncounter(ctx, delete)
}

// CreateEncounterPhoto creates a new encounter photo.
func (s *Store) CreateEncounterPhoto(ctx context.Context, create *EncounterPhoto) (*EncounterPhoto, error) {
	return s.driver.CreateEncounterPhoto(ctx, create)
}

// ListEncounterPhotos lists encounter photos with filter.
func (s *Store) ListEncounterPhotos(ctx context.Context, find *FindEncounterPhoto) ([]*EncounterPhoto, error) {
	return s.driver.ListEncounterPhotos(ctx, find)
}

// UpdateEncounterPhoto updates an encounter photo.
func (s *Store) UpdateEncounterPhoto(ctx context.Context, update *UpdateEncounterPhoto) error {
	return s.driver.UpdateEncounterPhoto(ctx, update)
}

// DeleteEncounterPhoto deletes an encounter photo.
func (s *Store) DeleteEncounterPhoto(ctx context.Context, delete *DeleteEncounterPhoto) error {
	return s.driver.DeleteEncounterPhoto(ctx, delete)
}

// UpsertParticipant links a person to an encounter; duplicates are no-ops.
func (s *Store) UpsertParticipant(ctx context.Context, encounterID, personID int32) error {
	return s.driver.UpsertParticipant(ctx, encounterID, personID)
}

// ListParticipants lists participant links with filter.
func (s *Store) ListParticipants(ctx context.Context, find *FindParticipant) ([]*Participant, error) {
	return s.driver.ListParticipants(ctx, find)
}
