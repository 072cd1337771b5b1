package store

import (
	"context"
)

// FaceSample is one embedding extracted from a detected face, owned
// exclusively by one person at a time. OwnerBoxUID remembers the bounding
// box the sample was cut from; when that box is later relabeled to a
// different person the sample becomes an orphan the integrity service
// removes. Reassigning a box does not retroactively rewrite samples.
type FaceSample struct {
	ID        int32
	UID       string
	PersonID  int32
	CreatedTs int64

	// Embedding is a fixed-length float32 vector; every sample in the
	// gallery carries the same dimensionality.
	Embedding []float32
	Thumbnail []byte

	// OwnerBoxUID references the bounding box this sample was extracted
	// from. Nullable: samples created outside the box-labeling flow carry
	// none and are never touched by orphan cleanup.
	OwnerBoxUID *string
	// EncounterID references the encounter the sample came from, if any.
	EncounterID *int32
}

// FindFaceSample is the find condition for face sample.
type FindFaceSample struct {
	ID       *int32
	UID      *string
	PersonID *int32
}

// UpdateFaceSample is the update request for face sample. Reassigning
// PersonID is how merges fold samples into the primary person.
type UpdateFaceSample struct {
	ID       int32
	PersonID *int32
}

// DeleteFaceSample is the delete request for face sample.
type DeleteFaceSample struct {
	ID int32
}

// VectorSearchOptions represents the options for vector search.
type VectorSearchOptions struct {
	Vector []float32 // query embedding
	Limit  int       // number of samples to return, default 10
}

// SampleWithScore is a vector search result with its similarity score.
type SampleWithScore struct {
	Sample *FaceSample
	Score  float64 // cosine similarity, higher is more similar
}

// CreateFaceSample creates a new face sample.
func (s *Store) CreateFaceSample(ctx context.Context, create *FaceSample) (*FaceSample, error) {
	return s.driver.CreateFaceSample(ctx, create)
}

// ListFaceSamples lists face samples with filter.
func (s *Store) ListFaceSamples(ctx context.Context, find *FindFaceSample) ([]*FaceSample, error) {
	return s.driver.ListFaceSamples(ctx, find)
}

// UpdateFaceSample updates a face sample.
func (s *Store) UpdateFaceSample(ctx context.Context, update *UpdateFaceSample) error {
	return s.driver.UpdateFaceSample(ctx, update)
}

// DeleteFaceSample deletes a face sample.
func (s *Store) DeleteFaceSample(ctx context.Context, delete *DeleteFaceSample) error {
	return s.driver.DeleteFaceSample(ctx, delete)
}

// VectorSearch performs vector similarity search over stored samples.
func (s *Store) VectorSearch(ctx context.Context, opts *VectorSearchOptions) ([]*SampleWithScore, error) {
	return s.driver.VectorSearch(ctx, opts)
}
