package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// Person model related methods.
	CreatePerson(ctx context.Context, create *Person) (*Person, error)
	ListPersons(ctx context.Context, find *FindPerson) ([]*Person, error)
	UpdatePerson(ctx context.Context, update *UpdatePerson) error
	DeletePerson(ctx context.Context, delete *DeletePerson) error

	// FaceSample model related methods.
	CreateFaceSample(ctx context.Context, create *FaceSample) (*FaceSample, error)
	ListFaceSamples(ctx context.Context, find *FindFaceSample) ([]*FaceSample, error)
	UpdateFaceSample(ctx context.Context, update *UpdateFaceSample) error
	DeleteFaceSample(ctx context.Context, delete *DeleteFaceSample) error

	// VectorSearch ranks stored face samples by cosine distance to the query
	// embedding. Only supported on PostgreSQL (pgvector); the in-memory
	// matcher is the portable path.
	VectorSearch(ctx context.Context, opts *VectorSearchOptions) ([]*SampleWithScore, error)

	// Tag model related methods.
	UpsertTag(ctx context.Context, name string) (*Tag, error)
	ListTags(ctx context.Context, find *FindTag) ([]*Tag, error)
	UpsertPersonTag(ctx context.Context, personID, tagID int32) error
	UpsertEncounterTag(ctx context.Context, encounterID, tagID int32) error

	// Encounter model related methods.
	CreateEncounter(ctx context.Context, create *Encounter) (*Encounter, error)
	ListEncounters(ctx context.Context, find *FindEncounter) ([]*Encounter, error)
	UpdateEncounter(ctx context.Context, update *UpdateEncounter) error
	DeleteEncounter(ctx context.Context, delete *DeleteEncounter) error

	// EncounterPhoto model related methods.
	CreateEncounterPhoto(ctx context.Context, create *EncounterPhoto) (*EncounterPhoto, error)
	ListEncounterPhotos(ctx context.Context, find *FindEncounterPhoto) ([]*EncounterPhoto, error)
	UpdateEncounterPhoto(ctx context.Context, update *UpdateEncounterPhoto) error
	DeleteEncounterPhoto(ctx context.Context, delete *DeleteEncounterPhoto) error

	// Participant link related methods.
	UpsertParticipant(ctx context.Context, encounterID, personID int32) error
	ListParticipants(ctx context.Context, find *FindParticipant) ([]*Participant, error)

	// ReviewState model related methods.
	UpsertReviewState(ctx context.Context, upsert *ReviewState) (*ReviewState, error)
	ListReviewStates(ctx context.Context, find *FindReviewState) ([]*ReviewState, error)

	// QuizAttempt model related methods (append-only).
	CreateQuizAttempt(ctx context.Context, create *QuizAttempt) (*QuizAttempt, error)
	ListQuizAttempts(ctx context.Context, find *FindQuizAttempt) ([]*QuizAttempt, error)
}
