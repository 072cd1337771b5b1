// Package integrity detects and removes orphaned face samples.
//
// A face sample remembers the bounding box it was cut from (OwnerBoxUID).
// When that box is later relabeled to a different person, or its label is
// cleared, the sample no longer represents the person it is filed under and
// would poison matching. Cleanup walks every box currently stored, rebuilds
// the box -> owner map, and deletes samples whose recorded owner disagrees
// with it.
package integrity

import (
	"context"
	"log/slog"
	"sync"

	"github.com/hrygo/facesense/store"
)

// Snapshot is the store state the planner works on.
type Snapshot struct {
	Persons    []*store.Person
	Samples    []*store.FaceSample
	Encounters []*store.Encounter
	Photos     []*store.EncounterPhoto
}

// CleanupPlan lists the samples that must be deleted.
type CleanupPlan struct {
	// OrphanSampleIDs are row ids of samples whose owning box now belongs
	// to someone else (or to no one).
	OrphanSampleIDs []int32
	// PersonIDs are the persons losing at least one sample.
	PersonIDs []int32
}

// Report summarizes one cleanup run.
type Report struct {
	OrphansRemoved  int `json:"orphansRemoved"`
	PersonsAffected int `json:"personsAffected"`
}

// ownership builds the box-ownership map from every box in the snapshot.
// Legacy encounter-level boxes are walked before per-photo boxes; within a
// list, later entries win, so a duplicated box UID resolves to the label
// seen last. A box with a cleared label still claims its UID: nil means
// "owned by nobody", which is orphaning evidence too.
func ownership(snapshot *Snapshot) map[string]*string {
	owners := make(map[string]*string)
	for _, encounter := range snapshot.Encounters {
		for i := range encounter.Boxes {
			box := &encounter.Boxes[i]
			owners[box.UID] = box.PersonUID
		}
	}
	for _, photo := range snapshot.Photos {
		for i := range photo.Boxes {
			box := &photo.Boxes[i]
			owners[box.UID] = box.PersonUID
		}
	}
	return owners
}

// Plan computes the cleanup plan for a snapshot. Pure: no store access.
//
// A sample is orphaned iff it carries an OwnerBoxUID, that box still exists
// in the ownership map, and the box's current owner is not the person the
// sample is filed under. Samples without an owner box are never touched;
// neither are samples whose box vanished entirely (the box list is the only
// authority we trust, a missing box proves nothing). An empty ownership map
// therefore plans zero deletions.
func Plan(snapshot *Snapshot) *CleanupPlan {
	plan := &CleanupPlan{
		OrphanSampleIDs: []int32{},
		PersonIDs:       []int32{},
	}

	owners := ownership(snapshot)
	if len(owners) == 0 {
		return plan
	}

	personUIDByID := make(map[int32]string, len(snapshot.Persons))
	for _, person := range snapshot.Persons {
		personUIDByID[person.ID] = person.UID
	}

	affected := make(map[int32]bool)
	for _, sample := range snapshot.Samples {
		if sample.OwnerBoxUID == nil {
			continue
		}
		owner, ok := owners[*sample.OwnerBoxUID]
		if !ok {
			continue
		}
		if owner != nil && *owner == personUIDByID[sample.PersonID] {
			continue
		}
		plan.OrphanSampleIDs = append(plan.OrphanSampleIDs, sample.ID)
		affected[sample.PersonID] = true
	}

	for personID := range affected {
		plan.PersonIDs = append(plan.PersonIDs, personID)
	}
	return plan
}

// Service runs cleanup against the store.
type Service struct {
	store *store.Store
	// mu is the single-writer lock shared with the merge service; cleanup
	// and merge never interleave.
	mu     *sync.Mutex
	logger *slog.Logger
}

// NewService creates an integrity service. The mutex is shared with the
// merge service to serialize all maintenance writes.
func NewService(st *store.Store, mu *sync.Mutex, logger *slog.Logger) *Service {
	return &Service{store: st, mu: mu, logger: logger}
}

func (s *Service) loadSnapshot(ctx context.Context) (*Snapshot, error) {
	persons, err := s.store.ListPersons(ctx, &store.FindPerson{})
	if err != nil {
		return nil, err
	}
	samples, err := s.store.ListFaceSamples(ctx, &store.FindFaceSample{})
	if err != nil {
		return nil, err
	}
	encounters, err := s.store.ListEncounters(ctx, &store.FindEncounter{})
	if err != nil {
		return nil, err
	}
	photos, err := s.store.ListEncounterPhotos(ctx, &store.FindEncounterPhoto{})
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Persons:    persons,
		Samples:    samples,
		Encounters: encounters,
		Photos:     photos,
	}, nil
}

// CleanAndFilter removes orphaned samples and returns the cleanup report
// together with the matchable persons remaining (persons left with zero
// samples are excluded from matching). Running it twice in a row is a no-op
// the second time.
func (s *Service) CleanAndFilter(ctx context.Context) (*Report, []*store.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, nil, err
	}

	plan := Plan(snapshot)
	for _, sampleID := range plan.OrphanSampleIDs {
		if err := s.store.DeleteFaceSample(ctx, &store.DeleteFaceSample{ID: sampleID}); err != nil {
			return nil, nil, err
		}
	}

	if len(plan.OrphanSampleIDs) > 0 {
		s.logger.Info("integrity cleanup removed orphaned samples",
			slog.Int("orphans", len(plan.OrphanSampleIDs)),
			slog.Int("persons_affected", len(plan.PersonIDs)))
	}

	removed := make(map[int32]bool, len(plan.OrphanSampleIDs))
	for _, id := range plan.OrphanSampleIDs {
		removed[id] = true
	}
	remaining := make(map[int32]int, len(snapshot.Persons))
	for _, sample := range snapshot.Samples {
		if !removed[sample.ID] {
			remaining[sample.PersonID]++
		}
	}

	matchable := []*store.Person{}
	for _, person := range snapshot.Persons {
		if remaining[person.ID] > 0 {
			matchable = append(matchable, person)
		}
	}

	report := &Report{
		OrphansRemoved:  len(plan.OrphanSampleIDs),
		PersonsAffected: len(plan.PersonIDs),
	}
	return report, matchable, nil
}
