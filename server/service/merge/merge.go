// Package merge folds duplicate persons and encounters together without
// losing data: samples, participations, tags and notes all survive into the
// primary entity, and scalar fields on the primary are never overwritten.
package merge

import (
	"context"
	"log/slog"
	"sync"

	"github.com/hrygo/facesense/store"
)

// Service performs merge and photo-move maintenance against the store.
type Service struct {
	store *store.Store
	// mu is the single-writer lock shared with the integrity service.
	mu     *sync.Mutex
	logger *slog.Logger
}

// NewService creates a merge service. The mutex is shared with the
// integrity service to serialize all maintenance writes.
func NewService(st *store.Store, mu *sync.Mutex, logger *slog.Logger) *Service {
	return &Service{store: st, mu: mu, logger: logger}
}

// CombineNotes joins note fields with a blank line, skipping empty sides.
func CombineNotes(parts ...string) string {
	combined := ""
	for _, part := range parts {
		if part == "" {
			continue
		}
		if combined == "" {
			combined = part
			continue
		}
		combined = combined + "\n\n" + part
	}
	return combined
}

// dedupeStrings unions string lists preserving first-seen order.
func dedupeStrings(lists ...[]string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, list := range lists {
		for _, v := range list {
			if seen[v] {
				continue
			}
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// FoldPersons computes the field update the primary person receives when the
// secondaries fold into it. Pure: no store access. Empty scalar fields on
// the primary are filled from the first secondary that has a value;
// non-empty primary fields are never overwritten. IsSelf and Favorite are
// OR-folded, interests unioned, notes combined when combineNotes is set.
func FoldPersons(primary *store.Person, secondaries []*store.Person, combineNotes bool) *store.UpdatePerson {
	update := &store.UpdatePerson{ID: primary.ID}

	relationship, context_, company := primary.Relationship, primary.Context, primary.Company
	isSelf, favorite := primary.IsSelf, primary.Favorite
	notes := []string{primary.Notes}
	interestLists := [][]string{primary.Interests}

	for _, secondary := range secondaries {
		if relationship == "" && secondary.Relationship != "" {
			relationship = secondary.Relationship
		}
		if context_ == "" && secondary.Context != "" {
			context_ = secondary.Context
		}
		if company == "" && secondary.Company != "" {
			company = secondary.Company
		}
		isSelf = isSelf || secondary.IsSelf
		favorite = favorite || secondary.Favorite
		notes = append(notes, secondary.Notes)
		interestLists = append(interestLists, secondary.Interests)
	}

	if relationship != primary.Relationship {
		update.Relationship = &relationship
	}
	if context_ != primary.Context {
		update.Context = &context_
	}
	if company != primary.Company {
		update.Company = &company
	}
	if isSelf != primary.IsSelf {
		update.IsSelf = &isSelf
	}
	if favorite != primary.Favorite {
		update.Favorite = &favorite
	}
	if combineNotes {
		if combined := CombineNotes(notes...); combined != primary.Notes {
			update.Notes = &combined
		}
	}
	if interests := dedupeStrings(interestLists...); len(interests) != len(primary.Interests) {
		update.Interests = &interests
	}

	return update
}

// MergePersons folds the secondary persons into the primary. Face samples
// are reassigned (union, no loss), encounter participations and tags are
// carried over deduped, and the secondaries are deleted afterwards.
// Unknown UIDs in the secondary list are skipped; an unknown primary yields
// a nil person and no effect, not an error.
func (s *Service) MergePersons(ctx context.Context, primaryUID string, secondaryUIDs []string, combineNotes bool) (*store.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	primary, err := s.store.GetPerson(ctx, &store.FindPerson{UID: &primaryUID})
	if err != nil {
		return nil, err
	}
	if primary == nil {
		return nil, nil
	}

	secondaries := []*store.Person{}
	for _, uid := range secondaryUIDs {
		if uid == primaryUID {
			continue
		}
		secondary, err := s.store.GetPerson(ctx, &store.FindPerson{UID: &uid})
		if err != nil {
			return nil, err
		}
		if secondary == nil {
			continue
		}
		secondaries = append(secondaries, secondary)
	}
	if len(secondaries) == 0 {
		return primary, nil
	}

	if err := s.store.UpdatePerson(ctx, FoldPersons(primary, secondaries, combineNotes)); err != nil {
		return nil, err
	}

	for _, secondary := range secondaries {
		samples, err := s.store.ListFaceSamples(ctx, &store.FindFaceSample{PersonID: &secondary.ID})
		if err != nil {
			return nil, err
		}
		for _, sample := range samples {
			if err := s.store.UpdateFaceSample(ctx, &store.UpdateFaceSample{ID: sample.ID, PersonID: &primary.ID}); err != nil {
				return nil, err
			}
		}

		participations, err := s.store.ListParticipants(ctx, &store.FindParticipant{PersonID: &secondary.ID})
		if err != nil {
			return nil, err
		}
		for _, participation := range participations {
			if err := s.store.UpsertParticipant(ctx, participation.EncounterID, primary.ID); err != nil {
				return nil, err
			}
		}

		tags, err := s.store.ListTags(ctx, &store.FindTag{PersonID: &secondary.ID})
		if err != nil {
			return nil, err
		}
		for _, tag := range tags {
			if err := s.store.UpsertPersonTag(ctx, primary.ID, tag.ID); err != nil {
				return nil, err
			}
		}

		// Samples were reassigned above, so the cascade only clears the
		// secondary's tag links, participations and review history.
		if err := s.store.DeletePerson(ctx, &store.DeletePerson{ID: secondary.ID}); err != nil {
			return nil, err
		}
	}

	s.logger.Info("merged persons",
		slog.String("primary", primaryUID),
		slog.Int("secondaries", len(secondaries)))

	return s.store.GetPerson(ctx, &store.FindPerson{UID: &primaryUID})
}

// MergeEncounters folds the secondary encounters into the primary. Photos
// move over unless the destination already holds the same external asset,
// participants and tags carry over deduped, and the primary thumbnail is
// recomputed from its chronologically earliest photo. An unknown primary
// yields a nil encounter and no effect, not an error.
func (s *Service) MergeEncounters(ctx context.Context, primaryUID string, secondaryUIDs []string, combineNotes bool) (*store.Encounter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	primary, err := s.store.GetEncounter(ctx, &store.FindEncounter{UID: &primaryUID})
	if err != nil {
		return nil, err
	}
	if primary == nil {
		return nil, nil
	}

	notes := []string{primary.Notes}
	merged := 0
	for _, uid := range secondaryUIDs {
		if uid == primaryUID {
			continue
		}
		secondary, err := s.store.GetEncounter(ctx, &store.FindEncounter{UID: &uid})
		if err != nil {
			return nil, err
		}
		if secondary == nil {
			continue
		}

		if _, err := s.movePhotosLocked(ctx, nil, secondary, primary); err != nil {
			return nil, err
		}

		participations, err := s.store.ListParticipants(ctx, &store.FindParticipant{EncounterID: &secondary.ID})
		if err != nil {
			return nil, err
		}
		for _, participation := range participations {
			if err := s.store.UpsertParticipant(ctx, primary.ID, participation.PersonID); err != nil {
				return nil, err
			}
		}

		tags, err := s.store.ListTags(ctx, &store.FindTag{EncounterID: &secondary.ID})
		if err != nil {
			return nil, err
		}
		for _, tag := range tags {
			if err := s.store.UpsertEncounterTag(ctx, primary.ID, tag.ID); err != nil {
				return nil, err
			}
		}

		notes = append(notes, secondary.Notes)
		if err := s.store.DeleteEncounter(ctx, &store.DeleteEncounter{ID: secondary.ID}); err != nil {
			return nil, err
		}
		merged++
	}
	if merged == 0 {
		return primary, nil
	}

	update := &store.UpdateEncounter{ID: primary.ID}
	if combineNotes {
		if combined := CombineNotes(notes...); combined != primary.Notes {
			update.Notes = &combined
		}
	}
	if update.Notes != nil {
		if err := s.store.UpdateEncounter(ctx, update); err != nil {
			return nil, err
		}
	}

	if err := s.recomputeThumbnail(ctx, primary.ID); err != nil {
		return nil, err
	}

	s.logger.Info("merged encounters",
		slog.String("primary", primaryUID),
		slog.Int("secondaries", merged))

	return s.store.GetEncounter(ctx, &store.FindEncounter{UID: &primaryUID})
}

// MoveResult reports the outcome of a photo move.
type MoveResult struct {
	Moved   int `json:"moved"`
	Skipped int `json:"skipped"`
	// SourceEmpty reports whether the source encounter has no photos left.
	SourceEmpty bool `json:"sourceEmpty"`
}

// MovePhotos moves the named photos between encounters. Photos whose
// external asset already exists at the destination are skipped. A missing
// source or destination yields a zero-effect result, not an error.
func (s *Service) MovePhotos(ctx context.Context, photoUIDs []string, fromUID, toUID string) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	from, err := s.store.GetEncounter(ctx, &store.FindEncounter{UID: &fromUID})
	if err != nil {
		return nil, err
	}
	to, err := s.store.GetEncounter(ctx, &store.FindEncounter{UID: &toUID})
	if err != nil {
		return nil, err
	}
	if from == nil || to == nil || from.ID == to.ID {
		return &MoveResult{}, nil
	}

	result, err := s.movePhotosLocked(ctx, photoUIDs, from, to)
	if err != nil {
		return nil, err
	}

	if err := s.recomputeThumbnail(ctx, from.ID); err != nil {
		return nil, err
	}
	if err := s.recomputeThumbnail(ctx, to.ID); err != nil {
		return nil, err
	}
	return result, nil
}

// movePhotosLocked moves photos from one encounter to another. A nil
// photoUIDs list means every photo. Caller holds the mutex.
func (s *Service) movePhotosLocked(ctx context.Context, photoUIDs []string, from, to *store.Encounter) (*MoveResult, error) {
	wanted := map[string]bool{}
	for _, uid := range photoUIDs {
		wanted[uid] = true
	}

	destPhotos, err := s.store.ListEncounterPhotos(ctx, &store.FindEncounterPhoto{EncounterID: &to.ID})
	if err != nil {
		return nil, err
	}
	destAssets := map[string]bool{}
	for _, photo := range destPhotos {
		if photo.AssetID != "" {
			destAssets[photo.AssetID] = true
		}
	}

	sourcePhotos, err := s.store.ListEncounterPhotos(ctx, &store.FindEncounterPhoto{EncounterID: &from.ID})
	if err != nil {
		return nil, err
	}

	result := &MoveResult{}
	remaining := 0
	for _, photo := range sourcePhotos {
		if photoUIDs != nil && !wanted[photo.UID] {
			remaining++
			continue
		}
		if photo.AssetID != "" && destAssets[photo.AssetID] {
			result.Skipped++
			remaining++
			continue
		}
		if err := s.store.UpdateEncounterPhoto(ctx, &store.UpdateEncounterPhoto{ID: photo.ID, EncounterID: &to.ID}); err != nil {
			return nil, err
		}
		if photo.AssetID != "" {
			destAssets[photo.AssetID] = true
		}
		result.Moved++
	}
	result.SourceEmpty = remaining == 0
	return result, nil
}
