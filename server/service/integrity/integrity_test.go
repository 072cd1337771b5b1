package integrity

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hrygo/facesense/store"
)

func strPtr(s string) *string { return &s }

func snapshotWith(persons []*store.Person, samples []*store.FaceSample, encounters []*store.Encounter, photos []*store.EncounterPhoto) *Snapshot {
	return &Snapshot{Persons: persons, Samples: samples, Encounters: encounters, Photos: photos}
}

// applyPlan removes the planned orphans from the snapshot, simulating what
// CleanAndFilter does against the store.
func applyPlan(snapshot *Snapshot, plan *CleanupPlan) *Snapshot {
	removed := map[int32]bool{}
	for _, id := range plan.OrphanSampleIDs {
		removed[id] = true
	}
	kept := []*store.FaceSample{}
	for _, sample := range snapshot.Samples {
		if !removed[sample.ID] {
			kept = append(kept, sample)
		}
	}
	return snapshotWith(snapshot.Persons, kept, snapshot.Encounters, snapshot.Photos)
}

func TestPlanEmptyOwnershipDeletesNothing(t *testing.T) {
	snapshot := snapshotWith(
		[]*store.Person{{ID: 1, UID: "alice"}},
		[]*store.FaceSample{
			{ID: 10, PersonID: 1, OwnerBoxUID: strPtr("box-1")},
		},
		nil, nil,
	)

	plan := Plan(snapshot)
	require.Empty(t, plan.OrphanSampleIDs)
	require.Empty(t, plan.PersonIDs)
}

func TestPlanSampleWithoutOwnerBoxNeverRemoved(t *testing.T) {
	snapshot := snapshotWith(
		[]*store.Person{{ID: 1, UID: "alice"}, {ID: 2, UID: "bob"}},
		[]*store.FaceSample{
			// Imported outside the labeling flow; no box back-reference.
			{ID: 10, PersonID: 1},
		},
		[]*store.Encounter{
			{ID: 1, Boxes: []store.BoundingBox{{UID: "box-1", PersonUID: strPtr("bob")}}},
		},
		nil,
	)

	plan := Plan(snapshot)
	require.Empty(t, plan.OrphanSampleIDs)
}

func TestPlanRelabeledBoxOrphansSample(t *testing.T) {
	snapshot := snapshotWith(
		[]*store.Person{{ID: 1, UID: "alice"}, {ID: 2, UID: "bob"}},
		[]*store.FaceSample{
			{ID: 10, PersonID: 1, OwnerBoxUID: strPtr("box-1")},
			{ID: 11, PersonID: 2, OwnerBoxUID: strPtr("box-2")},
		},
		nil,
		[]*store.EncounterPhoto{
			{ID: 1, Boxes: []store.BoundingBox{
				// box-1 was relabeled from alice to bob.
				{UID: "box-1", PersonUID: strPtr("bob")},
				{UID: "box-2", PersonUID: strPtr("bob")},
			}},
		},
	)

	plan := Plan(snapshot)
	require.Equal(t, []int32{10}, plan.OrphanSampleIDs)
	require.Equal(t, []int32{1}, plan.PersonIDs)
}

func TestPlanClearedLabelOrphansSample(t *testing.T) {
	snapshot := snapshotWith(
		[]*store.Person{{ID: 1, UID: "alice"}},
		[]*store.FaceSample{
			{ID: 10, PersonID: 1, OwnerBoxUID: strPtr("box-1")},
		},
		nil,
		[]*store.EncounterPhoto{
			{ID: 1, Boxes: []store.BoundingBox{{UID: "box-1", PersonUID: nil}}},
		},
	)

	plan := Plan(snapshot)
	require.Equal(t, []int32{10}, plan.OrphanSampleIDs)
}

func TestPlanVanishedBoxLeavesSampleAlone(t *testing.T) {
	snapshot := snapshotWith(
		[]*store.Person{{ID: 1, UID: "alice"}},
		[]*store.FaceSample{
			{ID: 10, PersonID: 1, OwnerBoxUID: strPtr("gone-box")},
		},
		[]*store.Encounter{
			{ID: 1, Boxes: []store.BoundingBox{{UID: "other-box", PersonUID: strPtr("alice")}}},
		},
		nil,
	)

	plan := Plan(snapshot)
	require.Empty(t, plan.OrphanSampleIDs)
}

func TestPlanDuplicateBoxUIDLastWriteWins(t *testing.T) {
	snapshot := snapshotWith(
		[]*store.Person{{ID: 1, UID: "alice"}, {ID: 2, UID: "bob"}},
		[]*store.FaceSample{
			{ID: 10, PersonID: 1, OwnerBoxUID: strPtr("box-1")},
		},
		[]*store.Encounter{
			// Legacy box says bob, but the photo box below is walked later
			// and restores alice, so the sample survives.
			{ID: 1, Boxes: []store.BoundingBox{{UID: "box-1", PersonUID: strPtr("bob")}}},
		},
		[]*store.EncounterPhoto{
			{ID: 1, Boxes: []store.BoundingBox{{UID: "box-1", PersonUID: strPtr("alice")}}},
		},
	)

	plan := Plan(snapshot)
	require.Empty(t, plan.OrphanSampleIDs)
}

func TestPlanIdempotent(t *testing.T) {
	snapshot := snapshotWith(
		[]*store.Person{{ID: 1, UID: "alice"}, {ID: 2, UID: "bob"}},
		[]*store.FaceSample{
			{ID: 10, PersonID: 1, OwnerBoxUID: strPtr("box-1")},
			{ID: 11, PersonID: 1, OwnerBoxUID: strPtr("box-2")},
			{ID: 12, PersonID: 2},
		},
		nil,
		[]*store.EncounterPhoto{
			{ID: 1, Boxes: []store.BoundingBox{
				{UID: "box-1", PersonUID: strPtr("bob")},
				{UID: "box-2", PersonUID: strPtr("alice")},
			}},
		},
	)

	first := Plan(snapshot)
	require.Equal(t, []int32{10}, first.OrphanSampleIDs)

	cleaned := applyPlan(snapshot, first)
	second := Plan(cleaned)
	require.Empty(t, second.OrphanSampleIDs, "second run must find nothing left to clean")
}

// Full label-then-relabel lifecycle: alice gets two samples from two boxes,
// one box moves to bob, cleanup removes exactly that sample and alice stays
// matchable through the surviving one.
func TestPlanRelabelScenario(t *testing.T) {
	alice := &store.Person{ID: 1, UID: "alice"}
	bob := &store.Person{ID: 2, UID: "bob"}
	snapshot := snapshotWith(
		[]*store.Person{alice, bob},
		[]*store.FaceSample{
			{ID: 10, PersonID: 1, OwnerBoxUID: strPtr("box-a")},
			{ID: 11, PersonID: 1, OwnerBoxUID: strPtr("box-b")},
		},
		nil,
		[]*store.EncounterPhoto{
			{ID: 1, Boxes: []store.BoundingBox{
				{UID: "box-a", PersonUID: strPtr("alice")},
				{UID: "box-b", PersonUID: strPtr("bob")},
			}},
		},
	)

	plan := Plan(snapshot)
	require.Equal(t, []int32{11}, plan.OrphanSampleIDs)

	cleaned := applyPlan(snapshot, plan)
	require.Len(t, cleaned.Samples, 1)
	require.Equal(t, int32(10), cleaned.Samples[0].ID)
	require.Empty(t, Plan(cleaned).OrphanSampleIDs)
}
