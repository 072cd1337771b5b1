package merge

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hrygo/facesense/internal/profile"
	"github.com/hrygo/facesense/store"
	"github.com/hrygo/facesense/store/db/sqlite"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	p := &profile.Profile{
		Mode:   "dev",
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "facesense_test.db"),
	}
	driver, err := sqlite.NewDB(p)
	require.NoError(t, err)
	st := store.New(driver, p)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func newTestService(st *store.Store) *Service {
	return NewService(st, &sync.Mutex{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func createTestPerson(t *testing.T, st *store.Store, uid, name string) *store.Person {
	t.Helper()
	person, err := st.CreatePerson(context.Background(), &store.Person{UID: uid, Name: name})
	require.NoError(t, err)
	return person
}

func createTestSample(t *testing.T, st *store.Store, uid string, personID int32) *store.FaceSample {
	t.Helper()
	sample, err := st.CreateFaceSample(context.Background(), &store.FaceSample{
		UID:       uid,
		PersonID:  personID,
		Embedding: []float32{1, 0, 0, 0},
	})
	require.NoError(t, err)
	return sample
}

func TestMergePersonsKeepsEverySample(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newTestService(st)

	alice := createTestPerson(t, st, "alice", "Alice")
	bob := createTestPerson(t, st, "bob", "Bob")
	createTestSample(t, st, "s1", alice.ID)
	createTestSample(t, st, "s2", alice.ID)
	createTestSample(t, st, "s3", bob.ID)

	merged, err := svc.MergePersons(ctx, alice.UID, []string{bob.UID}, false)
	require.NoError(t, err)
	require.NotNil(t, merged)
	require.Equal(t, alice.UID, merged.UID)

	samples, err := st.ListFaceSamples(ctx, &store.FindFaceSample{PersonID: &alice.ID})
	require.NoError(t, err)
	require.Len(t, samples, 3, "secondary samples must survive the merge")

	persons, err := st.ListPersons(ctx, &store.FindPerson{})
	require.NoError(t, err)
	require.Len(t, persons, 1)
}

func TestMergePersonsDedupesParticipationsAndTags(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newTestService(st)

	alice := createTestPerson(t, st, "alice", "Alice")
	bob := createTestPerson(t, st, "bob", "Bob")

	encounter, err := st.CreateEncounter(ctx, &store.Encounter{UID: "picnic", Title: "Picnic"})
	require.NoError(t, err)
	require.NoError(t, st.UpsertParticipant(ctx, encounter.ID, alice.ID))
	require.NoError(t, st.UpsertParticipant(ctx, encounter.ID, bob.ID))

	tag, err := st.UpsertTag(ctx, "tennis")
	require.NoError(t, err)
	require.NoError(t, st.UpsertPersonTag(ctx, alice.ID, tag.ID))
	require.NoError(t, st.UpsertPersonTag(ctx, bob.ID, tag.ID))

	_, err = svc.MergePersons(ctx, alice.UID, []string{bob.UID}, false)
	require.NoError(t, err)

	participants, err := st.ListParticipants(ctx, &store.FindParticipant{EncounterID: &encounter.ID})
	require.NoError(t, err)
	require.Len(t, participants, 1)
	require.Equal(t, alice.ID, participants[0].PersonID)

	tags, err := st.ListTags(ctx, &store.FindTag{PersonID: &alice.ID})
	require.NoError(t, err)
	require.Len(t, tags, 1)
	require.Equal(t, "tennis", tags[0].Name)
}

func TestMergePersonsUnknownPrimaryIsNoop(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newTestService(st)

	bob := createTestPerson(t, st, "bob", "Bob")
	createTestSample(t, st, "s1", bob.ID)

	merged, err := svc.MergePersons(ctx, "ghost", []string{bob.UID}, false)
	require.NoError(t, err, "unknown primary must not be an error")
	require.Nil(t, merged)

	persons, err := st.ListPersons(ctx, &store.FindPerson{})
	require.NoError(t, err)
	require.Len(t, persons, 1, "nothing may be deleted")

	samples, err := st.ListFaceSamples(ctx, &store.FindFaceSample{PersonID: &bob.ID})
	require.NoError(t, err)
	require.Len(t, samples, 1)
}

func TestMergeEncountersDedupesParticipantsAndCombinesNotes(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newTestService(st)

	dana := createTestPerson(t, st, "dana", "Dana")
	first, err := st.CreateEncounter(ctx, &store.Encounter{UID: "park", Title: "Park", Notes: "sunny"})
	require.NoError(t, err)
	second, err := st.CreateEncounter(ctx, &store.Encounter{UID: "park-bis", Title: "Park again", Notes: "rainy"})
	require.NoError(t, err)
	require.NoError(t, st.UpsertParticipant(ctx, first.ID, dana.ID))
	require.NoError(t, st.UpsertParticipant(ctx, second.ID, dana.ID))

	merged, err := svc.MergeEncounters(ctx, first.UID, []string{second.UID}, true)
	require.NoError(t, err)
	require.NotNil(t, merged)
	require.Equal(t, "sunny\n\nrainy", merged.Notes)

	encounters, err := st.ListEncounters(ctx, &store.FindEncounter{})
	require.NoError(t, err)
	require.Len(t, encounters, 1)

	participants, err := st.ListParticipants(ctx, &store.FindParticipant{EncounterID: &first.ID})
	require.NoError(t, err)
	require.Len(t, participants, 1)
}

func TestMergeEncountersUnknownPrimaryIsNoop(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newTestService(st)

	encounter, err := st.CreateEncounter(ctx, &store.Encounter{UID: "park", Title: "Park"})
	require.NoError(t, err)

	merged, err := svc.MergeEncounters(ctx, "ghost", []string{encounter.UID}, true)
	require.NoError(t, err, "unknown primary must not be an error")
	require.Nil(t, merged)

	encounters, err := st.ListEncounters(ctx, &store.FindEncounter{})
	require.NoError(t, err)
	require.Len(t, encounters, 1)
}

func TestMovePhotosSkipsDuplicateAssets(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newTestService(st)

	source, err := st.CreateEncounter(ctx, &store.Encounter{UID: "source", Title: "Source"})
	require.NoError(t, err)
	dest, err := st.CreateEncounter(ctx, &store.Encounter{UID: "dest", Title: "Dest"})
	require.NoError(t, err)

	_, err = st.CreateEncounterPhoto(ctx, &store.EncounterPhoto{UID: "ph1", EncounterID: source.ID, AssetID: "roll-1", TakenTs: 100})
	require.NoError(t, err)
	_, err = st.CreateEncounterPhoto(ctx, &store.EncounterPhoto{UID: "ph2", EncounterID: source.ID, AssetID: "roll-2", TakenTs: 200})
	require.NoError(t, err)
	_, err = st.CreateEncounterPhoto(ctx, &store.EncounterPhoto{UID: "ph3", EncounterID: dest.ID, AssetID: "roll-1", TakenTs: 50})
	require.NoError(t, err)

	result, err := svc.MovePhotos(ctx, []string{"ph1", "ph2"}, source.UID, dest.UID)
	require.NoError(t, err)
	require.Equal(t, 1, result.Moved)
	require.Equal(t, 1, result.Skipped, "same external asset must not be duplicated")
	require.False(t, result.SourceEmpty)

	destPhotos, err := st.ListEncounterPhotos(ctx, &store.FindEncounterPhoto{EncounterID: &dest.ID})
	require.NoError(t, err)
	require.Len(t, destPhotos, 2)

	sourcePhotos, err := st.ListEncounterPhotos(ctx, &store.FindEncounterPhoto{EncounterID: &source.ID})
	require.NoError(t, err)
	require.Len(t, sourcePhotos, 1)
	require.Equal(t, "ph1", sourcePhotos[0].UID)
}

func TestMovePhotosUnknownEncounterIsNoop(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newTestService(st)

	source, err := st.CreateEncounter(ctx, &store.Encounter{UID: "source", Title: "Source"})
	require.NoError(t, err)
	_, err = st.CreateEncounterPhoto(ctx, &store.EncounterPhoto{UID: "ph1", EncounterID: source.ID, AssetID: "roll-1"})
	require.NoError(t, err)

	result, err := svc.MovePhotos(ctx, []string{"ph1"}, source.UID, "ghost")
	require.NoError(t, err)
	require.Equal(t, &MoveResult{}, result)

	photos, err := st.ListEncounterPhotos(ctx, &store.FindEncounterPhoto{EncounterID: &source.ID})
	require.NoError(t, err)
	require.Len(t, photos, 1)
}
