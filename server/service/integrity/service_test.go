package integrity

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

func TestCleanAndFilterRemovesOrphansAndExcludesEmptiedPersons(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newTestService(st)

	alice, err := st.CreatePerson(ctx, &store.Person{UID: "alice", Name: "Alice"})
	require.NoError(t, err)
	bob, err := st.CreatePerson(ctx, &store.Person{UID: "bob", Name: "Bob"})
	require.NoError(t, err)

	// The box alice's sample was cut from has since been relabeled to bob.
	boxUID := "box-1"
	_, err = st.CreateFaceSample(ctx, &store.FaceSample{
		UID:         "s-alice",
		PersonID:    alice.ID,
		Embedding:   []float32{1, 0, 0, 0},
		OwnerBoxUID: &boxUID,
	})
	require.NoError(t, err)
	_, err = st.CreateFaceSample(ctx, &store.FaceSample{
		UID:       "s-bob",
		PersonID:  bob.ID,
		Embedding: []float32{0, 1, 0, 0},
	})
	require.NoError(t, err)

	encounter, err := st.CreateEncounter(ctx, &store.Encounter{UID: "picnic", Title: "Picnic"})
	require.NoError(t, err)
	_, err = st.CreateEncounterPhoto(ctx, &store.EncounterPhoto{
		UID:         "ph1",
		EncounterID: encounter.ID,
		Boxes:       []store.BoundingBox{{UID: boxUID, PersonUID: &bob.UID}},
	})
	require.NoError(t, err)

	report, matchable, err := svc.CleanAndFilter(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, report.OrphansRemoved)
	require.Equal(t, 1, report.PersonsAffected)

	require.Len(t, matchable, 1, "a person emptied by cleanup is not matchable")
	require.Equal(t, bob.UID, matchable[0].UID)

	samples, err := st.ListFaceSamples(ctx, &store.FindFaceSample{PersonID: &alice.ID})
	require.NoError(t, err)
	require.Empty(t, samples)
}

func TestCleanAndFilterSecondRunIsNoop(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newTestService(st)

	person, err := st.CreatePerson(ctx, &store.Person{UID: "alice", Name: "Alice"})
	require.NoError(t, err)
	boxUID := "box-1"
	_, err = st.CreateFaceSample(ctx, &store.FaceSample{
		UID:         "s1",
		PersonID:    person.ID,
		Embedding:   []float32{1, 0, 0, 0},
		OwnerBoxUID: &boxUID,
	})
	require.NoError(t, err)

	encounter, err := st.CreateEncounter(ctx, &store.Encounter{UID: "picnic", Title: "Picnic"})
	require.NoError(t, err)
	_, err = st.CreateEncounterPhoto(ctx, &store.EncounterPhoto{
		UID:         "ph1",
		EncounterID: encounter.ID,
		// Cleared label: the box belongs to nobody now.
		Boxes: []store.BoundingBox{{UID: boxUID}},
	})
	require.NoError(t, err)

	first, _, err := svc.CleanAndFilter(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, first.OrphansRemoved)

	second, matchable, err := svc.CleanAndFilter(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, second.OrphansRemoved)
	require.Equal(t, 0, second.PersonsAffected)
	require.Empty(t, matchable)
}

func TestCleanAndFilterExcludesPersonsWithoutSamples(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newTestService(st)

	sampled, err := st.CreatePerson(ctx, &store.Person{UID: "sampled", Name: "Sampled"})
	require.NoError(t, err)
	_, err = st.CreatePerson(ctx, &store.Person{UID: "faceless", Name: "Faceless"})
	require.NoError(t, err)
	_, err = st.CreateFaceSample(ctx, &store.FaceSample{
		UID:       "s1",
		PersonID:  sampled.ID,
		Embedding: []float32{1, 0, 0, 0},
	})
	require.NoError(t, err)

	report, matchable, err := svc.CleanAndFilter(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, report.OrphansRemoved)
	require.Len(t, matchable, 1)
	require.Equal(t, sampled.UID, matchable[0].UID)
}
