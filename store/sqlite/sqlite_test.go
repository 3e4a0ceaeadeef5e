/*
sqlite_test.go - Tests for the SQLite drug store

Tests for:
- Save/Get/List/Delete against an in-memory database
- Exact fraction and recurrence round trips
- Unvalidated records loaded back through drug.Import
*/
package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxdose/dose-engine/drug"
	"github.com/rxdose/dose-engine/fraction"
	"github.com/rxdose/dose-engine/generic"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleDrug(t *testing.T, id, name string) *drug.Drug {
	t.Helper()
	d := drug.New(name)
	d.ID = drug.DrugID(id)
	require.NoError(t, d.SetForm(drug.FormDrop))
	require.NoError(t, d.SetRefillSize(30))
	supply := fraction.MustParse("12 1/2")
	require.NoError(t, d.SetCurrentSupply(&supply))
	require.NoError(t, d.SetDose(drug.Morning, fraction.MustNew(1, 2)))
	require.NoError(t, d.SetDose(drug.Night, fraction.MustNew(3, 4)))
	require.NoError(t, d.SetRecurrenceKind(drug.KindEveryNDays))
	require.NoError(t, d.SetRecurrenceArg(3))
	require.NoError(t, d.SetRecurrenceOrigin(time.Date(2011, time.September, 7, 0, 0, 0, 0, time.UTC)))
	d.SetComment("after meals")
	return d
}

func TestStore_SaveAndGet(t *testing.T) {
	// GIVEN: A drug with fractional doses and an every-3-days schedule
	store := newTestStore(t)
	ctx := context.Background()
	d := sampleDrug(t, "drug-1", "Aspirin")

	// WHEN: Saving and loading it back
	require.NoError(t, store.Save(ctx, d))
	got, err := store.Get(ctx, "drug-1")
	require.NoError(t, err)

	// THEN: Every field survives exactly
	assert.Equal(t, d.ID, got.ID)
	assert.True(t, d.Equal(got), "loaded %s, saved %s", got, d)
	assert.Equal(t, d.Hash(), got.Hash())

	dose, err := got.Dose(drug.Night)
	require.NoError(t, err)
	assert.Equal(t, fraction.MustNew(3, 4), dose)
	assert.Equal(t, fraction.MustNew(25, 2), got.CurrentSupply())
}

func TestStore_SaveReplaces(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	d := sampleDrug(t, "drug-1", "Aspirin")
	require.NoError(t, store.Save(ctx, d))

	d.SetName("Aspirin 100")
	d.SetActive(false)
	require.NoError(t, d.SetRecurrenceKind(drug.KindDaily))
	require.NoError(t, store.Save(ctx, d))

	got, err := store.Get(ctx, "drug-1")
	require.NoError(t, err)
	assert.Equal(t, "Aspirin 100", got.Name())
	assert.False(t, got.Active())
	assert.Equal(t, drug.KindDaily, got.RecurrenceKind())
	assert.True(t, got.RecurrenceOrigin().IsZero())

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestStore_SaveRequiresID(t *testing.T) {
	store := newTestStore(t)
	err := store.Save(context.Background(), drug.New("no id"))
	assert.ErrorIs(t, err, generic.ErrInvalidArgument)
}

func TestStore_List_OrderedByName(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for id, name := range map[string]string{"c": "Zinc", "a": "Aspirin", "b": "Metformin"} {
		require.NoError(t, store.Save(ctx, sampleDrug(t, id, name)))
	}

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Aspirin", all[0].Name())
	assert.Equal(t, "Metformin", all[1].Name())
	assert.Equal(t, "Zinc", all[2].Name())
}

func TestStore_NotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, generic.ErrDrugNotFound)

	err = store.Delete(ctx, "missing")
	assert.ErrorIs(t, err, generic.ErrDrugNotFound)
}

func TestStore_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, sampleDrug(t, "drug-1", "Aspirin")))

	require.NoError(t, store.Delete(ctx, "drug-1"))

	_, err := store.Get(ctx, "drug-1")
	assert.ErrorIs(t, err, generic.ErrDrugNotFound)
}

func TestStore_ImportedRecordsSurvive(t *testing.T) {
	// GIVEN: A legacy record with an unknown recurrence code
	store := newTestStore(t)
	ctx := context.Background()
	legacy := drug.Import(drug.Record{
		ID:             "legacy",
		Name:           "Legacy",
		Active:         true,
		RecurrenceKind: 9,
		RecurrenceArg:  42,
	})

	// WHEN: Storing and loading it
	require.NoError(t, store.Save(ctx, legacy))
	got, err := store.Get(ctx, "legacy")
	require.NoError(t, err)

	// THEN: The raw values are kept and due queries report the bad state
	assert.Equal(t, drug.RecurrenceKind(9), got.RecurrenceKind())
	assert.Equal(t, int64(42), got.RecurrenceArg())
	_, err = got.HasDoseOnDate(time.Date(2011, time.September, 7, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, generic.ErrInvalidState)
}
