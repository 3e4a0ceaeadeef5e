package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxdose/dose-engine/drug"
	"github.com/rxdose/dose-engine/fraction"
	"github.com/rxdose/dose-engine/generic"
)

func TestMemory_SaveGetDelete(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	d := drug.New("Aspirin")
	d.ID = "drug-1"
	require.NoError(t, d.SetDose(drug.Morning, fraction.MustNew(1, 2)))
	require.NoError(t, m.Save(ctx, d))

	got, err := m.Get(ctx, "drug-1")
	require.NoError(t, err)
	assert.True(t, d.Equal(got))

	require.NoError(t, m.Delete(ctx, "drug-1"))
	_, err = m.Get(ctx, "drug-1")
	assert.ErrorIs(t, err, generic.ErrDrugNotFound)
	assert.ErrorIs(t, m.Delete(ctx, "drug-1"), generic.ErrDrugNotFound)
}

func TestMemory_ReturnsCopies(t *testing.T) {
	// GIVEN: A saved drug
	m := NewMemory()
	ctx := context.Background()
	d := drug.New("Aspirin")
	d.ID = "drug-1"
	require.NoError(t, m.Save(ctx, d))

	// WHEN: Mutating both the original and a loaded copy
	d.SetName("changed")
	got, err := m.Get(ctx, "drug-1")
	require.NoError(t, err)
	got.SetActive(false)

	// THEN: The stored record is untouched
	again, err := m.Get(ctx, "drug-1")
	require.NoError(t, err)
	assert.Equal(t, "Aspirin", again.Name())
	assert.True(t, again.Active())
}

func TestMemory_SaveRequiresID(t *testing.T) {
	err := NewMemory().Save(context.Background(), drug.New("x"))
	assert.ErrorIs(t, err, generic.ErrInvalidArgument)
}

func TestMemory_ListOrder(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	for _, tc := range []struct{ id, name string }{{"3", "b"}, {"2", "a"}, {"1", "b"}} {
		d := drug.New(tc.name)
		d.ID = drug.DrugID(tc.id)
		require.NoError(t, m.Save(ctx, d))
	}

	all, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, drug.DrugID("2"), all[0].ID)
	assert.Equal(t, drug.DrugID("1"), all[1].ID)
	assert.Equal(t, drug.DrugID("3"), all[2].ID)
}
