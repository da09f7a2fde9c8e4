package domain_test

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/travel-planner/internal/domain"
)

// docWithActivities returns a document whose itinerary holds one activity per id,
// in the given order.
func docWithActivities(ids ...int64) domain.Document {
	d := domain.NewDocument()
	for _, id := range ids {
		d.UpsertActivity(domain.Activity{ID: id, Date: "2024-01-10", Name: "a"})
	}
	return d
}

func TestUpsert_AppendsNewRecord(t *testing.T) {
	d := docWithActivities(1, 2)

	d.UpsertActivity(domain.Activity{ID: 3, Name: "Night Market"})

	assert.Equal(t, []int64{1, 2, 3}, d.IDs(domain.CollectionItinerary))
}

func TestUpsert_ReplacesInPlace(t *testing.T) {
	d := docWithActivities(1, 2, 3)

	d.UpsertActivity(domain.Activity{ID: 2, Name: "Edited"})

	require.Equal(t, []int64{1, 2, 3}, d.IDs(domain.CollectionItinerary))
	assert.Equal(t, "Edited", d.Itinerary[1].Name)
}

func TestUpsert_InfoRecordGoesToItsCategory(t *testing.T) {
	d := domain.NewDocument()

	d.UpsertInfoRecord(domain.InfoCar, domain.InfoRecord{ID: 7, Company: "Hertz"})

	assert.Equal(t, []int64{7}, d.IDs(domain.CollectionCar))
	assert.Empty(t, d.IDs(domain.CollectionFlight))
}

func TestRemove_IsIdempotent(t *testing.T) {
	once := docWithActivities(1, 2, 3)
	once.Remove(domain.CollectionItinerary, 2)

	twice := docWithActivities(1, 2, 3)
	twice.Remove(domain.CollectionItinerary, 2)
	twice.Remove(domain.CollectionItinerary, 2)

	assert.Equal(t, []int64{1, 3}, once.IDs(domain.CollectionItinerary))
	assert.Equal(t, once.IDs(domain.CollectionItinerary), twice.IDs(domain.CollectionItinerary))
}

func TestRemove_AbsentIDIsNoop(t *testing.T) {
	d := docWithActivities(1, 2)

	d.Remove(domain.CollectionItinerary, 99)

	assert.Equal(t, []int64{1, 2}, d.IDs(domain.CollectionItinerary))
}

func TestReorder(t *testing.T) {
	tests := []struct {
		name     string
		id       int64
		beforeID int64
		want     []int64
	}{
		{name: "move up", id: 4, beforeID: 2, want: []int64{1, 4, 2, 3}},
		{name: "move down", id: 1, beforeID: 4, want: []int64{2, 3, 1, 4}},
		{name: "move to front", id: 3, beforeID: 1, want: []int64{3, 1, 2, 4}},
		{name: "already in place", id: 1, beforeID: 2, want: []int64{1, 2, 3, 4}},
		{name: "same id", id: 2, beforeID: 2, want: []int64{1, 2, 3, 4}},
		{name: "absent id", id: 9, beforeID: 2, want: []int64{1, 2, 3, 4}},
		{name: "absent beforeID", id: 2, beforeID: 9, want: []int64{1, 2, 3, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := docWithActivities(1, 2, 3, 4)

			d.Reorder(domain.CollectionItinerary, tt.id, tt.beforeID)

			assert.Equal(t, tt.want, d.IDs(domain.CollectionItinerary))
		})
	}
}

// TestReorder_PlacesRecordImmediatelyBeforeTarget checks every (id, beforeID)
// pair: length is preserved and id ends up directly in front of beforeID.
func TestReorder_PlacesRecordImmediatelyBeforeTarget(t *testing.T) {
	all := []int64{10, 20, 30, 40, 50}
	for _, id := range all {
		for _, before := range all {
			if id == before {
				continue
			}
			d := docWithActivities(all...)
			d.Reorder(domain.CollectionItinerary, id, before)

			got := d.IDs(domain.CollectionItinerary)
			require.Len(t, got, len(all))
			pos := indexOf(got, id)
			require.Less(t, pos+1, len(got))
			assert.Equal(t, before, got[pos+1], "reorder %d before %d gave %v", id, before, got)
		}
	}
}

// TestOperations_KeepIDsUnique drives a random sequence of upsert, remove and
// reorder calls and checks no id ever appears twice.
func TestOperations_KeepIDsUnique(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	d := domain.NewDocument()

	for i := 0; i < 2000; i++ {
		id := r.Int64N(20) + 1
		switch r.IntN(3) {
		case 0:
			d.UpsertBudgetItem(domain.BudgetItem{ID: id, Category: domain.BudgetFood, Payment: domain.PaymentCash, Amount: id})
		case 1:
			d.Remove(domain.CollectionBudget, id)
		case 2:
			d.Reorder(domain.CollectionBudget, id, r.Int64N(20)+1)
		}

		seen := map[int64]bool{}
		for _, got := range d.IDs(domain.CollectionBudget) {
			require.False(t, seen[got], "duplicate id %d after step %d", got, i)
			seen[got] = true
		}
	}
}

func TestNextID_AvoidsCollisions(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)

	assert.Equal(t, now.UnixMilli(), domain.NextID(now, []domain.Activity{{ID: 1}}))
	assert.Equal(t, now.UnixMilli()+1, domain.NextID(now, []domain.Activity{{ID: now.UnixMilli()}}))
	assert.Equal(t, now.UnixMilli()+6, domain.NextID(now, []domain.Activity{{ID: now.UnixMilli() + 5}}))
}

func TestCollection_Valid(t *testing.T) {
	assert.True(t, domain.CollectionItinerary.Valid())
	assert.True(t, domain.CollectionHotel.Valid())
	assert.False(t, domain.Collection("stops").Valid())
}

func indexOf(ids []int64, id int64) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
