package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddPerson(t *testing.T) {
	people := []Person{person("a", "A", 100)}

	next := AddPerson(people)

	require.Len(t, next, 2)
	assert.Len(t, people, 1, "input collection must stay untouched")
	assert.NotEmpty(t, next[1].UserID)
	assert.Empty(t, next[1].UserName)
	assert.Zero(t, next[1].UpFrontPayment)
}

func TestUpdatePerson(t *testing.T) {
	people := []Person{person("a", "A", 100), person("b", "B", 200)}

	next, err := UpdatePerson(people, person("b", "Bora", 500))

	require.NoError(t, err)
	assert.Equal(t, "Bora", next[1].UserName)
	assert.Equal(t, 500, next[1].UpFrontPayment)
	assert.Equal(t, "B", people[1].UserName, "input collection must stay untouched")

	_, err = UpdatePerson(people, person("nope", "X", 0))
	assert.ErrorIs(t, err, ErrPersonNotFound)
}

func TestRemovePerson(t *testing.T) {
	people := []Person{person("a", "A", 0), person("b", "B", 0)}

	next := RemovePerson(people, "a")

	require.Len(t, next, 1)
	assert.Equal(t, "b", next[0].UserID)
}

func TestAddDetail(t *testing.T) {
	history := []ExpensePlace{{PlaceID: "p1", PlaceName: "Dinner"}}

	next, err := AddDetail(history, "p1")

	require.NoError(t, err)
	require.Len(t, next[0].PlaceDetails, 1)
	assert.NotEmpty(t, next[0].PlaceDetails[0].PlaceItemID)
	assert.Empty(t, history[0].PlaceDetails, "input collection must stay untouched")

	_, err = AddDetail(history, "missing")
	assert.ErrorIs(t, err, ErrPlaceNotFound)
}

func TestUpdateDetail_SyncsTotalInDetailMode(t *testing.T) {
	history := []ExpensePlace{{
		PlaceID: "p1", PlaceName: "Dinner", IsDetailMode: true, PlaceTotalPrice: 1000,
		PlaceDetails: []ExpenseItem{
			{PlaceItemID: "i1", PlaceItemName: "Rice", PlaceItemPrice: 1000},
		},
	}}

	next, err := UpdateDetail(history, "p1", ExpenseItem{
		PlaceItemID: "i1", PlaceItemName: "Rice", PlaceItemPrice: 2500,
	})

	require.NoError(t, err)
	assert.Equal(t, 2500, next[0].PlaceTotalPrice)
	assert.Equal(t, 1000, history[0].PlaceTotalPrice)
}

func TestToggleDetailMode_RoundTripRestoresTotal(t *testing.T) {
	history := []ExpensePlace{{
		PlaceID: "p1", PlaceName: "Dinner", PlaceTotalPrice: 20000,
		PlaceDetails: []ExpenseItem{
			{PlaceItemID: "i1", PlaceItemName: "Meat", PlaceItemPrice: 6000},
		},
	}}

	on, err := ToggleDetailMode(history, "p1")
	require.NoError(t, err)
	assert.True(t, on[0].IsDetailMode)
	assert.Equal(t, 20000, on[0].PlacePrevTotalPrice, "manual total parked in the backup")
	assert.Equal(t, 6000, on[0].PlaceTotalPrice, "total overwritten by the item sum")

	off, err := ToggleDetailMode(on, "p1")
	require.NoError(t, err)
	assert.False(t, off[0].IsDetailMode)
	assert.Equal(t, 20000, off[0].PlaceTotalPrice, "manual total restored")
}

func TestSetPlaceExclusions(t *testing.T) {
	people := []Person{person("a", "A", 0), person("b", "B", 0)}
	history := []ExpensePlace{{PlaceID: "p1", PlaceName: "Dinner", PlaceTotalPrice: 100}}

	next, err := SetPlaceExclusions(people, history, "p1", []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, next[0].PlaceExcludeUser)

	_, err = SetPlaceExclusions(people, history, "p1", []string{"a", "b"})
	assert.ErrorIs(t, err, ErrAllExcluded, "excluding everyone must be rejected")
	assert.Empty(t, history[0].PlaceExcludeUser, "rejected edit must not mutate state")
}

func TestSetDetailExclusions_CountsInheritedExclusions(t *testing.T) {
	people := []Person{person("a", "A", 0), person("b", "B", 0)}
	history := []ExpensePlace{{
		PlaceID: "p1", PlaceName: "Dinner",
		PlaceExcludeUser: []string{"a"},
		IsDetailMode:     true,
		PlaceDetails: []ExpenseItem{
			{PlaceItemID: "i1", PlaceItemName: "Meat", PlaceItemPrice: 100},
		},
	}}

	// a is already excluded at the place level, so excluding b empties the item.
	_, err := SetDetailExclusions(people, history, "p1", "i1", []string{"b"})
	assert.ErrorIs(t, err, ErrAllExcluded)

	next, err := SetDetailExclusions(people, history, "p1", "i1", []string{})
	require.NoError(t, err)
	assert.Empty(t, next[0].PlaceDetails[0].PlaceItemExcludeUser)
}

func TestFilterPeopleForSave(t *testing.T) {
	people := []Person{
		person("a", "A", 100),
		person("blank", " ", 0),
		person("b", "B", 0),
	}

	kept := FilterPeopleForSave(people)

	require.Len(t, kept, 2)
	assert.Equal(t, "a", kept[0].UserID)
	assert.Equal(t, "b", kept[1].UserID)
}

func TestFilterHistoryForSave(t *testing.T) {
	history := []ExpensePlace{
		{PlaceID: "unnamed", PlaceTotalPrice: 100},
		{
			PlaceID: "p1", PlaceName: "Dinner", IsDetailMode: true,
			PlaceDetails: []ExpenseItem{
				{PlaceItemID: "i1", PlaceItemName: "Meat", PlaceItemPrice: 100},
				{PlaceItemID: "i2", PlaceItemPrice: 50}, // unnamed, dropped
			},
		},
		{
			PlaceID: "p2", PlaceName: "Cafe", IsDetailMode: true,
			PlaceDetails: []ExpenseItem{
				{PlaceItemID: "i3", PlaceItemPrice: 50}, // unnamed, dropped
			},
		},
	}

	kept := FilterHistoryForSave(history)

	require.Len(t, kept, 2)
	assert.Equal(t, "p1", kept[0].PlaceID)
	require.Len(t, kept[0].PlaceDetails, 1)
	assert.True(t, kept[0].IsDetailMode, "detail mode survives when named items remain")
	assert.Empty(t, kept[1].PlaceDetails)
	assert.False(t, kept[1].IsDetailMode, "detail mode forced off when filtering empties the list")
}
