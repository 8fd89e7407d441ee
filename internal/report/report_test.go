package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nbbang/internal/core"
)

func TestBuild(t *testing.T) {
	meeting := core.Meeting{
		MeetTitle:     "Team dinner",
		MeetEntryCode: "ABC123",
		People: []core.Person{
			{UserID: "a", UserName: "A", UpFrontPayment: 30000},
			{UserID: "b", UserName: "B"},
			{UserID: "draft"}, // unnamed, stays out of the report
		},
		History: []core.ExpensePlace{
			{PlaceID: "p1", PlaceName: "Dinner", PlaceTotalPrice: 20000},
		},
	}
	savedAt := time.Date(2024, 5, 1, 19, 0, 0, 0, time.UTC)

	r := Build(meeting, savedAt)

	assert.Equal(t, "ABC123", r.EntryCode)
	assert.Equal(t, "Team dinner", r.Title)
	assert.Equal(t, savedAt, r.SavedAt)
	assert.Equal(t, 20000, r.TotalUse)

	require.Len(t, r.Rows, 2)
	assert.Equal(t, Row{UserName: "A", UpFront: 30000, Share: 10000, Net: 20000}, r.Rows[0])
	assert.Equal(t, Row{UserName: "B", UpFront: 0, Share: 10000, Net: -10000}, r.Rows[1])
}

func TestBuild_RoundsShares(t *testing.T) {
	meeting := core.Meeting{
		People: []core.Person{
			{UserID: "a", UserName: "A"},
			{UserID: "b", UserName: "B"},
			{UserID: "c", UserName: "C"},
		},
		History: []core.ExpensePlace{
			{PlaceID: "p1", PlaceName: "Lunch", PlaceTotalPrice: 10000},
		},
	}

	r := Build(meeting, time.Now())

	require.Len(t, r.Rows, 3)
	for _, row := range r.Rows {
		assert.Equal(t, 3333, row.Share, "10000/3 rounds down per person")
		assert.Equal(t, -3333, row.Net)
	}
}
