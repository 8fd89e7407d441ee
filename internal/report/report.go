package report

import (
	"math"
	"time"

	"nbbang/internal/core"
)

// Settlement is one exported settlement report: a snapshot of who owes what
// at the moment a meeting was saved.
type Settlement struct {
	EntryCode string
	Title     string
	SavedAt   time.Time
	TotalUse  int
	Rows      []Row
}

// Row is one active participant's line in the report. Share is the rounded
// amount the person owes across all places; Net is upfront minus share.
type Row struct {
	UserName string
	UpFront  int
	Share    int
	Net      int
}

// Build projects a meeting into its settlement report. Unnamed participants
// never appear; they carry no money either way.
func Build(m core.Meeting, savedAt time.Time) Settlement {
	balances := core.ComputeBalances(m.People, m.History)
	totals := core.ComputeTotals(m.People, m.History)

	rows := make([]Row, 0, len(m.People))
	for _, p := range core.ActivePeople(m.People) {
		share := int(math.Round(balances[p.UserID]))
		rows = append(rows, Row{
			UserName: p.UserName,
			UpFront:  p.UpFrontPayment,
			Share:    share,
			Net:      p.UpFrontPayment - share,
		})
	}

	return Settlement{
		EntryCode: m.MeetEntryCode,
		Title:     m.MeetTitle,
		SavedAt:   savedAt,
		TotalUse:  totals.TotalUse,
		Rows:      rows,
	}
}
