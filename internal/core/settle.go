package core

import "math"

// Totals is the meeting-level money summary.
type Totals struct {
	// TotalMoney is the sum of upfront payments over all people, active or not.
	TotalMoney int
	// TotalUse is the sum of place totals over all history entries.
	TotalUse int
	// HaveMoney is what remains of the upfront pool after all expenses.
	HaveMoney int
}

// ComputeTotals sums upfront payments and place totals. No participant
// filtering happens here; inactive people still count toward the pool.
func ComputeTotals(people []Person, history []ExpensePlace) Totals {
	t := Totals{}
	for _, p := range people {
		t.TotalMoney += p.UpFrontPayment
	}
	for _, place := range history {
		t.TotalUse += place.PlaceTotalPrice
	}
	t.HaveMoney = t.TotalMoney - t.TotalUse
	return t
}

// ComputeBalances returns how much each participant owes across the whole
// history, keyed by user id. Ids that received no contribution are absent;
// callers treat a missing id as zero.
//
// The engine works in real numbers throughout. Rounding per-item shares here
// would compound error across many small splits, so it happens only at the
// presentation boundary (see Net).
//
// For each place, independently:
//   - participants are the active people minus the place's exclusion set;
//     a place with no participants contributes nothing (no division by zero)
//   - flat mode splits the place total evenly across the participants
//   - detail mode splits each item across the participants minus the item's
//     own exclusion set, then splits any positive unclassified remainder
//     (place total minus the distributed item sum) across the full
//     participant set
//
// An item whose eligible participants come up empty is dropped from both the
// itemized split and the remainder base; its price is forgiven, not
// redistributed. That matches the historical behavior and is deliberate.
func ComputeBalances(people []Person, history []ExpensePlace) map[string]float64 {
	balances := make(map[string]float64)
	active := ActivePeople(people)

	for _, place := range history {
		placeParticipants := participantsAfter(active, place.PlaceExcludeUser)
		if len(placeParticipants) == 0 {
			continue
		}

		if !place.IsDetailMode {
			share := float64(place.PlaceTotalPrice) / float64(len(placeParticipants))
			for _, p := range placeParticipants {
				balances[p.UserID] += share
			}
			continue
		}

		totalDetailsPrice := 0
		for _, item := range place.PlaceDetails {
			itemParticipants := participantsAfter(placeParticipants, item.PlaceItemExcludeUser)
			if len(itemParticipants) == 0 {
				continue
			}
			share := float64(item.PlaceItemPrice) / float64(len(itemParticipants))
			for _, p := range itemParticipants {
				balances[p.UserID] += share
			}
			totalDetailsPrice += item.PlaceItemPrice
		}

		if remaining := place.PlaceTotalPrice - totalDetailsPrice; remaining > 0 {
			share := float64(remaining) / float64(len(placeParticipants))
			for _, p := range placeParticipants {
				balances[p.UserID] += share
			}
		}
	}

	return balances
}

// Net is a person's settlement position: upfront payment minus the rounded
// balance owed. Positive means the person gets money back.
func Net(p Person, balances map[string]float64) int {
	return p.UpFrontPayment - int(math.Round(balances[p.UserID]))
}
