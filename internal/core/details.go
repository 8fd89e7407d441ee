package core

// DetailKind classifies one row of a per-user expense breakdown.
type DetailKind string

const (
	// DetailFlat is a share of a flat-mode place total.
	DetailFlat DetailKind = "flat"
	// DetailItem is a share of a single itemized sub-charge.
	DetailItem DetailKind = "item"
	// DetailRemainder is a share of a detail-mode place's unclassified remainder.
	DetailRemainder DetailKind = "remainder"
)

// ExpenseDetailRow is one named contribution to a user's balance.
type ExpenseDetailRow struct {
	PlaceID    string     `json:"placeId"`
	PlaceName  string     `json:"placeName"`
	Label      string     `json:"label"`
	Kind       DetailKind `json:"kind"`
	Amount     float64    `json:"amount"`
	SplitCount int        `json:"splitCount"`
}

// UserExpenseDetails reconstructs the contributions that fed one user's
// balance: one row per itemized detail the user participates in, one row per
// unclassified remainder, one row per flat-mode place. It walks the history
// with the same participant derivation as ComputeBalances, so for any user
// the row amounts sum to that user's balance. It exists purely to let a user
// audit why their balance is what it is.
func UserExpenseDetails(userID string, people []Person, history []ExpensePlace) []ExpenseDetailRow {
	rows := []ExpenseDetailRow{}
	active := ActivePeople(people)

	for _, place := range history {
		placeParticipants := participantsAfter(active, place.PlaceExcludeUser)
		if len(placeParticipants) == 0 || !containsPerson(placeParticipants, userID) {
			continue
		}

		if !place.IsDetailMode {
			rows = append(rows, ExpenseDetailRow{
				PlaceID:    place.PlaceID,
				PlaceName:  place.PlaceName,
				Label:      place.PlaceName,
				Kind:       DetailFlat,
				Amount:     float64(place.PlaceTotalPrice) / float64(len(placeParticipants)),
				SplitCount: len(placeParticipants),
			})
			continue
		}

		totalDetailsPrice := 0
		for _, item := range place.PlaceDetails {
			itemParticipants := participantsAfter(placeParticipants, item.PlaceItemExcludeUser)
			if len(itemParticipants) == 0 {
				continue
			}
			totalDetailsPrice += item.PlaceItemPrice
			if !containsPerson(itemParticipants, userID) {
				continue
			}
			rows = append(rows, ExpenseDetailRow{
				PlaceID:    place.PlaceID,
				PlaceName:  place.PlaceName,
				Label:      item.PlaceItemName,
				Kind:       DetailItem,
				Amount:     float64(item.PlaceItemPrice) / float64(len(itemParticipants)),
				SplitCount: len(itemParticipants),
			})
		}

		if remaining := place.PlaceTotalPrice - totalDetailsPrice; remaining > 0 {
			rows = append(rows, ExpenseDetailRow{
				PlaceID:    place.PlaceID,
				PlaceName:  place.PlaceName,
				Label:      place.PlaceName,
				Kind:       DetailRemainder,
				Amount:     float64(remaining) / float64(len(placeParticipants)),
				SplitCount: len(placeParticipants),
			})
		}
	}

	return rows
}

func containsPerson(people []Person, userID string) bool {
	for _, p := range people {
		if p.UserID == userID {
			return true
		}
	}
	return false
}
