package core

import "strings"

// FilterPeopleForSave drops participants that never got a name. The returned
// slice is fresh; the input is untouched.
func FilterPeopleForSave(people []Person) []Person {
	kept := make([]Person, 0, len(people))
	for _, p := range people {
		if strings.TrimSpace(p.UserName) != "" {
			kept = append(kept, p)
		}
	}
	return kept
}

// FilterHistoryForSave drops unnamed places, filters each place's detail list
// to named items, and forces detail mode off when that filtering empties the
// list (a detail mode with no items has nothing to itemize).
func FilterHistoryForSave(history []ExpensePlace) []ExpensePlace {
	kept := make([]ExpensePlace, 0, len(history))
	for _, place := range history {
		if strings.TrimSpace(place.PlaceName) == "" {
			continue
		}
		details := make([]ExpenseItem, 0, len(place.PlaceDetails))
		for _, d := range place.PlaceDetails {
			if strings.TrimSpace(d.PlaceItemName) != "" {
				details = append(details, d)
			}
		}
		place.PlaceDetails = details
		if len(details) == 0 && place.IsDetailMode {
			place.IsDetailMode = false
		}
		kept = append(kept, place)
	}
	return kept
}
