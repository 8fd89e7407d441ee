package core

// Collection update operations. Every operation returns a fresh collection and
// leaves its inputs untouched, so callers can hand the result to a session as
// an atomic whole-collection replacement and keep baseline diffing cheap.

// AddPerson appends a default participant.
func AddPerson(people []Person) []Person {
	next := make([]Person, 0, len(people)+1)
	next = append(next, people...)
	return append(next, NewPerson())
}

// UpdatePerson replaces the entry matching the given person's id.
func UpdatePerson(people []Person, updated Person) ([]Person, error) {
	next := make([]Person, len(people))
	found := false
	for i, p := range people {
		if p.UserID == updated.UserID {
			next[i] = updated
			found = true
		} else {
			next[i] = p
		}
	}
	if !found {
		return nil, ErrPersonNotFound
	}
	return next, nil
}

// RemovePerson filters the participant with the given id out of the collection.
func RemovePerson(people []Person, userID string) []Person {
	next := make([]Person, 0, len(people))
	for _, p := range people {
		if p.UserID != userID {
			next = append(next, p)
		}
	}
	return next
}

// AddPlace appends a default history entry.
func AddPlace(history []ExpensePlace) []ExpensePlace {
	next := make([]ExpensePlace, 0, len(history)+1)
	next = append(next, history...)
	return append(next, NewPlace())
}

// UpdatePlace replaces the entry matching the given place's id.
func UpdatePlace(history []ExpensePlace, updated ExpensePlace) ([]ExpensePlace, error) {
	next := make([]ExpensePlace, len(history))
	found := false
	for i, p := range history {
		if p.PlaceID == updated.PlaceID {
			next[i] = updated
			found = true
		} else {
			next[i] = p
		}
	}
	if !found {
		return nil, ErrPlaceNotFound
	}
	return next, nil
}

// RemovePlace filters the history entry with the given id out of the collection.
func RemovePlace(history []ExpensePlace, placeID string) []ExpensePlace {
	next := make([]ExpensePlace, 0, len(history))
	for _, p := range history {
		if p.PlaceID != placeID {
			next = append(next, p)
		}
	}
	return next
}

// AddDetail appends a default sub-charge to the given place's detail list.
func AddDetail(history []ExpensePlace, placeID string) ([]ExpensePlace, error) {
	return mapPlace(history, placeID, func(p ExpensePlace) (ExpensePlace, error) {
		details := make([]ExpenseItem, 0, len(p.PlaceDetails)+1)
		details = append(details, p.PlaceDetails...)
		p.PlaceDetails = append(details, NewDetail())
		if p.IsDetailMode {
			p.PlaceTotalPrice = p.DetailsSum()
		}
		return p, nil
	})
}

// UpdateDetail replaces the sub-charge matching the given item's id. While the
// place is in detail mode its total tracks the item sum.
func UpdateDetail(history []ExpensePlace, placeID string, updated ExpenseItem) ([]ExpensePlace, error) {
	return mapPlace(history, placeID, func(p ExpensePlace) (ExpensePlace, error) {
		details := make([]ExpenseItem, len(p.PlaceDetails))
		found := false
		for i, d := range p.PlaceDetails {
			if d.PlaceItemID == updated.PlaceItemID {
				details[i] = updated
				found = true
			} else {
				details[i] = d
			}
		}
		if !found {
			return p, ErrPlaceNotFound
		}
		p.PlaceDetails = details
		if p.IsDetailMode {
			p.PlaceTotalPrice = p.DetailsSum()
		}
		return p, nil
	})
}

// RemoveDetail filters the sub-charge with the given id out of the place.
func RemoveDetail(history []ExpensePlace, placeID, itemID string) ([]ExpensePlace, error) {
	return mapPlace(history, placeID, func(p ExpensePlace) (ExpensePlace, error) {
		details := make([]ExpenseItem, 0, len(p.PlaceDetails))
		for _, d := range p.PlaceDetails {
			if d.PlaceItemID != itemID {
				details = append(details, d)
			}
		}
		p.PlaceDetails = details
		if p.IsDetailMode {
			p.PlaceTotalPrice = p.DetailsSum()
		}
		return p, nil
	})
}

// ToggleDetailMode flips a place between flat-total and itemized splitting.
// Turning detail mode on parks the manually entered total in
// PlacePrevTotalPrice and overwrites the total with the item sum; turning it
// off restores the parked total.
func ToggleDetailMode(history []ExpensePlace, placeID string) ([]ExpensePlace, error) {
	return mapPlace(history, placeID, func(p ExpensePlace) (ExpensePlace, error) {
		if p.IsDetailMode {
			p.IsDetailMode = false
			p.PlaceTotalPrice = p.PlacePrevTotalPrice
		} else {
			p.IsDetailMode = true
			p.PlacePrevTotalPrice = p.PlaceTotalPrice
			p.PlaceTotalPrice = p.DetailsSum()
		}
		return p, nil
	})
}

// SetPlaceExclusions replaces a place's exclusion set. The edit is rejected
// with ErrAllExcluded when it would leave the place without a single eligible
// participant.
func SetPlaceExclusions(people []Person, history []ExpensePlace, placeID string, excluded []string) ([]ExpensePlace, error) {
	if len(participantsAfter(ActivePeople(people), excluded)) == 0 {
		return nil, ErrAllExcluded
	}
	return mapPlace(history, placeID, func(p ExpensePlace) (ExpensePlace, error) {
		p.PlaceExcludeUser = append([]string{}, excluded...)
		return p, nil
	})
}

// SetDetailExclusions replaces a sub-charge's exclusion set. Place-level
// exclusions stay in force on top of the given set; the edit is rejected with
// ErrAllExcluded when the combined exclusions would leave the item without an
// eligible participant.
func SetDetailExclusions(people []Person, history []ExpensePlace, placeID, itemID string, excluded []string) ([]ExpensePlace, error) {
	place, ok := findPlace(history, placeID)
	if !ok {
		return nil, ErrPlaceNotFound
	}
	base := participantsAfter(ActivePeople(people), place.PlaceExcludeUser)
	if len(participantsAfter(base, excluded)) == 0 {
		return nil, ErrAllExcluded
	}
	return mapPlace(history, placeID, func(p ExpensePlace) (ExpensePlace, error) {
		details := make([]ExpenseItem, len(p.PlaceDetails))
		found := false
		for i, d := range p.PlaceDetails {
			if d.PlaceItemID == itemID {
				d.PlaceItemExcludeUser = append([]string{}, excluded...)
				found = true
			}
			details[i] = d
		}
		if !found {
			return p, ErrPlaceNotFound
		}
		p.PlaceDetails = details
		return p, nil
	})
}

func mapPlace(history []ExpensePlace, placeID string, fn func(ExpensePlace) (ExpensePlace, error)) ([]ExpensePlace, error) {
	next := make([]ExpensePlace, len(history))
	found := false
	for i, p := range history {
		if p.PlaceID == placeID {
			updated, err := fn(p)
			if err != nil {
				return nil, err
			}
			next[i] = updated
			found = true
		} else {
			next[i] = p
		}
	}
	if !found {
		return nil, ErrPlaceNotFound
	}
	return next, nil
}

func findPlace(history []ExpensePlace, placeID string) (ExpensePlace, bool) {
	for _, p := range history {
		if p.PlaceID == placeID {
			return p, true
		}
	}
	return ExpensePlace{}, false
}

// participantsAfter returns the people not named in the exclusion set.
func participantsAfter(people []Person, excluded []string) []Person {
	if len(excluded) == 0 {
		return people
	}
	set := make(map[string]bool, len(excluded))
	for _, id := range excluded {
		set[id] = true
	}
	remaining := make([]Person, 0, len(people))
	for _, p := range people {
		if !set[p.UserID] {
			remaining = append(remaining, p)
		}
	}
	return remaining
}
