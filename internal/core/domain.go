package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type (
	// Person is a meeting participant. A blank (whitespace-only) name marks the
	// person inactive: excluded from all settlement math and dropped on save.
	Person struct {
		UserID         string `json:"userId"`
		UserName       string `json:"userName"`
		UpFrontPayment int    `json:"upFrontPayment"`
	}

	// ExpenseItem is a sub-charge within a place. The exclusion set holds user ids
	// excluded from this item's split, on top of the parent place's exclusions.
	ExpenseItem struct {
		PlaceItemID          string   `json:"placeItemId"`
		PlaceItemName        string   `json:"placeItemName"`
		PlaceItemPrice       int      `json:"placeItemPrice"`
		PlaceItemExcludeUser []string `json:"placeItemExcludeUser"`
	}

	// ExpensePlace is one history entry. PlaceTotalPrice is authoritative in flat
	// mode; in detail mode it tracks the sum of item prices and the manually
	// entered total is parked in PlacePrevTotalPrice until detail mode is left.
	ExpensePlace struct {
		PlaceID             string        `json:"placeId"`
		PlaceName           string        `json:"placeName"`
		PlaceTotalPrice     int           `json:"placeTotalPrice"`
		PlacePrevTotalPrice int           `json:"placePrevTotalPrice"`
		PlaceExcludeUser    []string      `json:"placeExcludeUser"`
		IsDetailMode        bool          `json:"isDetailMode"`
		PlaceDetails        []ExpenseItem `json:"placeDetails"`
	}

	// Meeting is the aggregate stored per entry code. The entry code is the
	// lookup key for load/save; the edit code is a shared secret gating edit
	// sessions, not per-user auth.
	Meeting struct {
		MeetTitle     string         `json:"meetTitle"`
		MeetEntryCode string         `json:"meetEntryCode"`
		MeetEditCode  string         `json:"meetEditCode"`
		People        []Person       `json:"people"`
		History       []ExpensePlace `json:"history"`
		CreatedAt     time.Time      `json:"createdAt"`
		UpdatedAt     time.Time      `json:"updatedAt"`
	}
)

var (
	// ErrMeetingNotFound signals a lookup by entry code that matched nothing.
	ErrMeetingNotFound = errors.New("meeting not found")

	// ErrAllExcluded signals an exclusion edit that would leave a place or item
	// with no eligible participants.
	ErrAllExcluded = errors.New("exclusion would leave no participants")

	// ErrPersonNotFound signals an operation referencing an unknown user id.
	ErrPersonNotFound = errors.New("person not found")

	// ErrPlaceNotFound signals an operation referencing an unknown place id.
	ErrPlaceNotFound = errors.New("place not found")
)

// NewPerson returns a default participant: generated id, blank name, zero payment.
func NewPerson() Person {
	return Person{UserID: uuid.New().String()}
}

// NewPlace returns a default history entry: generated id, blank name, zero total,
// no exclusions, detail mode off, empty detail list.
func NewPlace() ExpensePlace {
	return ExpensePlace{
		PlaceID:          uuid.New().String(),
		PlaceExcludeUser: []string{},
		PlaceDetails:     []ExpenseItem{},
	}
}

// NewDetail returns a default sub-charge: generated id, blank name, zero price.
func NewDetail() ExpenseItem {
	return ExpenseItem{
		PlaceItemID:          uuid.New().String(),
		PlaceItemExcludeUser: []string{},
	}
}

// Active reports whether the person takes part in settlement math.
func (p Person) Active() bool {
	return strings.TrimSpace(p.UserName) != ""
}

// ActivePeople returns the participants with non-blank names, preserving order.
func ActivePeople(people []Person) []Person {
	active := make([]Person, 0, len(people))
	for _, p := range people {
		if p.Active() {
			active = append(active, p)
		}
	}
	return active
}

// DetailsSum returns the sum of the place's item prices.
func (p ExpensePlace) DetailsSum() int {
	sum := 0
	for _, d := range p.PlaceDetails {
		sum += d.PlaceItemPrice
	}
	return sum
}
