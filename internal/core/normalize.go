package core

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Raw persisted records. Documents written by older app versions may carry
// numeric fields as strings, miss id fields entirely, or omit arrays; these
// shapes absorb all of that so that Normalize can produce the canonical model.
type (
	// Num unmarshals any JSON scalar to an integer amount, defaulting to zero
	// for anything non-numeric.
	Num int

	// Flag unmarshals a JSON boolean, defaulting to false for anything else.
	Flag bool

	PersonRecord struct {
		UserID         string `json:"userId"`
		UserName       string `json:"userName"`
		UpFrontPayment Num    `json:"upFrontPayment"`
	}

	ItemRecord struct {
		PlaceItemID          string   `json:"placeItemId"`
		PlaceItemName        string   `json:"placeItemName"`
		PlaceItemPrice       Num      `json:"placeItemPrice"`
		PlaceItemExcludeUser []string `json:"placeItemExcludeUser"`
	}

	PlaceRecord struct {
		PlaceID             string       `json:"placeId"`
		PlaceName           string       `json:"placeName"`
		PlaceTotalPrice     Num          `json:"placeTotalPrice"`
		PlacePrevTotalPrice Num          `json:"placePrevTotalPrice"`
		PlaceExcludeUser    []string     `json:"placeExcludeUser"`
		IsDetailMode        Flag         `json:"isDetailMode"`
		PlaceDetails        []ItemRecord `json:"placeDetails"`
	}

	// MeetingRecord is the persisted document shape, pre-normalization.
	MeetingRecord struct {
		MeetTitle     string         `json:"meetTitle"`
		MeetEntryCode string         `json:"meetEntryCode"`
		MeetEditCode  string         `json:"meetEditCode"`
		People        []PersonRecord `json:"people"`
		History       []PlaceRecord  `json:"history"`
		CreatedAt     string         `json:"createdAt"`
		UpdatedAt     string         `json:"updatedAt"`
	}
)

func (n *Num) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*n = 0
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*n = 0
			return nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			*n = 0
			return nil
		}
		*n = Num(f)
	case 't':
		*n = 1
	default:
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			*n = 0
			return nil
		}
		*n = Num(f)
	}
	return nil
}

func (f *Flag) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(bytes.TrimSpace(data), &b); err != nil {
		*f = false
		return nil
	}
	*f = Flag(b)
	return nil
}

// NormalizePeople converts raw person records into the canonical collection.
// An empty or absent collection becomes a single default participant.
func NormalizePeople(recs []PersonRecord) []Person {
	if len(recs) == 0 {
		return []Person{NewPerson()}
	}
	people := make([]Person, len(recs))
	for i, r := range recs {
		p := Person{
			UserID:         r.UserID,
			UserName:       r.UserName,
			UpFrontPayment: int(r.UpFrontPayment),
		}
		if p.UserID == "" {
			p.UserID = NewPerson().UserID
		}
		people[i] = p
	}
	return people
}

// NormalizeHistory converts raw place records into the canonical collection,
// deriving PlacePrevTotalPrice backups. An empty or absent collection becomes
// a single default place. The transform is pure and idempotent: it runs both
// on initial load and on every explicit refresh.
func NormalizeHistory(recs []PlaceRecord) []ExpensePlace {
	if len(recs) == 0 {
		return []ExpensePlace{NewPlace()}
	}
	history := make([]ExpensePlace, len(recs))
	for i, r := range recs {
		place := ExpensePlace{
			PlaceID:          r.PlaceID,
			PlaceName:        r.PlaceName,
			PlaceTotalPrice:  int(r.PlaceTotalPrice),
			PlaceExcludeUser: r.PlaceExcludeUser,
			IsDetailMode:     bool(r.IsDetailMode),
		}
		if place.PlaceID == "" {
			place.PlaceID = NewPlace().PlaceID
		}
		if place.PlaceExcludeUser == nil {
			place.PlaceExcludeUser = []string{}
		}

		place.PlaceDetails = make([]ExpenseItem, len(r.PlaceDetails))
		detailsSum := 0
		for j, d := range r.PlaceDetails {
			item := ExpenseItem{
				PlaceItemID:          d.PlaceItemID,
				PlaceItemName:        d.PlaceItemName,
				PlaceItemPrice:       int(d.PlaceItemPrice),
				PlaceItemExcludeUser: d.PlaceItemExcludeUser,
			}
			if item.PlaceItemID == "" {
				item.PlaceItemID = NewDetail().PlaceItemID
			}
			if item.PlaceItemExcludeUser == nil {
				item.PlaceItemExcludeUser = []string{}
			}
			detailsSum += item.PlaceItemPrice
			place.PlaceDetails[j] = item
		}

		// Backup derivation: in detail mode the backup is what flat mode would
		// restore, preferring the item sum when one exists.
		if place.IsDetailMode {
			if detailsSum != 0 {
				place.PlacePrevTotalPrice = detailsSum
			} else {
				place.PlacePrevTotalPrice = int(r.PlaceTotalPrice)
			}
		} else {
			place.PlacePrevTotalPrice = int(r.PlacePrevTotalPrice)
		}

		history[i] = place
	}
	return history
}

// NormalizeMeeting converts a raw persisted document into a canonical Meeting.
func NormalizeMeeting(rec MeetingRecord) Meeting {
	return Meeting{
		MeetTitle:     rec.MeetTitle,
		MeetEntryCode: rec.MeetEntryCode,
		MeetEditCode:  rec.MeetEditCode,
		People:        NormalizePeople(rec.People),
		History:       NormalizeHistory(rec.History),
		CreatedAt:     parseTimestamp(rec.CreatedAt),
		UpdatedAt:     parseTimestamp(rec.UpdatedAt),
	}
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}
