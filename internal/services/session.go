package services

import (
	"errors"
	"reflect"
	"sync"
	"time"

	"nbbang/internal/core"
)

// ErrSaveInProgress signals a save attempted while another save on the same
// session has not finished.
var ErrSaveInProgress = errors.New("save already in progress")

// Session holds one in-memory canonical meeting state together with the
// baseline snapshot of what storage last held. Collections are replaced as a
// whole, never patched, so the settlement engine always observes a consistent
// snapshot and baseline diffing stays a cheap comparison.
//
// Edits made while a save is in flight are not queued or merged; last write
// wins on the next save.
type Session struct {
	mu sync.Mutex

	entryCode string
	editCode  string
	title     string
	createdAt time.Time
	updatedAt time.Time

	people  []core.Person
	history []core.ExpensePlace

	// dbData: what storage last held, for discarding in-progress edits
	basePeople  []core.Person
	baseHistory []core.ExpensePlace

	saving bool
}

// NewSession starts an edit session over a normalized meeting. The meeting's
// collections become both the working state and the baseline.
func NewSession(m core.Meeting) *Session {
	return &Session{
		entryCode:   m.MeetEntryCode,
		editCode:    m.MeetEditCode,
		title:       m.MeetTitle,
		createdAt:   m.CreatedAt,
		updatedAt:   m.UpdatedAt,
		people:      m.People,
		history:     m.History,
		basePeople:  m.People,
		baseHistory: m.History,
	}
}

// EntryCode returns the meeting's entry code.
func (s *Session) EntryCode() string {
	return s.entryCode
}

// Title returns the meeting's title.
func (s *Session) Title() string {
	return s.title
}

// EditCodeMatches reports whether the given code opens edit mode.
func (s *Session) EditCodeMatches(code string) bool {
	return code != "" && code == s.editCode
}

// People returns the current participant collection. Treat it as immutable;
// construct a new collection and call UpdatePeople to change it.
func (s *Session) People() []core.Person {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.people
}

// History returns the current history collection. Treat it as immutable;
// construct a new collection and call UpdateHistory to change it.
func (s *Session) History() []core.ExpensePlace {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history
}

// UpdatePeople replaces the participant collection atomically.
func (s *Session) UpdatePeople(people []core.Person) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.people = people
}

// UpdateHistory replaces the history collection atomically.
func (s *Session) UpdateHistory(history []core.ExpensePlace) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = history
}

// Dirty reports whether the working state differs from the baseline.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !reflect.DeepEqual(s.people, s.basePeople) ||
		!reflect.DeepEqual(s.history, s.baseHistory)
}

// Discard throws away in-progress edits, restoring the baseline.
func (s *Session) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.people = s.basePeople
	s.history = s.baseHistory
}

// Totals computes the money summary over the current snapshot.
func (s *Session) Totals() core.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.ComputeTotals(s.people, s.history)
}

// Balances computes per-person owed amounts over the current snapshot.
func (s *Session) Balances() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.ComputeBalances(s.people, s.history)
}

// UserDetails reconstructs one user's contribution rows over the current
// snapshot.
func (s *Session) UserDetails(userID string) []core.ExpenseDetailRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.UserExpenseDetails(userID, s.people, s.history)
}

// beginSave marks the save critical section. Only one save may run at a time;
// this is a simple in-progress flag, not a queue.
func (s *Session) beginSave() ([]core.Person, []core.ExpensePlace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saving {
		return nil, nil, ErrSaveInProgress
	}
	s.saving = true
	return s.people, s.history, nil
}

// endSave leaves the critical section. When the save succeeded the baseline
// advances to what storage now holds; on failure baseline and edits stay put
// so the user can retry.
func (s *Session) endSave(savedPeople []core.Person, savedHistory []core.ExpensePlace, savedAt time.Time, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saving = false
	if ok {
		s.basePeople = savedPeople
		s.baseHistory = savedHistory
		s.updatedAt = savedAt
	}
}

// replace overwrites working state and baseline together. Unsaved edits are
// silently discarded; that is the accepted cost of an explicit refresh.
func (s *Session) replace(m core.Meeting) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.title = m.MeetTitle
	s.editCode = m.MeetEditCode
	s.createdAt = m.CreatedAt
	s.updatedAt = m.UpdatedAt
	s.people = m.People
	s.history = m.History
	s.basePeople = m.People
	s.baseHistory = m.History
}

// Meeting returns the session's current state as a canonical Meeting.
func (s *Session) Meeting() core.Meeting {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.Meeting{
		MeetTitle:     s.title,
		MeetEntryCode: s.entryCode,
		MeetEditCode:  s.editCode,
		People:        s.people,
		History:       s.history,
		CreatedAt:     s.createdAt,
		UpdatedAt:     s.updatedAt,
	}
}
