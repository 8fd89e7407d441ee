package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"nbbang/internal/core"
)

// MeetingRepository is the persistence gateway the service drives. The
// settlement engine never touches it directly.
type MeetingRepository interface {
	CreateMeeting(ctx context.Context, id string, m core.Meeting) error
	GetMeetingByEntryCode(ctx context.Context, entryCode string) (core.MeetingRecord, error)
	SaveMeeting(ctx context.Context, entryCode string, people []core.Person, history []core.ExpensePlace, updatedAt time.Time) error
}

// SavedPublisher announces persisted meetings to interested consumers, such
// as the settlement report worker.
type SavedPublisher interface {
	PublishMeetingSaved(ctx context.Context, entryCode string, updatedAt time.Time) error
}

// MeetingService orchestrates meeting registration, edit sessions, and saves.
type MeetingService struct {
	repo      MeetingRepository
	publisher SavedPublisher
	now       func() time.Time
}

func NewMeetingService(repo MeetingRepository, publisher SavedPublisher) *MeetingService {
	return &MeetingService{
		repo:      repo,
		publisher: publisher,
		now:       time.Now,
	}
}

// Register creates a meeting with generated entry and edit codes and starter
// content: one default participant and one default history entry. Entry code
// collisions are retried a few times before giving up.
func (s *MeetingService) Register(ctx context.Context, title string) (core.Meeting, error) {
	const maxAttempts = 5

	editCode, err := newEditCode()
	if err != nil {
		return core.Meeting{}, err
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		entryCode, err := newEntryCode()
		if err != nil {
			return core.Meeting{}, err
		}

		now := s.now()
		meeting := core.Meeting{
			MeetTitle:     title,
			MeetEntryCode: entryCode,
			MeetEditCode:  editCode,
			People:        []core.Person{core.NewPerson()},
			History:       []core.ExpensePlace{core.NewPlace()},
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		if err := s.repo.CreateMeeting(ctx, uuid.New().String(), meeting); err != nil {
			lastErr = err
			continue
		}

		slog.InfoContext(ctx, "Meeting registered",
			"entry_code", entryCode,
			"meet_title", title)
		return meeting, nil
	}

	return core.Meeting{}, fmt.Errorf("register meeting: %w", lastErr)
}

// Load fetches the raw document by entry code, normalizes it, and opens an
// edit session over the canonical state. Returns core.ErrMeetingNotFound when
// the code matches nothing; that outcome is a lookup miss, not a failure.
func (s *MeetingService) Load(ctx context.Context, entryCode string) (*Session, error) {
	rec, err := s.repo.GetMeetingByEntryCode(ctx, entryCode)
	if err != nil {
		return nil, err
	}
	return NewSession(core.NormalizeMeeting(rec)), nil
}

// Save filters the session's state to its persistable subset, writes it
// atomically, and advances the baseline. On failure the baseline and the
// in-memory edits are left untouched so the caller can retry; this is the one
// error path that propagates rather than being swallowed.
func (s *MeetingService) Save(ctx context.Context, sess *Session) error {
	people, history, err := sess.beginSave()
	if err != nil {
		return err
	}

	savedPeople := core.FilterPeopleForSave(people)
	savedHistory := core.FilterHistoryForSave(history)
	savedAt := s.now()

	if err := s.repo.SaveMeeting(ctx, sess.EntryCode(), savedPeople, savedHistory, savedAt); err != nil {
		sess.endSave(nil, nil, time.Time{}, false)
		return fmt.Errorf("save meeting: %w", err)
	}
	sess.endSave(savedPeople, savedHistory, savedAt, true)

	// Report export is best-effort: the save already succeeded.
	if s.publisher != nil {
		if err := s.publisher.PublishMeetingSaved(ctx, sess.EntryCode(), savedAt); err != nil {
			slog.ErrorContext(ctx, "Failed to publish meeting saved message",
				"entry_code", sess.EntryCode(), "error", err)
		}
	}

	return nil
}

// Refresh re-fetches the document and overwrites the session's state and
// baseline together. Unsaved edits are silently discarded.
func (s *MeetingService) Refresh(ctx context.Context, sess *Session) error {
	rec, err := s.repo.GetMeetingByEntryCode(ctx, sess.EntryCode())
	if err != nil {
		return err
	}
	sess.replace(core.NormalizeMeeting(rec))
	return nil
}
