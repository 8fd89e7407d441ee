// Package storage persists meeting documents in SQLite. The people and
// history collections are stored as JSON in the persisted document shape, so
// documents written by older app versions load through the normalizer rather
// than through schema migrations.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"nbbang/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateMeeting persists a freshly registered meeting. The entry code must be
// unused; violations surface as a wrapped unique-constraint error.
func (r *SQLiteRepository) CreateMeeting(ctx context.Context, id string, m core.Meeting) error {
	people, err := json.Marshal(m.People)
	if err != nil {
		return fmt.Errorf("marshal people: %w", err)
	}
	history, err := json.Marshal(m.History)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO meetings (id, title, entry_code, edit_code, people, history, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, m.MeetTitle, m.MeetEntryCode, m.MeetEditCode,
		string(people), string(history),
		m.CreatedAt.UTC().Format(time.RFC3339), m.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert meeting: %w", err)
	}

	slog.InfoContext(ctx, "Meeting created",
		"entry_code", m.MeetEntryCode,
		"title", m.MeetTitle)

	return nil
}

// GetMeetingByEntryCode loads the raw persisted document. The caller is
// expected to run it through the normalizer; the repository does not repair
// legacy shapes itself. Returns core.ErrMeetingNotFound when the code matches
// nothing.
func (r *SQLiteRepository) GetMeetingByEntryCode(ctx context.Context, entryCode string) (core.MeetingRecord, error) {
	var (
		rec     core.MeetingRecord
		people  string
		history string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT title, entry_code, edit_code, people, history, created_at, updated_at
		 FROM meetings WHERE entry_code = ?`,
		entryCode,
	).Scan(&rec.MeetTitle, &rec.MeetEntryCode, &rec.MeetEditCode, &people, &history, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.MeetingRecord{}, core.ErrMeetingNotFound
	}
	if err != nil {
		return core.MeetingRecord{}, fmt.Errorf("get meeting: %w", err)
	}

	// Tolerate malformed collections the same way missing ones are tolerated:
	// the normalizer substitutes defaults for whatever fails to parse.
	if err := json.Unmarshal([]byte(people), &rec.People); err != nil {
		slog.WarnContext(ctx, "Discarding unparseable people document",
			"entry_code", entryCode, "error", err)
		rec.People = nil
	}
	if err := json.Unmarshal([]byte(history), &rec.History); err != nil {
		slog.WarnContext(ctx, "Discarding unparseable history document",
			"entry_code", entryCode, "error", err)
		rec.History = nil
	}

	return rec, nil
}

// SaveMeeting replaces a meeting's people and history atomically and stamps
// the given update time. Returns core.ErrMeetingNotFound when the entry code
// matches nothing.
func (r *SQLiteRepository) SaveMeeting(ctx context.Context, entryCode string, people []core.Person, history []core.ExpensePlace, updatedAt time.Time) error {
	peopleJSON, err := json.Marshal(people)
	if err != nil {
		return fmt.Errorf("marshal people: %w", err)
	}
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE meetings SET people = ?, history = ?, updated_at = ? WHERE entry_code = ?`,
		string(peopleJSON), string(historyJSON), updatedAt.UTC().Format(time.RFC3339), entryCode,
	)
	if err != nil {
		return fmt.Errorf("update meeting: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return core.ErrMeetingNotFound
	}

	slog.InfoContext(ctx, "Meeting saved",
		"entry_code", entryCode,
		"people", len(people),
		"places", len(history))

	return nil
}
