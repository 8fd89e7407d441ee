package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"nbbang/internal/amqp"
	"nbbang/internal/core"
	"nbbang/internal/metrics"
	"nbbang/internal/report"
)

// MeetingLoader is the slice of storage the worker needs.
type MeetingLoader interface {
	GetMeetingByEntryCode(ctx context.Context, entryCode string) (core.MeetingRecord, error)
}

// ReportWorker exports a settlement report whenever a meeting is saved. The
// report is rebuilt from storage rather than trusted from the message, so a
// delayed or redelivered message still exports current numbers.
type ReportWorker struct {
	loader MeetingLoader
	writer report.SettlementWriter

	mu       sync.Mutex
	exported map[string]time.Time // entry code -> UpdatedAt of last export
}

func NewReportWorker(loader MeetingLoader, writer report.SettlementWriter) *ReportWorker {
	return &ReportWorker{
		loader:   loader,
		writer:   writer,
		exported: make(map[string]time.Time),
	}
}

// HandleMeetingSaved processes one saved-meeting message. Redeliveries of a
// save already exported are acknowledged without a second export.
func (w *ReportWorker) HandleMeetingSaved(ctx context.Context, msg *amqp.MeetingSavedMessage) error {
	if w.alreadyExported(msg.EntryCode, msg.UpdatedAt) {
		slog.InfoContext(ctx, "Skipping already exported settlement",
			"entry_code", msg.EntryCode,
			"updated_at", msg.UpdatedAt)
		return nil
	}

	slog.InfoContext(ctx, "Processing saved meeting",
		"entry_code", msg.EntryCode,
		"updated_at", msg.UpdatedAt)

	rec, err := w.loader.GetMeetingByEntryCode(ctx, msg.EntryCode)
	if err != nil {
		metrics.ReportsExported.WithLabelValues("error").Inc()
		return fmt.Errorf("load meeting %s: %w", msg.EntryCode, err)
	}

	meeting := core.NormalizeMeeting(rec)
	settlement := report.Build(meeting, meeting.UpdatedAt)

	if err := w.writer.AppendSettlement(ctx, settlement); err != nil {
		metrics.ReportsExported.WithLabelValues("error").Inc()
		return fmt.Errorf("export settlement %s: %w", msg.EntryCode, err)
	}

	w.markExported(msg.EntryCode, msg.UpdatedAt)
	metrics.ReportsExported.WithLabelValues("ok").Inc()

	slog.InfoContext(ctx, "Settlement report exported",
		"entry_code", msg.EntryCode,
		"participants", len(settlement.Rows),
		"total_use", settlement.TotalUse)
	return nil
}

func (w *ReportWorker) alreadyExported(entryCode string, updatedAt time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	last, ok := w.exported[entryCode]
	return ok && !updatedAt.After(last)
}

func (w *ReportWorker) markExported(entryCode string, updatedAt time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if updatedAt.After(w.exported[entryCode]) {
		w.exported[entryCode] = updatedAt
	}
}
