package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"nbbang/internal/core"
	"nbbang/internal/metrics"
)

// meetingView is the document shape returned to readers. The edit code never
// appears here; it is disclosed once, at registration.
type meetingView struct {
	MeetTitle     string              `json:"meetTitle"`
	MeetEntryCode string              `json:"meetEntryCode"`
	People        []core.Person       `json:"people"`
	History       []core.ExpensePlace `json:"history"`
	CreatedAt     string              `json:"createdAt,omitempty"`
	UpdatedAt     string              `json:"updatedAt,omitempty"`
}

// registeredView additionally carries the edit code for the creator to share.
type registeredView struct {
	meetingView
	MeetEditCode string `json:"meetEditCode"`
}

func viewOf(m core.Meeting) meetingView {
	v := meetingView{
		MeetTitle:     m.MeetTitle,
		MeetEntryCode: m.MeetEntryCode,
		People:        m.People,
		History:       m.History,
	}
	if !m.CreatedAt.IsZero() {
		v.CreatedAt = m.CreatedAt.UTC().Format(time.RFC3339)
	}
	if !m.UpdatedAt.IsZero() {
		v.UpdatedAt = m.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return v
}

type registerRequest struct {
	MeetTitle string `json:"meetTitle"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorResponse(http.StatusBadRequest, "invalid request body").Write(w)
		return
	}
	title := strings.TrimSpace(req.MeetTitle)
	if title == "" {
		ErrorResponse(http.StatusUnprocessableEntity, "meeting title is required").Write(w)
		return
	}

	meeting, err := s.svc.Register(r.Context(), title)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	metrics.MeetingsRegistered.Inc()
	NewJSONResponse().
		Status(http.StatusCreated).
		Payload(registeredView{meetingView: viewOf(meeting), MeetEditCode: meeting.MeetEditCode}).
		Write(w)
}

func (s *Server) handleGetMeeting(w http.ResponseWriter, r *http.Request) {
	entryCode := r.PathValue("entryCode")

	sess, err := s.loadSession(r.Context(), entryCode)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	NewJSONResponse().Payload(viewOf(sess.Meeting())).Write(w)
}

type editSessionRequest struct {
	EditCode string `json:"editCode"`
}

// handleEditSession verifies the shared edit code before the client switches
// into edit mode. Read access needs no code at all.
func (s *Server) handleEditSession(w http.ResponseWriter, r *http.Request) {
	entryCode := r.PathValue("entryCode")

	var req editSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorResponse(http.StatusBadRequest, "invalid request body").Write(w)
		return
	}

	sess, err := s.loadSession(r.Context(), entryCode)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	if !sess.EditCodeMatches(strings.TrimSpace(req.EditCode)) {
		slog.WarnContext(r.Context(), "Edit code rejected", "entry_code", entryCode)
		ErrorResponse(http.StatusForbidden, "invalid edit code").Write(w)
		return
	}

	NewJSONResponse().Payload(map[string]bool{"editable": true}).Write(w)
}

type saveRequest struct {
	EditCode string              `json:"editCode"`
	People   []core.PersonRecord `json:"people"`
	History  []core.PlaceRecord  `json:"history"`
}

// handleSaveMeeting replaces the meeting's people and history wholesale. The
// request body uses the tolerant record shapes, so clients sending legacy
// string amounts still save cleanly.
func (s *Server) handleSaveMeeting(w http.ResponseWriter, r *http.Request) {
	entryCode := r.PathValue("entryCode")

	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorResponse(http.StatusBadRequest, "invalid request body").Write(w)
		return
	}

	sess, err := s.svc.Load(r.Context(), entryCode)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	if !sess.EditCodeMatches(strings.TrimSpace(req.EditCode)) {
		slog.WarnContext(r.Context(), "Edit code rejected on save", "entry_code", entryCode)
		ErrorResponse(http.StatusForbidden, "invalid edit code").Write(w)
		return
	}

	sess.UpdatePeople(core.NormalizePeople(req.People))
	sess.UpdateHistory(core.NormalizeHistory(req.History))

	if err := s.svc.Save(r.Context(), sess); err != nil {
		metrics.MeetingSaves.WithLabelValues("error").Inc()
		writeDomainError(r.Context(), w, err)
		return
	}

	metrics.MeetingSaves.WithLabelValues("ok").Inc()
	s.meetings.Invalidate(entryCode)

	NewJSONResponse().Payload(viewOf(sess.Meeting())).Write(w)
}
