package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nbbang/internal/core"
	"nbbang/internal/services"
)

type stubRepo struct {
	docs map[string]core.MeetingRecord
}

func newStubRepo() *stubRepo {
	return &stubRepo{docs: make(map[string]core.MeetingRecord)}
}

func (r *stubRepo) CreateMeeting(_ context.Context, _ string, m core.Meeting) error {
	if _, exists := r.docs[m.MeetEntryCode]; exists {
		return fmt.Errorf("UNIQUE constraint failed: meetings.entry_code")
	}
	r.docs[m.MeetEntryCode] = recordOf(m)
	return nil
}

func (r *stubRepo) GetMeetingByEntryCode(_ context.Context, entryCode string) (core.MeetingRecord, error) {
	rec, ok := r.docs[entryCode]
	if !ok {
		return core.MeetingRecord{}, core.ErrMeetingNotFound
	}
	return rec, nil
}

func (r *stubRepo) SaveMeeting(_ context.Context, entryCode string, people []core.Person, history []core.ExpensePlace, updatedAt time.Time) error {
	rec, ok := r.docs[entryCode]
	if !ok {
		return core.ErrMeetingNotFound
	}
	saved := recordOf(core.Meeting{People: people, History: history})
	rec.People = saved.People
	rec.History = saved.History
	rec.UpdatedAt = updatedAt.UTC().Format(time.RFC3339)
	r.docs[entryCode] = rec
	return nil
}

func recordOf(m core.Meeting) core.MeetingRecord {
	data, _ := json.Marshal(m)
	var rec core.MeetingRecord
	_ = json.Unmarshal(data, &rec)
	return rec
}

func newTestServer(t *testing.T) (*Server, *stubRepo) {
	t.Helper()
	repo := newStubRepo()
	svc := services.NewMeetingService(repo, nil)
	srv := NewServer(":0", svc, 16, time.Minute)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv, repo
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func registerMeeting(t *testing.T, srv *Server, title string) registeredView {
	t.Helper()
	rec := doJSON(t, srv, http.MethodPost, "/api/meetings", map[string]string{"meetTitle": title})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[registeredView](t, rec)
}

func TestHandleRegister(t *testing.T) {
	srv, _ := newTestServer(t)

	created := registerMeeting(t, srv, "Company dinner")

	assert.Equal(t, "Company dinner", created.MeetTitle)
	assert.Len(t, created.MeetEntryCode, 6)
	assert.Len(t, created.MeetEditCode, 4)
	assert.Len(t, created.People, 1)
	assert.Len(t, created.History, 1)
}

func TestHandleRegister_RequiresTitle(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/meetings", map[string]string{"meetTitle": "  "})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleGetMeeting(t *testing.T) {
	srv, _ := newTestServer(t)
	created := registerMeeting(t, srv, "Trip")

	rec := doJSON(t, srv, http.MethodGet, "/api/meetings/"+created.MeetEntryCode, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[meetingView](t, rec)
	assert.Equal(t, "Trip", view.MeetTitle)
	assert.NotContains(t, rec.Body.String(), created.MeetEditCode, "edit code must not leak to readers")
}

func TestHandleGetMeeting_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/meetings/NOPE99", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleEditSession(t *testing.T) {
	srv, _ := newTestServer(t)
	created := registerMeeting(t, srv, "Trip")
	path := "/api/meetings/" + created.MeetEntryCode + "/edit-session"

	rec := doJSON(t, srv, http.MethodPost, path, map[string]string{"editCode": created.MeetEditCode})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, path, map[string]string{"editCode": "XXXX"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandleSaveMeeting(t *testing.T) {
	srv, repo := newTestServer(t)
	created := registerMeeting(t, srv, "Trip")

	// Legacy clients send amounts as strings; the save path tolerates that.
	body := map[string]any{
		"editCode": created.MeetEditCode,
		"people": []map[string]any{
			{"userId": "a", "userName": "A", "upFrontPayment": "30000"},
			{"userId": "b", "userName": "B"},
			{"userId": "draft", "userName": " "},
		},
		"history": []map[string]any{
			{"placeId": "p1", "placeName": "Dinner", "placeTotalPrice": 20000},
		},
	}
	rec := doJSON(t, srv, http.MethodPut, "/api/meetings/"+created.MeetEntryCode, body)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	saved := repo.docs[created.MeetEntryCode]
	require.Len(t, saved.People, 2, "blank-name person dropped on save")
	assert.Equal(t, "A", saved.People[0].UserName)
	assert.Equal(t, core.Num(30000), saved.People[0].UpFrontPayment)
	require.Len(t, saved.History, 1)
}

func TestHandleSaveMeeting_RejectsBadEditCode(t *testing.T) {
	srv, repo := newTestServer(t)
	created := registerMeeting(t, srv, "Trip")

	body := map[string]any{
		"editCode": "0000",
		"people":   []map[string]any{{"userId": "a", "userName": "A"}},
		"history":  []map[string]any{},
	}
	if created.MeetEditCode == "0000" {
		body["editCode"] = "1111"
	}
	rec := doJSON(t, srv, http.MethodPut, "/api/meetings/"+created.MeetEntryCode, body)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	saved := repo.docs[created.MeetEntryCode]
	require.Len(t, saved.People, 1, "starter content untouched by rejected save")
	assert.Empty(t, saved.People[0].UserName)
}

func TestHandleSaveMeeting_InvalidatesCache(t *testing.T) {
	srv, _ := newTestServer(t)
	created := registerMeeting(t, srv, "Trip")
	path := "/api/meetings/" + created.MeetEntryCode

	// Prime the cache.
	rec := doJSON(t, srv, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := map[string]any{
		"editCode": created.MeetEditCode,
		"people":   []map[string]any{{"userId": "a", "userName": "Renamed"}},
		"history":  []map[string]any{},
	}
	rec = doJSON(t, srv, http.MethodPut, path, body)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[meetingView](t, rec)
	require.Len(t, view.People, 1)
	assert.Equal(t, "Renamed", view.People[0].UserName)
}

func TestHandleSettlement(t *testing.T) {
	srv, _ := newTestServer(t)
	created := registerMeeting(t, srv, "Trip")

	body := map[string]any{
		"editCode": created.MeetEditCode,
		"people": []map[string]any{
			{"userId": "a", "userName": "A", "upFrontPayment": 30000},
			{"userId": "b", "userName": "B"},
		},
		"history": []map[string]any{
			{"placeId": "p1", "placeName": "Dinner", "placeTotalPrice": 20000},
		},
	}
	rec := doJSON(t, srv, http.MethodPut, "/api/meetings/"+created.MeetEntryCode, body)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/meetings/"+created.MeetEntryCode+"/settlement", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	view := decode[settlementView](t, rec)
	assert.Equal(t, 30000, view.TotalMoney)
	assert.Equal(t, 20000, view.TotalUse)
	assert.Equal(t, 10000, view.HaveMoney)
	require.Len(t, view.Rows, 2)
	assert.Equal(t, settlementRow{UserID: "a", UserName: "A", UpFrontPayment: 30000, Share: 10000, Net: 20000}, view.Rows[0])
	assert.Equal(t, settlementRow{UserID: "b", UserName: "B", Share: 10000, Net: -10000}, view.Rows[1])
}

func TestHandleUserSettlement(t *testing.T) {
	srv, _ := newTestServer(t)
	created := registerMeeting(t, srv, "Trip")

	body := map[string]any{
		"editCode": created.MeetEditCode,
		"people": []map[string]any{
			{"userId": "a", "userName": "A"},
			{"userId": "b", "userName": "B"},
			{"userId": "c", "userName": "C"},
		},
		"history": []map[string]any{
			{
				"placeId": "p1", "placeName": "BBQ", "placeTotalPrice": 9000,
				"isDetailMode": true,
				"placeDetails": []map[string]any{
					{"placeItemId": "i1", "placeItemName": "Meat", "placeItemPrice": 6000, "placeItemExcludeUser": []string{"c"}},
				},
			},
		},
	}
	rec := doJSON(t, srv, http.MethodPut, "/api/meetings/"+created.MeetEntryCode, body)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/meetings/"+created.MeetEntryCode+"/settlement/a", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	view := decode[userSettlementView](t, rec)
	assert.Equal(t, "A", view.UserName)
	// Meat 6000 over two eaters plus remainder 3000 over all three.
	assert.Equal(t, 4000, view.Share)
	require.Len(t, view.Rows, 2)
	assert.Equal(t, core.DetailItem, view.Rows[0].Kind)
	assert.Equal(t, core.DetailRemainder, view.Rows[1].Kind)
}

func TestHandleUserSettlement_UnknownUser(t *testing.T) {
	srv, _ := newTestServer(t)
	created := registerMeeting(t, srv, "Trip")

	rec := doJSON(t, srv, http.MethodGet, "/api/meetings/"+created.MeetEntryCode+"/settlement/ghost", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
