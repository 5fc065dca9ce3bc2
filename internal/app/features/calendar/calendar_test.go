package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	errorsfeature "github.com/dalemusser/stratasched/internal/app/features/errors"
	"github.com/dalemusser/stratasched/internal/app/system/calendar"
	"github.com/dalemusser/stratasched/internal/app/system/frappe"
	"github.com/dalemusser/stratasched/internal/app/system/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeGateway struct {
	mu        sync.Mutex
	updateErr error
	updates   []string
	groups    []frappe.ResourceGroup
}

func dt(hour int) frappe.Datetime {
	return frappe.Datetime{Time: time.Date(2024, 3, 4, hour, 0, 0, 0, time.UTC), Valid: true}
}

func (f *fakeGateway) ScheduledWorkOrders(ctx context.Context) ([]frappe.Event, error) {
	return []frappe.Event{
		{ID: "WO-1", Title: "WO-1", Start: dt(8), End: dt(12),
			ExtendedProps: frappe.EventProps{Qty: 5}},
		{ID: "WO-2", Title: "WO-2", Start: dt(13), End: dt(15)},
	}, nil
}

func (f *fakeGateway) WorkstationResources(ctx context.Context) ([]frappe.ResourceGroup, error) {
	if f.groups != nil {
		return f.groups, nil
	}
	return []frappe.ResourceGroup{
		{ID: "type_Lathes", Title: "Lathes", Children: []frappe.Resource{{ID: "Lathe-1", Title: "Lathe-1"}}},
		{ID: "type_Mills", Title: "Mills", Children: []frappe.Resource{{ID: "Mill-1", Title: "Mill-1"}}},
	}, nil
}

func (f *fakeGateway) JobCardsWithWorkstations(ctx context.Context) ([]frappe.Event, error) {
	return []frappe.Event{
		{ID: "JC-1", Start: dt(8), End: dt(9),
			ExtendedProps: frappe.EventProps{Workstation: "Lathe-1", Status: "Open", WorkOrder: "WO-1"}},
	}, nil
}

func (f *fakeGateway) UpdateWorkOrderSchedule(ctx context.Context, name string, start, end time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, name)
	return f.updateErr
}

func (f *fakeGateway) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.updates...)
}

func (f *fakeGateway) UpdateJobCardSchedule(ctx context.Context, name string, start, end time.Time, ws string) error {
	return f.UpdateWorkOrderSchedule(ctx, name, start, end)
}

type harness struct {
	srv    *httptest.Server
	client *http.Client
	gw     *fakeGateway
	boards *calendar.Registry
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gw := &fakeGateway{}
	boards := calendar.NewRegistry(gw, calendar.Options{}, zap.NewNop())
	sm, err := session.NewManager("0123456789abcdef0123456789abcdef-test", "", "", time.Hour, false, zap.NewNop())
	require.NoError(t, err)

	h := NewHandler(boards, sm, nil, calendar.Linker{}, errorsfeature.NewErrorLogger(zap.NewNop()), zap.NewNop())
	srv := httptest.NewServer(Routes(h))
	t.Cleanup(func() {
		srv.Close()
		boards.CloseAll()
	})

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &harness{srv: srv, client: &http.Client{Jar: jar}, gw: gw, boards: boards}
}

func (h *harness) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, h.srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := h.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

type stateJSON struct {
	BoardID string `json:"boardId"`
	Version uint64 `json:"version"`
	Mode    string `json:"mode"`
	Mounted bool   `json:"mounted"`
	Config  struct {
		SidebarVisible bool   `json:"sidebarVisible"`
		SlotDuration   string `json:"slotDuration"`
	} `json:"config"`
	Events []struct {
		ID    string    `json:"id"`
		Start time.Time `json:"start"`
	} `json:"events"`
	Workstations []json.RawMessage `json:"workstations"`
	Summary      string            `json:"summary"`
	ZoomLabel    string            `json:"zoomLabel"`
	Error        string            `json:"error"`
}

func TestState_OpensBoardOnce(t *testing.T) {
	h := newHarness(t)

	resp := h.do(t, http.MethodGet, "/api/state", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var s stateJSON
	decodeBody(t, resp, &s)

	assert.NotEmpty(t, s.BoardID)
	assert.Equal(t, "work_orders", s.Mode)
	assert.True(t, s.Mounted)
	assert.Len(t, s.Events, 2)
	assert.False(t, s.Config.SidebarVisible)
	assert.Empty(t, s.Workstations)

	// Same cookie, same board.
	resp = h.do(t, http.MethodGet, "/api/state", nil)
	var again stateJSON
	decodeBody(t, resp, &again)
	assert.Equal(t, s.BoardID, again.BoardID)
	assert.Equal(t, 1, h.boards.Len())
}

func TestState_UnchangedVersionIsNoContent(t *testing.T) {
	h := newHarness(t)

	var s stateJSON
	decodeBody(t, h.do(t, http.MethodGet, "/api/state", nil), &s)

	resp := h.do(t, http.MethodGet, "/api/state?since="+strconv.FormatUint(s.Version, 10), nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = h.do(t, http.MethodGet, "/api/state?since=0", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSwitchView_ShowsSidebarInOperations(t *testing.T) {
	h := newHarness(t)
	h.do(t, http.MethodGet, "/api/state", nil)

	resp := h.do(t, http.MethodPost, "/api/view", map[string]string{"mode": "operations"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var s stateJSON
	decodeBody(t, resp, &s)

	assert.Equal(t, "operations", s.Mode)
	assert.True(t, s.Config.SidebarVisible)
	assert.Len(t, s.Workstations, 2)
	assert.Equal(t, "2 workstations across 2 types", s.Summary)
	require.Len(t, s.Events, 1)
	assert.Equal(t, "JC-1", s.Events[0].ID)

	resp = h.do(t, http.MethodPost, "/api/view", map[string]string{"mode": "gantt"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSwitchView_SummaryCountsEveryType(t *testing.T) {
	h := newHarness(t)
	ws := func(ids ...string) []frappe.Resource {
		out := make([]frappe.Resource, 0, len(ids))
		for _, id := range ids {
			out = append(out, frappe.Resource{ID: id, Title: id})
		}
		return out
	}
	h.gw.groups = []frappe.ResourceGroup{
		{ID: "type_Lathes", Title: "Lathes", Children: ws("Lathe-1", "Lathe-2")},
		{ID: "type_Mills", Title: "Mills", Children: ws("Mill-1")},
		{ID: "type_Presses", Title: "Presses", Children: ws("Press-1", "Press-2", "Press-3")},
	}
	h.do(t, http.MethodGet, "/api/state", nil)

	resp := h.do(t, http.MethodPost, "/api/view", map[string]string{"mode": "operations"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var s stateJSON
	decodeBody(t, resp, &s)

	assert.Len(t, s.Workstations, 3)
	assert.Equal(t, "6 workstations across 3 types", s.Summary)
}

func TestAPI_WithoutBoardAsksForReload(t *testing.T) {
	h := newHarness(t)

	resp := h.do(t, http.MethodPost, "/api/refresh", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	var e map[string]string
	decodeBody(t, resp, &e)
	assert.Contains(t, e["error"], "reload")
}

type moveJSON struct {
	ID      string    `json:"id"`
	OK      bool      `json:"ok"`
	Message string    `json:"message"`
	Start   time.Time `json:"start"`
	Reason  string    `json:"reason"`
}

func TestMove_Success(t *testing.T) {
	h := newHarness(t)
	h.do(t, http.MethodGet, "/api/state", nil)

	resp := h.do(t, http.MethodPost, "/api/events/WO-1/move", map[string]string{
		"start": "2024-03-05 08:00:00", "end": "2024-03-05 12:00:00", "gesture": "drag",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var m moveJSON
	decodeBody(t, resp, &m)

	assert.True(t, m.OK)
	assert.Equal(t, "Work Order rescheduled successfully", m.Message)
	assert.Equal(t, time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC), m.Start.UTC())
	assert.Equal(t, []string{"WO-1"}, h.gw.calls())
}

func TestMove_FailureRevertsWithPlainReason(t *testing.T) {
	h := newHarness(t)
	h.gw.mu.Lock()
	h.gw.updateErr = &frappe.RemoteError{Method: "update_work_order_schedule", Status: 417,
		Messages: []string{"Work Order <b>WO-1</b> is closed"}}
	h.gw.mu.Unlock()
	h.do(t, http.MethodGet, "/api/state", nil)

	resp := h.do(t, http.MethodPost, "/api/events/WO-1/move", map[string]string{
		"start": "2024-03-04T10:00:00Z", "end": "2024-03-04T14:00:00Z", "gesture": "resize",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var m moveJSON
	decodeBody(t, resp, &m)

	assert.False(t, m.OK)
	assert.Equal(t, "Duration update failed: Work Order WO-1 is closed", m.Message)
	assert.Equal(t, time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC), m.Start.UTC())

	var s stateJSON
	decodeBody(t, h.do(t, http.MethodGet, "/api/state", nil), &s)
	assert.Equal(t, time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC), s.Events[0].Start.UTC())
}

func TestMove_BadRequests(t *testing.T) {
	h := newHarness(t)
	h.do(t, http.MethodGet, "/api/state", nil)

	tests := []struct {
		name string
		id   string
		body map[string]string
		want int
	}{
		{"bad datetime", "WO-1", map[string]string{"start": "soon", "end": "later"}, http.StatusBadRequest},
		{"bad gesture", "WO-1", map[string]string{"start": "2024-03-04 08:00", "end": "2024-03-04 09:00", "gesture": "fling"}, http.StatusBadRequest},
		{"end before start", "WO-1", map[string]string{"start": "2024-03-04 09:00", "end": "2024-03-04 08:00"}, http.StatusBadRequest},
		{"unknown event", "WO-9", map[string]string{"start": "2024-03-04 08:00", "end": "2024-03-04 09:00"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := h.do(t, http.MethodPost, "/api/events/"+tt.id+"/move", tt.body)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
	assert.Empty(t, h.gw.calls())
}

func TestZoom(t *testing.T) {
	h := newHarness(t)
	h.do(t, http.MethodGet, "/api/state", nil)

	resp := h.do(t, http.MethodPost, "/api/zoom", map[string]string{"action": "in"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var s stateJSON
	decodeBody(t, resp, &s)
	assert.NotEmpty(t, s.ZoomLabel)

	resp = h.do(t, http.MethodPost, "/api/zoom", map[string]any{"action": "wheel", "deltaY": -120})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = h.do(t, http.MethodPost, "/api/zoom", map[string]string{"action": "sideways"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGoto(t *testing.T) {
	h := newHarness(t)
	h.do(t, http.MethodGet, "/api/state", nil)

	resp := h.do(t, http.MethodPost, "/api/goto", map[string]string{"date": "2024-05-01"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = h.do(t, http.MethodPost, "/api/goto", map[string]string{"date": "May 1st"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTooltipRouteAndHighlight(t *testing.T) {
	h := newHarness(t)
	h.do(t, http.MethodGet, "/api/state", nil)

	resp := h.do(t, http.MethodGet, "/api/events/WO-1/tooltip?x=100&y=100&w=200&h=100&vw=1000&vh=800", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tip struct {
		HTML string  `json:"html"`
		Left float64 `json:"left"`
		Top  float64 `json:"top"`
	}
	decodeBody(t, resp, &tip)
	assert.Contains(t, tip.HTML, "WO-1")
	assert.Equal(t, 115.0, tip.Left)
	assert.Equal(t, 115.0, tip.Top)

	resp = h.do(t, http.MethodGet, "/api/events/WO-1/route", nil)
	var route calendar.Route
	decodeBody(t, resp, &route)
	assert.Equal(t, "/workorders/WO-1", route.URL)

	resp = h.do(t, http.MethodGet, "/api/events/nope/route", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	h.do(t, http.MethodPost, "/api/view", map[string]string{"mode": "operations"})
	resp = h.do(t, http.MethodGet, "/api/workstations/Lathe-1/highlight", nil)
	var hl struct {
		EventIDs []string `json:"event_ids"`
		First    string   `json:"first"`
	}
	decodeBody(t, resp, &hl)
	assert.Equal(t, []string{"JC-1"}, hl.EventIDs)
	assert.Equal(t, "JC-1", hl.First)
}

func TestClose(t *testing.T) {
	h := newHarness(t)
	h.do(t, http.MethodGet, "/api/state", nil)
	require.Equal(t, 1, h.boards.Len())

	resp := h.do(t, http.MethodPost, "/api/close", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 0, h.boards.Len())

	resp = h.do(t, http.MethodPost, "/api/refresh", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}
