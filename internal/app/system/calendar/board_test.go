package calendar

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/stratasched/internal/app/system/frappe"
	"github.com/dalemusser/stratasched/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGateway serves canned records and counts calls. When block is set,
// updates wait on it before returning updateErr.
type fakeGateway struct {
	mu         sync.Mutex
	workOrders []frappe.Event
	operations []frappe.Event
	groups     []frappe.ResourceGroup
	fetchErr   error
	updateErr  error
	block      chan struct{}
	entered    chan struct{}

	woCalls  int
	opsCalls int
	wsCalls  int
	updates  []string
}

func (f *fakeGateway) ScheduledWorkOrders(ctx context.Context) ([]frappe.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.woCalls++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return append([]frappe.Event(nil), f.workOrders...), nil
}

func (f *fakeGateway) WorkstationResources(ctx context.Context) ([]frappe.ResourceGroup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wsCalls++
	return f.groups, f.fetchErr
}

func (f *fakeGateway) JobCardsWithWorkstations(ctx context.Context) ([]frappe.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opsCalls++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return append([]frappe.Event(nil), f.operations...), nil
}

func (f *fakeGateway) UpdateWorkOrderSchedule(ctx context.Context, name string, start, end time.Time) error {
	return f.update(ctx, "wo:"+name)
}

func (f *fakeGateway) UpdateJobCardSchedule(ctx context.Context, name string, start, end time.Time, ws string) error {
	return f.update(ctx, "jc:"+name)
}

func (f *fakeGateway) update(ctx context.Context, call string) error {
	f.mu.Lock()
	f.updates = append(f.updates, call)
	block, entered, err := f.block, f.entered, f.updateErr
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (f *fakeGateway) counts() (wo, ops, ws int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.woCalls, f.opsCalls, f.wsCalls
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		workOrders: []frappe.Event{
			{ID: "WO-1", Title: "WO-1", Start: at(8, 0), End: at(12, 0)},
			{ID: "WO-2", Title: "WO-2", Start: at(13, 0), End: at(15, 0)},
		},
		operations: []frappe.Event{
			{ID: "JC-1", Start: at(8, 0), End: at(9, 0),
				ExtendedProps: frappe.EventProps{Workstation: "Lathe-1", Status: "Open", WorkOrder: "WO-1"}},
			{ID: "JC-2", Start: at(9, 0), End: at(10, 0),
				ExtendedProps: frappe.EventProps{Workstation: "Mill-1", Status: "Completed", WorkOrder: "WO-1"}},
		},
		groups: []frappe.ResourceGroup{
			{ID: "type_Lathes", Title: "Lathes", Children: []frappe.Resource{{ID: "Lathe-1"}}},
			{ID: "type_Mills", Title: "Mills", Children: []frappe.Resource{{ID: "Mill-1"}}},
		},
	}
}

// newTestBoard returns a mounted board with polling disabled.
func newTestBoard(t *testing.T, gw *fakeGateway) *Board {
	t.Helper()
	b := NewBoard("test", gw, Options{}, nil)
	require.NoError(t, b.Create(context.Background()))
	t.Cleanup(b.Destroy)
	return b
}

func TestBoard_CreateMountsWorkOrders(t *testing.T) {
	gw := newFakeGateway()
	b := newTestBoard(t, gw)

	s := b.Snapshot()
	assert.True(t, s.Mounted)
	assert.Equal(t, ViewWorkOrders, s.Mode)
	assert.Len(t, s.Events, 2)
	assert.False(t, s.Config.SidebarVisible)
	assert.Empty(t, s.Workstations)

	wo, ops, ws := gw.counts()
	assert.Equal(t, 1, wo)
	assert.Zero(t, ops)
	assert.Zero(t, ws)
}

func TestBoard_SwitchToOperationsLoadsBothInParallel(t *testing.T) {
	gw := newFakeGateway()
	b := newTestBoard(t, gw)

	require.NoError(t, b.SwitchView(context.Background(), ViewOperations))

	s := b.Snapshot()
	assert.Equal(t, ViewOperations, s.Mode)
	assert.True(t, s.Config.SidebarVisible)
	assert.Len(t, s.Workstations, 2)
	require.Len(t, s.Events, 2)
	assert.Equal(t, "Lathes", s.Events[0].Operation.WorkstationType)

	_, ops, ws := gw.counts()
	assert.Equal(t, 1, ops)
	assert.Equal(t, 1, ws)
}

func TestBoard_SwitchToWorkOrdersHidesSidebarAndFetchesOnce(t *testing.T) {
	gw := newFakeGateway()
	b := newTestBoard(t, gw)
	require.NoError(t, b.SwitchView(context.Background(), ViewOperations))

	woBefore, opsBefore, wsBefore := gw.counts()
	require.NoError(t, b.SwitchView(context.Background(), ViewWorkOrders))
	woAfter, opsAfter, wsAfter := gw.counts()

	assert.Equal(t, 1, woAfter-woBefore, "exactly one work order fetch")
	assert.Equal(t, opsBefore, opsAfter)
	assert.Equal(t, wsBefore, wsAfter)

	s := b.Snapshot()
	assert.False(t, s.Config.SidebarVisible)
	assert.Empty(t, s.Workstations)
}

func TestBoard_SwitchViewFetchFailureMountsEmpty(t *testing.T) {
	gw := newFakeGateway()
	b := newTestBoard(t, gw)

	gw.mu.Lock()
	gw.fetchErr = errors.New("boom")
	gw.mu.Unlock()

	err := b.SwitchView(context.Background(), ViewOperations)
	require.Error(t, err)

	s := b.Snapshot()
	assert.True(t, s.Mounted)
	assert.Empty(t, s.Events)
}

func TestBoard_MoveSuccess(t *testing.T) {
	gw := newFakeGateway()
	b := newTestBoard(t, gw)

	start, end := at(10, 0).Time, at(14, 0).Time
	res, err := b.Move(context.Background(), MoveRequest{ID: "WO-1", Start: start, End: end})
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, "Work Order rescheduled successfully", res.Message)
	assert.Equal(t, at(8, 0).Time, res.PrevStart)

	ev, ok := b.Event("WO-1")
	require.True(t, ok)
	assert.Equal(t, start, ev.Start)
	assert.Equal(t, end, ev.End)
	assert.Equal(t, []string{"wo:WO-1"}, gw.updates)
}

func TestBoard_MoveFailureReverts(t *testing.T) {
	gw := newFakeGateway()
	gw.updateErr = &frappe.RemoteError{Method: "update_job_card_schedule", Status: 417, Messages: []string{"Workstation is busy"}}
	b := newTestBoard(t, gw)
	require.NoError(t, b.SwitchView(context.Background(), ViewOperations))

	before, ok := b.Event("JC-1")
	require.True(t, ok)

	res, err := b.Move(context.Background(), MoveRequest{
		ID: "JC-1", Start: at(11, 0).Time, End: at(13, 0).Time, Gesture: GestureResize,
	})
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, "Duration update failed: Workstation is busy", res.Message)
	assert.Equal(t, "Workstation is busy", res.Reason)

	after, ok := b.Event("JC-1")
	require.True(t, ok)
	assert.Equal(t, before.Start, after.Start)
	assert.Equal(t, before.End, after.End)
	assert.Equal(t, before.Start, res.Start)
	assert.Empty(t, b.Snapshot().Pending)
}

func TestBoard_MoveRejections(t *testing.T) {
	gw := newFakeGateway()
	b := newTestBoard(t, gw)
	ctx := context.Background()

	_, err := b.Move(ctx, MoveRequest{ID: "WO-1", Start: at(10, 0).Time, End: at(9, 0).Time})
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = b.Move(ctx, MoveRequest{ID: "nope", Start: at(9, 0).Time, End: at(10, 0).Time})
	assert.ErrorIs(t, err, ErrEventNotFound)

	require.NoError(t, b.SwitchView(ctx, ViewOperations))
	_, err = b.Move(ctx, MoveRequest{ID: "JC-2", Start: at(9, 0).Time, End: at(10, 0).Time})
	assert.ErrorIs(t, err, ErrNotEditable)

	b.Destroy()
	_, err = b.Move(ctx, MoveRequest{ID: "JC-1", Start: at(9, 0).Time, End: at(10, 0).Time})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestBoard_InflightMove(t *testing.T) {
	gw := newFakeGateway()
	gw.block = make(chan struct{})
	gw.entered = make(chan struct{}, 1)
	b := newTestBoard(t, gw)
	ctx := context.Background()

	done := make(chan MoveResult, 1)
	go func() {
		res, _ := b.Move(ctx, MoveRequest{ID: "WO-1", Start: at(10, 0).Time, End: at(14, 0).Time})
		done <- res
	}()
	<-gw.entered

	// optimistic times are visible while the update is outstanding
	ev, _ := b.Event("WO-1")
	assert.Equal(t, at(10, 0).Time, ev.Start)
	assert.Equal(t, []string{"WO-1"}, b.Snapshot().Pending)

	// a second gesture on the same event is refused
	_, err := b.Move(ctx, MoveRequest{ID: "WO-1", Start: at(9, 0).Time, End: at(10, 0).Time})
	assert.ErrorIs(t, err, ErrMovePending)

	// a poll tick does not fetch
	woBefore, _, _ := gw.counts()
	require.NoError(t, b.refresh(ctx, true))
	woAfter, _, _ := gw.counts()
	assert.Equal(t, woBefore, woAfter)

	// a manual refresh fetches but keeps the pending times
	require.NoError(t, b.Refresh(ctx))
	woManual, _, _ := gw.counts()
	assert.Equal(t, woAfter+1, woManual)
	ev, _ = b.Event("WO-1")
	assert.Equal(t, at(10, 0).Time, ev.Start)

	close(gw.block)
	res := <-done
	assert.True(t, res.OK)
	assert.Empty(t, b.Snapshot().Pending)
}

func TestBoard_RefreshReplacesWholesale(t *testing.T) {
	gw := newFakeGateway()
	b := newTestBoard(t, gw)

	gw.mu.Lock()
	gw.workOrders = gw.workOrders[:1]
	gw.mu.Unlock()

	v := b.Version()
	require.NoError(t, b.Refresh(context.Background()))
	s := b.Snapshot()
	assert.Len(t, s.Events, 1)
	assert.Greater(t, s.Version, v)
}

func TestBoard_ApplyZoomUpdatesInPlaceAndRefetches(t *testing.T) {
	gw := newFakeGateway()
	b := newTestBoard(t, gw)
	woBefore, _, _ := gw.counts()

	z, err := b.ApplyZoom(context.Background(), ZoomIn)
	require.NoError(t, err)
	assert.InDelta(t, 1.4, float64(z), 1e-9)

	s := b.Snapshot()
	assert.Equal(t, "01:00:00", s.Config.SlotDuration)
	assert.InDelta(t, 12*1.1832, s.Config.FontSize, 0.01)

	z, err = b.ApplyZoom(context.Background(), ZoomIn)
	require.NoError(t, err)
	assert.Equal(t, "00:30:00", b.Snapshot().Config.SlotDuration)
	assert.Equal(t, "Normal (30min slots)", z.Label())

	woAfter, _, _ := gw.counts()
	assert.Equal(t, woBefore+2, woAfter)

	_, err = b.ApplyZoom(context.Background(), "spin")
	assert.Error(t, err)
}

func TestBoard_GotoDateSurvivesViewSwitch(t *testing.T) {
	gw := newFakeGateway()
	b := newTestBoard(t, gw)

	assert.ErrorIs(t, b.GotoDate("04/03/2024"), ErrInvalidDate)
	require.NoError(t, b.GotoDate("2024-03-04"))
	assert.Equal(t, "2024-03-04", b.Snapshot().Config.InitialDate)

	require.NoError(t, b.SwitchView(context.Background(), ViewOperations))
	assert.Equal(t, "2024-03-04", b.Snapshot().Config.InitialDate)
}

func TestBoard_HighlightAndRoute(t *testing.T) {
	gw := newFakeGateway()
	b := newTestBoard(t, gw)
	require.NoError(t, b.SwitchView(context.Background(), ViewOperations))

	h := b.HighlightWorkstation("Mill-1")
	assert.Equal(t, []string{"JC-2"}, h.EventIDs)
	assert.Equal(t, "JC-2", h.First)
	assert.Equal(t, "Mill-1", b.Snapshot().Highlight)

	r, err := b.Route("JC-1", Linker{})
	require.NoError(t, err)
	assert.Equal(t, "/jobcards/JC-1", r.URL)
	assert.Equal(t, "Job Card", r.DocType)

	r, err = b.Route("JC-1", Linker{DeskBaseURL: "https://erp.example.com/"})
	require.NoError(t, err)
	assert.Equal(t, "https://erp.example.com/app/job-card/JC-1", r.URL)

	_, err = b.Route("WO-9", Linker{})
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestBoard_PollerRefreshes(t *testing.T) {
	gw := newFakeGateway()
	b := NewBoard("poll", gw, Options{PollInterval: 5 * time.Millisecond}, nil)
	require.NoError(t, b.Create(context.Background()))

	require.Eventually(t, func() bool {
		wo, _, _ := gw.counts()
		return wo >= 3
	}, 2*time.Second, 5*time.Millisecond)

	b.Destroy()
	assert.True(t, b.Closed())
	after, _, _ := gw.counts()
	time.Sleep(30 * time.Millisecond)
	final, _, _ := gw.counts()
	assert.Equal(t, after, final, "no fetches after destroy")
}

func TestBoard_DestroyIsIdempotent(t *testing.T) {
	gw := newFakeGateway()
	b := newTestBoard(t, gw)
	b.Destroy()
	b.Destroy()
	assert.False(t, b.Snapshot().Mounted)
	assert.ErrorIs(t, b.SwitchView(context.Background(), ViewOperations), ErrClosed)
}

func TestLinker_WorkOrder(t *testing.T) {
	r := Linker{}.Route(models.EventKindWorkOrder, "MFG-WO-2024/001")
	assert.Equal(t, "/workorders/MFG-WO-2024%2F001", r.URL)
	assert.Equal(t, "Work Order", r.DocType)
}
