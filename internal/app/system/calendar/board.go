// internal/app/system/calendar/board.go
package calendar

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dalemusser/stratasched/internal/app/system/frappe"
	"github.com/dalemusser/stratasched/internal/app/system/metrics"
	"github.com/dalemusser/stratasched/internal/app/system/workstations"
	"github.com/dalemusser/stratasched/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Board errors.
var (
	ErrClosed        = errors.New("calendar board is closed")
	ErrNotMounted    = errors.New("calendar is not mounted")
	ErrEventNotFound = errors.New("event not found")
	ErrNotEditable   = errors.New("event cannot be rescheduled")
	ErrMovePending   = errors.New("event has a reschedule in progress")
	ErrInvalidRange  = errors.New("end must be after start")
	ErrInvalidDate   = errors.New("date must be YYYY-MM-DD")
	ErrUnknownZoom   = errors.New("unknown zoom action")
)

// Gateway is the part of the ERP client a board uses.
type Gateway interface {
	ScheduledWorkOrders(ctx context.Context) ([]frappe.Event, error)
	WorkstationResources(ctx context.Context) ([]frappe.ResourceGroup, error)
	JobCardsWithWorkstations(ctx context.Context) ([]frappe.Event, error)
	UpdateWorkOrderSchedule(ctx context.Context, name string, start, end time.Time) error
	UpdateJobCardSchedule(ctx context.Context, name string, start, end time.Time, newWorkstation string) error
}

// Options tunes board behavior.
type Options struct {
	// PollInterval is the auto-refresh period. Zero disables polling.
	PollInterval time.Duration
	// FetchTimeout bounds each poll fetch.
	FetchTimeout time.Duration
	// Now is the clock used for idle tracking; defaults to time.Now.
	Now func() time.Time
}

// DefaultOptions polls every two seconds.
func DefaultOptions() Options {
	return Options{PollInterval: 2 * time.Second, FetchTimeout: 10 * time.Second}
}

// Board is the calendar controller for one browser client. It owns the
// widget lifecycle, the view mode, the zoom level and the optimistic
// reschedule protocol. All methods are safe for concurrent use; remote calls
// are made without holding the lock.
type Board struct {
	id   string
	gw   Gateway
	log  *zap.Logger
	opts Options

	mu           sync.Mutex
	closed       bool
	widget       *widget
	mode         ViewMode
	zoom         Zoom
	date         string
	workstations []models.WorkstationGroup
	highlight    string
	pending      map[string]pendingMove
	generation   uint64 // bumped when the widget is destroyed
	mutations    uint64 // bumped when a move starts or ends
	version      uint64 // bumped on every visible change
	lastSeen     time.Time

	pollCancel context.CancelFunc
	pollDone   chan struct{}
}

type widget struct {
	config WidgetConfig
	events []models.CalendarEvent
}

func (w *widget) find(id string) int {
	for i := range w.events {
		if w.events[i].ID == id {
			return i
		}
	}
	return -1
}

type pendingMove struct {
	start, end time.Time
}

// NewBoard returns an unmounted board in Work Orders mode at default zoom.
func NewBoard(id string, gw Gateway, opts Options, logger *zap.Logger) *Board {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 10 * time.Second
	}
	return &Board{
		id:       id,
		gw:       gw,
		log:      logger.With(zap.String("board_id", id)),
		opts:     opts,
		mode:     ViewWorkOrders,
		zoom:     DefaultZoom,
		pending:  make(map[string]pendingMove),
		lastSeen: opts.Now(),
	}
}

// ID returns the board identifier.
func (b *Board) ID() string {
	return b.id
}

// Create mounts the widget in the current mode and starts auto-refresh.
func (b *Board) Create(ctx context.Context) error {
	b.mu.Lock()
	mode := b.mode
	b.mu.Unlock()

	err := b.SwitchView(ctx, mode)

	b.mu.Lock()
	if !b.closed {
		b.startPollerLocked()
	}
	b.mu.Unlock()
	return err
}

// Destroy unmounts the widget and stops auto-refresh. It is idempotent.
func (b *Board) Destroy() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.widget = nil
	b.generation++
	cancel, done := b.pollCancel, b.pollDone
	b.pollCancel, b.pollDone = nil, nil
	b.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	b.log.Debug("calendar board destroyed")
}

// SwitchView destroys the current widget, recomputes its configuration for
// mode, fetches that mode's events and mounts a fresh widget. When the fetch
// fails the new widget is mounted empty and the error is returned.
func (b *Board) SwitchView(ctx context.Context, mode ViewMode) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	b.widget = nil
	b.generation++
	gen := b.generation
	b.mode = mode
	b.highlight = ""
	cfg := buildConfig(mode, b.zoom, b.date)
	b.lastSeen = b.opts.Now()
	b.mu.Unlock()

	events, groups, err := b.fetch(ctx, mode)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	if gen != b.generation {
		// A later switch owns the widget now.
		return err
	}
	w := &widget{config: cfg}
	if err == nil {
		w.events = b.overlayPendingLocked(events)
		if mode == ViewOperations {
			b.workstations = groups
		}
	}
	b.widget = w
	b.version++
	b.log.Debug("calendar view mounted",
		zap.String("mode", string(mode)),
		zap.Int("events", len(w.events)))
	if err != nil {
		return fmt.Errorf("load %s: %w", mode, err)
	}
	return nil
}

// Refresh re-fetches the current view's events and replaces them wholesale.
func (b *Board) Refresh(ctx context.Context) error {
	return b.refresh(ctx, false)
}

// refresh implements both manual and polled refreshes. A polled refresh is
// skipped while any move is unconfirmed; any refresh whose fetch overlapped a
// move starting or finishing is discarded as stale.
func (b *Board) refresh(ctx context.Context, polled bool) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	if b.widget == nil {
		b.mu.Unlock()
		return ErrNotMounted
	}
	if polled && len(b.pending) > 0 {
		b.mu.Unlock()
		metrics.IncPollSkipped()
		b.log.Debug("poll skipped: reschedule in flight")
		return nil
	}
	if !polled {
		b.lastSeen = b.opts.Now()
	}
	mode, gen, muts := b.mode, b.generation, b.mutations
	b.mu.Unlock()

	events, groups, err := b.fetch(ctx, mode)
	if err != nil {
		return fmt.Errorf("refresh %s: %w", mode, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || b.widget == nil || gen != b.generation {
		return nil
	}
	if muts != b.mutations {
		b.log.Debug("refresh discarded: schedule changed during fetch")
		return nil
	}
	b.widget.events = b.overlayPendingLocked(events)
	if mode == ViewOperations {
		b.workstations = groups
	}
	b.version++
	return nil
}

// ApplyZoom changes the zoom level, updates the slot settings of the mounted
// widget in place and re-fetches events so their text is redrawn.
func (b *Board) ApplyZoom(ctx context.Context, action ZoomAction) (Zoom, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return 0, ErrClosed
	}
	z, ok := b.zoom.Apply(action)
	if !ok {
		cur := b.zoom
		b.mu.Unlock()
		return cur, fmt.Errorf("%w %q", ErrUnknownZoom, action)
	}
	b.zoom = z
	mounted := b.widget != nil
	if mounted {
		applyZoom(&b.widget.config, z)
	}
	b.version++
	b.lastSeen = b.opts.Now()
	b.mu.Unlock()

	if !mounted {
		return z, nil
	}
	return z, b.Refresh(ctx)
}

// GotoDate moves the visible range to a YYYY-MM-DD date. The date survives
// view switches.
func (b *Board) GotoDate(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return ErrInvalidDate
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	b.date = date
	if b.widget != nil {
		b.widget.config.InitialDate = date
	}
	b.version++
	b.lastSeen = b.opts.Now()
	return nil
}

// Gesture is the kind of user interaction that produced a move.
type Gesture string

const (
	GestureDrag   Gesture = "drag"
	GestureResize Gesture = "resize"
)

// MoveRequest asks for an event to be rescheduled.
type MoveRequest struct {
	ID      string
	Start   time.Time
	End     time.Time
	Gesture Gesture
}

// MoveResult reports the outcome of a move. On failure Start/End hold the
// reverted (pre-gesture) times.
type MoveResult struct {
	ID        string           `json:"id"`
	Kind      models.EventKind `json:"kind"`
	Gesture   Gesture          `json:"gesture"`
	OK        bool             `json:"ok"`
	Message   string           `json:"message"`
	Start     time.Time        `json:"start"`
	End       time.Time        `json:"end"`
	PrevStart time.Time        `json:"prevStart"`
	PrevEnd   time.Time        `json:"prevEnd"`
	Reason    string           `json:"reason,omitempty"`
	Err       error            `json:"-"`
}

// Move reschedules an event optimistically: the new times are visible
// immediately, the update is sent to the server, and on failure the event
// is put back to its pre-gesture times.
//
// The returned error covers only requests that could not be attempted; a
// server rejection is reported through MoveResult.
func (b *Board) Move(ctx context.Context, req MoveRequest) (MoveResult, error) {
	if !req.End.After(req.Start) {
		return MoveResult{}, ErrInvalidRange
	}
	if req.Gesture != GestureResize {
		req.Gesture = GestureDrag
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return MoveResult{}, ErrClosed
	}
	if b.widget == nil {
		b.mu.Unlock()
		return MoveResult{}, ErrNotMounted
	}
	i := b.widget.find(req.ID)
	if i < 0 {
		b.mu.Unlock()
		return MoveResult{}, ErrEventNotFound
	}
	ev := &b.widget.events[i]
	if !ev.Editable {
		b.mu.Unlock()
		return MoveResult{}, ErrNotEditable
	}
	if _, busy := b.pending[req.ID]; busy {
		b.mu.Unlock()
		return MoveResult{}, ErrMovePending
	}

	res := MoveResult{
		ID:        req.ID,
		Kind:      ev.Kind,
		Gesture:   req.Gesture,
		PrevStart: ev.Start,
		PrevEnd:   ev.End,
	}
	ev.Start, ev.End = req.Start, req.End
	b.pending[req.ID] = pendingMove{start: req.Start, end: req.End}
	b.mutations++
	b.version++
	b.lastSeen = b.opts.Now()
	b.mu.Unlock()

	var err error
	if res.Kind == models.EventKindOperation {
		err = b.gw.UpdateJobCardSchedule(ctx, req.ID, req.Start, req.End, "")
	} else {
		err = b.gw.UpdateWorkOrderSchedule(ctx, req.ID, req.Start, req.End)
	}

	b.mu.Lock()
	delete(b.pending, req.ID)
	b.mutations++
	if err != nil {
		if b.widget != nil {
			if j := b.widget.find(req.ID); j >= 0 {
				b.widget.events[j].Start, b.widget.events[j].End = res.PrevStart, res.PrevEnd
			}
		}
		b.version++
		b.mu.Unlock()

		res.Start, res.End = res.PrevStart, res.PrevEnd
		res.Err = err
		res.Reason = frappe.Message(err)
		res.Message = failureMessage(req.Gesture, res.Reason)
		metrics.IncMove(string(res.Kind), "reverted")
		b.log.Info("reschedule reverted",
			zap.String("id", req.ID),
			zap.String("kind", string(res.Kind)),
			zap.Error(err))
		return res, nil
	}
	b.version++
	b.mu.Unlock()

	res.OK = true
	res.Start, res.End = req.Start, req.End
	res.Message = successMessage(res.Kind, req.Gesture)
	metrics.IncMove(string(res.Kind), "ok")
	return res, nil
}

func successMessage(kind models.EventKind, g Gesture) string {
	if g == GestureResize {
		return kind.Label() + " duration updated"
	}
	return kind.Label() + " rescheduled successfully"
}

func failureMessage(g Gesture, reason string) string {
	if reason == "" {
		reason = "Unknown error"
	}
	if g == GestureResize {
		return "Duration update failed: " + reason
	}
	return "Rescheduling failed: " + reason
}

// Event returns a copy of a mounted event.
func (b *Board) Event(id string) (models.CalendarEvent, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.widget == nil {
		return models.CalendarEvent{}, false
	}
	i := b.widget.find(id)
	if i < 0 {
		return models.CalendarEvent{}, false
	}
	return b.widget.events[i], true
}

// Route resolves the detail page an event click navigates to.
func (b *Board) Route(id string, l Linker) (Route, error) {
	ev, ok := b.Event(id)
	if !ok {
		return Route{}, ErrEventNotFound
	}
	return l.Route(ev.Kind, ev.ID), nil
}

// HighlightWorkstation marks the events on a workstation. Only meaningful in
// Operations mode; in Work Orders mode nothing matches.
func (b *Board) HighlightWorkstation(id string) workstations.Highlight {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.highlight = id
	b.lastSeen = b.opts.Now()
	if b.widget == nil {
		return workstations.Highlight{WorkstationID: id}
	}
	return workstations.HighlightEvents(b.widget.events, id)
}

// Snapshot is an immutable copy of the board for rendering.
type Snapshot struct {
	BoardID      string                    `json:"boardId"`
	Version      uint64                    `json:"version"`
	Mode         ViewMode                  `json:"mode"`
	Zoom         float64                   `json:"zoom"`
	ZoomLabel    string                    `json:"zoomLabel"`
	Date         string                    `json:"date,omitempty"`
	Mounted      bool                      `json:"mounted"`
	Config       WidgetConfig              `json:"config"`
	Events       []models.CalendarEvent    `json:"events"`
	Workstations []models.WorkstationGroup `json:"workstations,omitempty"`
	Highlight    string                    `json:"highlight,omitempty"`
	Pending      []string                  `json:"pending,omitempty"`
}

// Snapshot copies the current state and marks the board as seen.
func (b *Board) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastSeen = b.opts.Now()

	s := Snapshot{
		BoardID:   b.id,
		Version:   b.version,
		Mode:      b.mode,
		Zoom:      float64(b.zoom),
		ZoomLabel: b.zoom.Label(),
		Date:      b.date,
		Highlight: b.highlight,
		Events:    []models.CalendarEvent{},
	}
	if b.widget != nil {
		s.Mounted = true
		s.Config = b.widget.config
		s.Events = append(s.Events, b.widget.events...)
	} else {
		s.Config = buildConfig(b.mode, b.zoom, b.date)
	}
	if s.Config.SidebarVisible {
		s.Workstations = append([]models.WorkstationGroup(nil), b.workstations...)
	}
	for id := range b.pending {
		s.Pending = append(s.Pending, id)
	}
	return s
}

// Version is the change counter clients use to skip unchanged snapshots.
func (b *Board) Version() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.version
}

// LastSeen is the time of the last client interaction.
func (b *Board) LastSeen() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastSeen
}

// Closed reports whether Destroy has been called.
func (b *Board) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

func (b *Board) overlayPendingLocked(events []models.CalendarEvent) []models.CalendarEvent {
	if len(b.pending) == 0 {
		return events
	}
	for i := range events {
		if p, ok := b.pending[events[i].ID]; ok {
			events[i].Start, events[i].End = p.start, p.end
		}
	}
	return events
}

func (b *Board) fetch(ctx context.Context, mode ViewMode) ([]models.CalendarEvent, []models.WorkstationGroup, error) {
	if mode != ViewOperations {
		raw, err := b.gw.ScheduledWorkOrders(ctx)
		if err != nil {
			return nil, nil, err
		}
		return AdaptWorkOrders(raw), nil, nil
	}

	var (
		rawGroups []frappe.ResourceGroup
		rawOps    []frappe.Event
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rawGroups, err = b.gw.WorkstationResources(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		rawOps, err = b.gw.JobCardsWithWorkstations(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	groups := AdaptWorkstations(rawGroups)
	return AdaptOperations(rawOps, groups), groups, nil
}

func (b *Board) startPollerLocked() {
	if b.opts.PollInterval <= 0 || b.pollCancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	b.pollCancel, b.pollDone = cancel, done
	go b.poll(ctx, done)
}

func (b *Board) poll(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(b.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fctx, cancel := context.WithTimeout(ctx, b.opts.FetchTimeout)
			err := b.refresh(fctx, true)
			cancel()
			if err != nil && ctx.Err() == nil && !errors.Is(err, ErrNotMounted) {
				b.log.Debug("poll refresh failed", zap.Error(err))
			}
		}
	}
}
