// internal/app/features/calendar/api.go
package calendar

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dalemusser/stratasched/internal/app/system/calendar"
	"github.com/dalemusser/stratasched/internal/app/system/frappe"
	"github.com/dalemusser/stratasched/internal/app/system/htmlsanitize"
	"github.com/dalemusser/stratasched/internal/app/system/jsonutil"
	"github.com/dalemusser/stratasched/internal/app/system/timeouts"
	"github.com/dalemusser/stratasched/internal/app/system/tooltip"
	"github.com/dalemusser/stratasched/internal/app/system/workstations"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxBodyBytes = 64 << 10

/*───────────────────────────────────────────────────────────────────────────*
| State                                                                       |
*───────────────────────────────────────────────────────────────────────────*/

// stateResponse is a board snapshot plus the load error, if any, that the
// page should show.
type stateResponse struct {
	calendar.Snapshot
	Summary string `json:"summary,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (h *Handler) state(b *calendar.Board, loadErr error) stateResponse {
	resp := stateResponse{Snapshot: b.Snapshot()}
	if resp.Config.SidebarVisible {
		resp.Summary = workstations.Summary(resp.Workstations)
	}
	if loadErr != nil {
		resp.Error = htmlsanitize.StripTags(frappe.Message(loadErr))
	}
	return resp
}

// State returns the board snapshot. With ?since=<version> it answers 204
// when nothing changed.
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.logger, "calendar state")
	defer cancel()

	b, err := h.ensureBoard(ctx, w, r)
	if b == nil {
		h.errLog.Log(r, "failed to open calendar board", err)
		jsonutil.Error(w, http.StatusInternalServerError, "calendar unavailable")
		return
	}
	if since := r.URL.Query().Get("since"); since != "" && err == nil {
		if v, perr := strconv.ParseUint(since, 10, 64); perr == nil && v == b.Version() {
			jsonutil.NoContent(w)
			return
		}
	}
	jsonutil.OK(w, h.state(b, err))
}

/*───────────────────────────────────────────────────────────────────────────*
| View, zoom, refresh, date                                                   |
*───────────────────────────────────────────────────────────────────────────*/

type viewRequest struct {
	Mode string `json:"mode"`
}

// SwitchView tears down and rebuilds the widget in the requested mode.
func (h *Handler) SwitchView(w http.ResponseWriter, r *http.Request) {
	var in viewRequest
	if !decode(w, r, &in) {
		return
	}
	mode, err := calendar.ParseViewMode(in.Mode)
	if err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}
	b := h.requireBoard(w, r)
	if b == nil {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.logger, "calendar switch view")
	defer cancel()

	err = b.SwitchView(ctx, mode)
	if errors.Is(err, calendar.ErrClosed) {
		jsonutil.Gone(w, "calendar closed; reload the page")
		return
	}
	if err != nil {
		h.logger.Warn("view switch load failed",
			zap.String("board_id", b.ID()), zap.String("mode", string(mode)), zap.Error(err))
	}
	jsonutil.OK(w, h.state(b, err))
}

type zoomRequest struct {
	Action string `json:"action"`
	// DeltaY is the wheel delta; used when Action is "wheel".
	DeltaY float64 `json:"deltaY,omitempty"`
}

// Zoom changes the zoom level and re-fetches.
func (h *Handler) Zoom(w http.ResponseWriter, r *http.Request) {
	var in zoomRequest
	if !decode(w, r, &in) {
		return
	}
	action := calendar.ZoomAction(in.Action)
	if in.Action == "wheel" {
		action = calendar.WheelAction(in.DeltaY)
	}
	b := h.requireBoard(w, r)
	if b == nil {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.logger, "calendar zoom")
	defer cancel()

	_, err := b.ApplyZoom(ctx, action)
	switch {
	case errors.Is(err, calendar.ErrClosed):
		jsonutil.Gone(w, "calendar closed; reload the page")
		return
	case errors.Is(err, calendar.ErrUnknownZoom):
		jsonutil.BadRequest(w, err.Error())
		return
	}
	jsonutil.OK(w, h.state(b, err))
}

// Refresh re-fetches the current view.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	b := h.requireBoard(w, r)
	if b == nil {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.logger, "calendar refresh")
	defer cancel()

	err := b.Refresh(ctx)
	switch {
	case errors.Is(err, calendar.ErrClosed):
		jsonutil.Gone(w, "calendar closed; reload the page")
		return
	case errors.Is(err, calendar.ErrNotMounted):
		// The last mount failed; try a full rebuild instead.
		err = b.SwitchView(ctx, b.Snapshot().Mode)
	}
	if err != nil {
		h.logger.Warn("calendar refresh failed", zap.String("board_id", b.ID()), zap.Error(err))
	}
	jsonutil.OK(w, h.state(b, err))
}

type gotoRequest struct {
	Date string `json:"date"`
}

// Goto records the date the page jumped to.
func (h *Handler) Goto(w http.ResponseWriter, r *http.Request) {
	var in gotoRequest
	if !decode(w, r, &in) {
		return
	}
	b := h.requireBoard(w, r)
	if b == nil {
		return
	}
	if err := b.GotoDate(in.Date); err != nil {
		if errors.Is(err, calendar.ErrClosed) {
			jsonutil.Gone(w, "calendar closed; reload the page")
			return
		}
		jsonutil.BadRequest(w, err.Error())
		return
	}
	jsonutil.OK(w, h.state(b, nil))
}

/*───────────────────────────────────────────────────────────────────────────*
| Events                                                                      |
*───────────────────────────────────────────────────────────────────────────*/

type moveRequest struct {
	Start   string `json:"start"`
	End     string `json:"end"`
	Gesture string `json:"gesture"`
}

type moveResponse struct {
	calendar.MoveResult
	Version uint64 `json:"version"`
}

// Move applies a drag or resize. A rejected update answers 200 with ok=false
// and the reverted times; only malformed or conflicting requests are errors.
func (h *Handler) Move(w http.ResponseWriter, r *http.Request) {
	var in moveRequest
	if !decode(w, r, &in) {
		return
	}
	start, ok1 := frappe.ParseDatetime(in.Start)
	end, ok2 := frappe.ParseDatetime(in.End)
	if !ok1 || !ok2 {
		jsonutil.BadRequest(w, "start and end must be datetimes")
		return
	}
	gesture := calendar.Gesture(in.Gesture)
	if gesture == "" {
		gesture = calendar.GestureDrag
	}
	if gesture != calendar.GestureDrag && gesture != calendar.GestureResize {
		jsonutil.BadRequest(w, "gesture must be drag or resize")
		return
	}
	b := h.requireBoard(w, r)
	if b == nil {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.logger, "calendar move")
	defer cancel()

	req := calendar.MoveRequest{ID: chi.URLParam(r, "id"), Start: start, End: end, Gesture: gesture}
	res, err := b.Move(ctx, req)
	switch {
	case errors.Is(err, calendar.ErrClosed):
		jsonutil.Gone(w, "calendar closed; reload the page")
		return
	case errors.Is(err, calendar.ErrEventNotFound):
		jsonutil.NotFound(w, err.Error())
		return
	case errors.Is(err, calendar.ErrMovePending):
		jsonutil.Conflict(w, err.Error())
		return
	case err != nil:
		jsonutil.BadRequest(w, err.Error())
		return
	}

	res.Message = htmlsanitize.StripTags(res.Message)
	h.audit.Move(r.Context(), r, b.ID(), req, res)
	jsonutil.OK(w, moveResponse{MoveResult: res, Version: b.Version()})
}

type tooltipResponse struct {
	HTML string `json:"html"`
	tooltip.Point
}

// Tooltip renders an event's hover card and places it next to the pointer.
// Query: x, y (pointer), w, h (tooltip size), vw, vh (viewport).
func (h *Handler) Tooltip(w http.ResponseWriter, r *http.Request) {
	b := h.requireBoard(w, r)
	if b == nil {
		return
	}
	ev, ok := b.Event(chi.URLParam(r, "id"))
	if !ok {
		jsonutil.NotFound(w, calendar.ErrEventNotFound.Error())
		return
	}
	q := r.URL.Query()
	pos := tooltip.Position(
		tooltip.Point{X: floatParam(q.Get("x")), Y: floatParam(q.Get("y"))},
		tooltip.Size{W: floatParam(q.Get("w")), H: floatParam(q.Get("h"))},
		tooltip.Size{W: floatParam(q.Get("vw")), H: floatParam(q.Get("vh"))},
	)
	jsonutil.OK(w, tooltipResponse{HTML: string(tooltip.Render(ev)), Point: pos})
}

// Route resolves where an event click navigates.
func (h *Handler) Route(w http.ResponseWriter, r *http.Request) {
	b := h.requireBoard(w, r)
	if b == nil {
		return
	}
	route, err := b.Route(chi.URLParam(r, "id"), h.linker)
	if err != nil {
		jsonutil.NotFound(w, err.Error())
		return
	}
	jsonutil.OK(w, route)
}

// Highlight marks the events scheduled on a sidebar workstation.
func (h *Handler) Highlight(w http.ResponseWriter, r *http.Request) {
	b := h.requireBoard(w, r)
	if b == nil {
		return
	}
	jsonutil.OK(w, b.HighlightWorkstation(chi.URLParam(r, "id")))
}

// Close destroys the caller's board. Sent on page unload.
func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	if id := h.sessions.BoardID(r); id != "" {
		h.boards.Close(id)
		if err := h.sessions.ClearBoardID(w, r); err != nil {
			h.logger.Debug("failed to clear board id", zap.Error(err))
		}
	}
	jsonutil.NoContent(w)
}

/*───────────────────────────────────────────────────────────────────────────*
| Helpers                                                                     |
*───────────────────────────────────────────────────────────────────────────*/

// requireBoard returns the caller's board or writes 409 telling the page to
// reload.
func (h *Handler) requireBoard(w http.ResponseWriter, r *http.Request) *calendar.Board {
	b := h.board(r)
	if b == nil {
		jsonutil.Conflict(w, "no calendar open; reload the page")
	}
	return b
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := jsonutil.Decode(r, v); err != nil {
		jsonutil.BadRequest(w, "invalid JSON body")
		return false
	}
	return true
}

func floatParam(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
