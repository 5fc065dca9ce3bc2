// internal/app/features/calendar/page.go
package calendar

import (
	"net/http"

	"github.com/dalemusser/stratasched/internal/app/system/calendar"
	"github.com/dalemusser/stratasched/internal/app/system/frappe"
	"github.com/dalemusser/stratasched/internal/app/system/timeouts"
	"github.com/dalemusser/stratasched/internal/app/system/viewdata"
	"github.com/dalemusser/stratasched/internal/app/system/workstations"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type pageData struct {
	viewdata.BaseVM

	BoardID   string
	Mode      calendar.ViewMode
	ZoomLabel string
	LoadError string

	Modes []modeOption

	// Operations mode only
	Sidebar []workstations.Group
	Summary string
}

type modeOption struct {
	Value    calendar.ViewMode
	Label    string
	Shortcut string
	Active   bool
}

// Page renders the calendar page. The board is opened on first visit; the
// page script then polls /calendar/api/state for events.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.logger, "calendar page")
	defer cancel()

	b, err := h.ensureBoard(ctx, w, r)
	if b == nil {
		h.errLog.Log(r, "failed to open calendar board", err)
		http.Error(w, "calendar unavailable", http.StatusInternalServerError)
		return
	}

	vm := pageData{
		BaseVM: viewdata.WithFlashes(w, r, viewdata.NewBaseVM(r, "Work Order Calendar", "/calendar")),
	}
	if err != nil {
		h.logger.Warn("calendar initial load failed", zap.String("board_id", b.ID()), zap.Error(err))
		vm.LoadError = "Failed to load calendar data: " + frappe.Message(err)
	}

	snap := b.Snapshot()
	vm.BoardID = snap.BoardID
	vm.Mode = snap.Mode
	vm.ZoomLabel = snap.ZoomLabel
	vm.Modes = []modeOption{
		{Value: calendar.ViewWorkOrders, Label: calendar.ViewWorkOrders.Label(), Shortcut: "Ctrl+1", Active: snap.Mode == calendar.ViewWorkOrders},
		{Value: calendar.ViewOperations, Label: calendar.ViewOperations.Label(), Shortcut: "Ctrl+2", Active: snap.Mode == calendar.ViewOperations},
	}
	if snap.Config.SidebarVisible {
		vm.Sidebar = workstations.Sidebar(snap.Workstations)
		vm.Summary = workstations.Summary(snap.Workstations)
	}

	templates.Render(w, r, "calendar_index", vm)
}
