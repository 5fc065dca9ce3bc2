// internal/app/system/calendar/view.go
package calendar

import "fmt"

// ViewMode selects which records feed the calendar.
type ViewMode string

const (
	ViewWorkOrders ViewMode = "work_orders"
	ViewOperations ViewMode = "operations"
)

// ParseViewMode validates a mode name from a request.
func ParseViewMode(s string) (ViewMode, error) {
	switch ViewMode(s) {
	case ViewWorkOrders, ViewOperations:
		return ViewMode(s), nil
	}
	return "", fmt.Errorf("unknown view mode %q", s)
}

// Label is the toolbar button text for the mode.
func (m ViewMode) Label() string {
	if m == ViewOperations {
		return "Operations & Workstations"
	}
	return "Work Orders"
}

// ShowsSidebar reports whether the workstation sidebar belongs to the mode.
func (m ViewMode) ShowsSidebar() bool {
	return m == ViewOperations
}

// HeaderToolbar mirrors the calendar widget's header layout.
type HeaderToolbar struct {
	Left   string `json:"left"`
	Center string `json:"center"`
	Right  string `json:"right"`
}

// WidgetConfig is everything the browser needs to construct the calendar
// widget. It is recomputed whenever the widget is recreated; zoom changes
// update the slot fields in place.
type WidgetConfig struct {
	InitialView        string        `json:"initialView"`
	InitialDate        string        `json:"initialDate,omitempty"`
	Header             HeaderToolbar `json:"headerToolbar"`
	SlotDuration       string        `json:"slotDuration"`
	SlotLabelInterval  string        `json:"slotLabelInterval"`
	SnapDuration       string        `json:"snapDuration"`
	SlotMinTime        string        `json:"slotMinTime"`
	SlotMaxTime        string        `json:"slotMaxTime"`
	ScrollTime         string        `json:"scrollTime"`
	DayMaxEvents       bool          `json:"dayMaxEvents"`
	NowIndicator       bool          `json:"nowIndicator"`
	Editable           bool          `json:"editable"`
	ResizableFromStart bool          `json:"eventResizableFromStart"`
	AllDaySlot         bool          `json:"allDaySlot"`
	FontSize           float64       `json:"fontSize"`
	SidebarVisible     bool          `json:"sidebarVisible"`
}

// buildConfig computes a fresh widget configuration for a mode and zoom.
func buildConfig(mode ViewMode, z Zoom, initialDate string) WidgetConfig {
	cfg := WidgetConfig{
		InitialView: "timeGridWeek",
		InitialDate: initialDate,
		Header: HeaderToolbar{
			Left:   "prev,next today",
			Center: "title",
			Right:  "dayGridMonth,timeGridWeek,timeGridDay",
		},
		SlotMinTime:        "05:00:00",
		SlotMaxTime:        "23:00:00",
		ScrollTime:         "08:00:00",
		DayMaxEvents:       true,
		NowIndicator:       true,
		Editable:           true,
		ResizableFromStart: true,
		SidebarVisible:     mode.ShowsSidebar(),
	}
	if mode == ViewOperations {
		cfg.DayMaxEvents = false
	}
	applyZoom(&cfg, z)
	return cfg
}

// applyZoom rewrites only the zoom-dependent fields.
func applyZoom(cfg *WidgetConfig, z Zoom) {
	slot := FormatSlot(z.SlotDuration())
	cfg.SlotDuration = slot
	cfg.SlotLabelInterval = slot
	cfg.SnapDuration = slot
	cfg.FontSize = z.FontSize()
}
