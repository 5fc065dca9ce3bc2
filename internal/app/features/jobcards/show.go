// internal/app/features/jobcards/show.go
package jobcards

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dalemusser/stratasched/internal/app/system/frappe"
	"github.com/dalemusser/stratasched/internal/app/system/scheduling"
	"github.com/dalemusser/stratasched/internal/app/system/timeouts"
	"github.com/dalemusser/stratasched/internal/app/system/viewdata"
	"github.com/dalemusser/stratasched/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
)

// inputLayout matches <input type="datetime-local">.
const inputLayout = "2006-01-02T15:04"

type showData struct {
	viewdata.BaseVM

	JobCard       models.JobCard
	Path          string
	StatusPill    string
	Expected      string
	Progress      string
	WorkOrderPath string
	DeskURL       string

	Indicators []scheduling.Indicator

	CanCheck      bool
	CanReschedule bool

	// Availability check result, set after a check
	Checked      bool
	Availability scheduling.Availability
	Conflicts    []conflictRow
	CheckError   string

	Form      rescheduleForm
	FormError string
}

type conflictRow struct {
	Name      string
	Operation string
	Start     string
	End       string
	WorkOrder string
}

type rescheduleForm struct {
	NewStart       string
	NewEnd         string
	NewWorkstation string
}

func formatInput(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(inputLayout)
}

// newShowData builds the page for jc with the reschedule form defaulted to
// the current schedule.
func (h *Handler) newShowData(w http.ResponseWriter, r *http.Request, jc models.JobCard) showData {
	actions := scheduling.JobCardActions(jc)
	vm := showData{
		BaseVM:        viewdata.WithFlashes(w, r, viewdata.NewBaseVM(r, jc.Name, "/calendar")),
		JobCard:       jc,
		Path:          Path(jc.Name),
		StatusPill:    models.StatusPill(jc.Status),
		Expected:      scheduling.FormatRange(jc.ExpectedStartDate, jc.ExpectedEndDate),
		Progress:      fmt.Sprintf("%.1f%%", scheduling.Progress(jc)),
		Indicators:    scheduling.JobCardIndicators(jc),
		CanCheck:      scheduling.HasAction(actions, scheduling.ActionCheckAvailability),
		CanReschedule: scheduling.HasAction(actions, scheduling.ActionQuickReschedule),
		Form: rescheduleForm{
			NewStart:       formatInput(jc.ExpectedStartDate),
			NewEnd:         formatInput(jc.ExpectedEndDate),
			NewWorkstation: jc.Workstation,
		},
	}
	if jc.WorkOrder != "" {
		vm.WorkOrderPath = h.linker.Route(models.EventKindWorkOrder, jc.WorkOrder).URL
	}
	if vm.Desk != "" {
		vm.DeskURL = h.linker.Route(models.EventKindOperation, jc.Name).URL
	}
	return vm
}

// Show renders a job card with its indicators and actions.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.logger, "job card page")
	defer cancel()

	jc, ok := h.load(ctx, w, r, name)
	if !ok {
		return
	}
	templates.Render(w, r, "jobcard_show", h.newShowData(w, r, jc))
}

// Availability checks the job card's expected window against the other job
// cards booked on its workstation and shows the result on the page.
func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.logger, "job card availability")
	defer cancel()

	jc, ok := h.load(ctx, w, r, name)
	if !ok {
		return
	}
	vm := h.newShowData(w, r, jc)
	if !vm.CanCheck {
		vm.CheckError = "Set a workstation and expected start and end times to check availability."
		w.WriteHeader(http.StatusUnprocessableEntity)
		templates.Render(w, r, "jobcard_show", vm)
		return
	}

	others, err := h.gw.OtherJobCardsOnWorkstation(ctx, jc.Workstation, jc.Name)
	if err != nil {
		h.errLog.Log(r, "availability lookup failed", err)
		vm.CheckError = "Could not check availability: " + frappe.Message(err)
		templates.Render(w, r, "jobcard_show", vm)
		return
	}

	vm.Checked = true
	vm.Availability = scheduling.CheckAvailability(jc, others)
	for _, c := range vm.Availability.Conflicts {
		vm.Conflicts = append(vm.Conflicts, conflictRow{
			Name:      c.Name,
			Operation: c.Operation,
			Start:     scheduling.FormatTime(c.ExpectedStartDate),
			End:       scheduling.FormatTime(c.ExpectedEndDate),
			WorkOrder: c.WorkOrder,
		})
	}
	templates.Render(w, r, "jobcard_show", vm)
}
