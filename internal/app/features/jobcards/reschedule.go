// internal/app/features/jobcards/reschedule.go
package jobcards

import (
	"net/http"
	"strings"

	"github.com/dalemusser/stratasched/internal/app/system/frappe"
	"github.com/dalemusser/stratasched/internal/app/system/htmlsanitize"
	"github.com/dalemusser/stratasched/internal/app/system/inputval"
	"github.com/dalemusser/stratasched/internal/app/system/normalize"
	"github.com/dalemusser/stratasched/internal/app/system/scheduling"
	"github.com/dalemusser/stratasched/internal/app/system/session"
	"github.com/dalemusser/stratasched/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const msgRescheduled = "Job Card rescheduled successfully!"

// RescheduleInput is the quick reschedule form.
type RescheduleInput struct {
	NewStart       string `validate:"required,datetime" label:"New Start Date/Time"`
	NewEnd         string `validate:"required,datetime" label:"New End Date/Time"`
	NewWorkstation string `validate:"max=140" label:"New Workstation"`
}

// Reschedule moves a job card to a new window and optionally a new
// workstation.
func (h *Handler) Reschedule(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.logger, "job card reschedule")
	defer cancel()

	jc, ok := h.load(ctx, w, r, name)
	if !ok {
		return
	}

	in := RescheduleInput{
		NewStart:       strings.TrimSpace(r.FormValue("new_start")),
		NewEnd:         strings.TrimSpace(r.FormValue("new_end")),
		NewWorkstation: normalize.Workstation(r.FormValue("new_workstation")),
	}
	rerender := func(status int, msg string) {
		vm := h.newShowData(w, r, jc)
		vm.Form = rescheduleForm(in)
		vm.FormError = msg
		w.WriteHeader(status)
		templates.Render(w, r, "jobcard_show", vm)
	}

	if !scheduling.HasAction(scheduling.JobCardActions(jc), scheduling.ActionQuickReschedule) {
		rerender(http.StatusUnprocessableEntity, "Assign a workstation before rescheduling.")
		return
	}

	res := inputval.Validate(in)
	start, _ := frappe.ParseDatetime(in.NewStart)
	end, _ := frappe.ParseDatetime(in.NewEnd)
	if !res.HasErrors() && !end.After(start) {
		res.Add("NewEnd", "New End Date/Time", "New End Date/Time must be after New Start Date/Time.")
	}
	if res.HasErrors() {
		rerender(http.StatusUnprocessableEntity, res.First())
		return
	}

	workstation := jc.Workstation
	changeTo := ""
	if in.NewWorkstation != "" && in.NewWorkstation != jc.Workstation {
		changeTo = in.NewWorkstation
		workstation = in.NewWorkstation
	}

	err := h.gw.UpdateJobCardSchedule(ctx, jc.Name, start, end, changeTo)
	h.audit.Reschedule(ctx, r, jc.Name, jc, start, end, workstation, err)
	if err != nil {
		h.logger.Warn("quick reschedule failed", zap.String("job_card", jc.Name), zap.Error(err))
		rerender(http.StatusOK, "Rescheduling failed: "+htmlsanitize.StripTags(frappe.Message(err)))
		return
	}

	if err := h.sessions.AddFlash(w, r, session.FlashSuccess, msgRescheduled); err != nil {
		h.logger.Warn("failed to save flash", zap.Error(err))
	}
	http.Redirect(w, r, Path(jc.Name), http.StatusSeeOther)
}
