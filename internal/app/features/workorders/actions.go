// internal/app/features/workorders/actions.go
package workorders

import (
	"net/http"

	"github.com/dalemusser/stratasched/internal/app/store/schedulelog"
	"github.com/dalemusser/stratasched/internal/app/system/frappe"
	"github.com/dalemusser/stratasched/internal/app/system/htmlsanitize"
	"github.com/dalemusser/stratasched/internal/app/system/scheduling"
	"github.com/dalemusser/stratasched/internal/app/system/session"
	"github.com/dalemusser/stratasched/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

// User-facing messages.
const (
	msgAutoScheduled     = "Work Order auto scheduled! Check the calendar."
	msgJobCardsScheduled = "Job Cards scheduled."
	msgNeedsPlannedDates = "Set planned start and end dates before scheduling Job Cards."
	msgTestWorkOrders    = "Test work orders created. You can now use Auto Schedule to schedule them."
	msgTestJobCards      = "Test job cards created."
)

// AutoSchedule asks the ERP to schedule the work order and its operations.
func (h *Handler) AutoSchedule(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	back := returnTo(r, Path(name))

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.logger, "auto schedule work order")
	defer cancel()

	msg, err := h.gw.AutoScheduleWorkOrder(ctx, name)
	h.audit.AutoSchedule(ctx, r, name, schedulelog.ActionAutoSchedule, msg, err)
	if err != nil {
		h.flash(w, r, session.FlashError, "Auto scheduling failed: "+htmlsanitize.StripTags(frappe.Message(err)))
	} else {
		h.flash(w, r, session.FlashSuccess, msgAutoScheduled)
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// AutoScheduleJobCards asks the ERP to place the work order's job cards
// inside its planned window. The work order must have planned dates.
func (h *Handler) AutoScheduleJobCards(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	back := returnTo(r, Path(name))

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.logger, "auto schedule job cards")
	defer cancel()

	wo, err := h.gw.GetWorkOrder(ctx, name)
	if err != nil {
		if frappe.IsNotFound(err) {
			h.pages.NotFound(w, r)
			return
		}
		h.errLog.Log(r, "failed to load work order", err)
		h.flash(w, r, session.FlashError, "Error scheduling Job Cards: "+htmlsanitize.StripTags(frappe.Message(err)))
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	if !scheduling.HasAction(scheduling.WorkOrderActions(wo, h.testTools), scheduling.ActionAutoScheduleJobCards) {
		h.flash(w, r, session.FlashError, msgNeedsPlannedDates)
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	msg, err := h.gw.AutoScheduleJobCards(ctx, name)
	h.audit.AutoSchedule(ctx, r, name, schedulelog.ActionAutoScheduleJobCards, msg, err)
	switch {
	case err != nil:
		h.flash(w, r, session.FlashError, "Error scheduling Job Cards: "+htmlsanitize.StripTags(frappe.Message(err)))
	case msg != "":
		h.flash(w, r, session.FlashSuccess, htmlsanitize.StripTags(msg))
	default:
		h.flash(w, r, session.FlashSuccess, msgJobCardsScheduled)
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// CreateTestWorkOrders generates a batch of demo work orders.
func (h *Handler) CreateTestWorkOrders(w http.ResponseWriter, r *http.Request) {
	if !h.testTools {
		h.pages.NotFound(w, r)
		return
	}
	back := returnTo(r, "/calendar")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.logger, "create test work orders")
	defer cancel()

	msg, err := h.gw.CreateBulkTestWorkOrders(ctx, scheduling.TestWorkOrderBatch)
	h.audit.TestData(ctx, r, schedulelog.ActionCreateTestWorkOrders, msg, err)
	if err != nil {
		h.flash(w, r, session.FlashError, "Failed to create test work orders: "+htmlsanitize.StripTags(frappe.Message(err)))
	} else {
		if msg != "" {
			h.flash(w, r, session.FlashInfo, htmlsanitize.StripTags(msg))
		}
		h.flash(w, r, session.FlashSuccess, msgTestWorkOrders)
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// CreateTestJobCards generates job cards for the demo work orders.
func (h *Handler) CreateTestJobCards(w http.ResponseWriter, r *http.Request) {
	if !h.testTools {
		h.pages.NotFound(w, r)
		return
	}
	back := returnTo(r, "/calendar")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.logger, "create test job cards")
	defer cancel()

	msg, err := h.gw.CreateTestJobCards(ctx)
	h.audit.TestData(ctx, r, schedulelog.ActionCreateTestJobCards, msg, err)
	switch {
	case err != nil:
		h.flash(w, r, session.FlashError, "Failed to create test job cards: "+htmlsanitize.StripTags(frappe.Message(err)))
	case msg != "":
		h.flash(w, r, session.FlashSuccess, htmlsanitize.StripTags(msg))
	default:
		h.flash(w, r, session.FlashSuccess, msgTestJobCards)
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}
