// internal/app/features/workorders/show.go
package workorders

import (
	"net/http"

	"github.com/dalemusser/stratasched/internal/app/system/frappe"
	"github.com/dalemusser/stratasched/internal/app/system/scheduling"
	"github.com/dalemusser/stratasched/internal/app/system/timeouts"
	"github.com/dalemusser/stratasched/internal/app/system/viewdata"
	"github.com/dalemusser/stratasched/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type showData struct {
	viewdata.BaseVM

	WorkOrder  models.WorkOrder
	StatusPill string
	Planned    string
	Delivery   string
	DeskURL    string

	Indicators []scheduling.Indicator
	Groups     []actionGroup
	ShowTip    bool

	Timeline      scheduling.TimelineView
	TimelineError string
}

type actionGroup struct {
	Name    string
	Actions []actionButton
}

type actionButton struct {
	scheduling.Action
	Path string // POST target; empty for links
	Href string
}

// Show renders a work order with its indicators, actions and job-card timeline.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.logger, "work order page")
	defer cancel()

	wo, err := h.gw.GetWorkOrder(ctx, name)
	if err != nil {
		if frappe.IsNotFound(err) {
			h.pages.NotFound(w, r)
			return
		}
		h.errLog.Log(r, "failed to load work order", err)
		h.pages.InternalError(w, r)
		return
	}

	// The count backs the indicator; the list backs the timeline. A failure
	// in either degrades its section only.
	var (
		count    int
		jobCards []models.JobCard
		countErr error
		listErr  error
	)
	var g errgroup.Group
	g.Go(func() error {
		count, countErr = h.gw.CountJobCards(ctx, name)
		return nil
	})
	g.Go(func() error {
		jobCards, listErr = h.gw.JobCardsForWorkOrder(ctx, name)
		return nil
	})
	_ = g.Wait()
	if countErr != nil {
		h.logger.Warn("job card count failed", zap.String("work_order", name), zap.Error(countErr))
		count = len(jobCards)
	}

	actions := scheduling.WorkOrderActions(wo, h.testTools)
	vm := showData{
		BaseVM:     viewdata.WithFlashes(w, r, viewdata.NewBaseVM(r, wo.Name, "/calendar")),
		WorkOrder:  wo,
		StatusPill: models.StatusPill(wo.Status),
		Planned:    scheduling.FormatRange(wo.PlannedStartDate, wo.PlannedEndDate),
		Delivery:   scheduling.FormatDate(wo.ExpectedDeliveryDate),
		Indicators: scheduling.WorkOrderIndicators(wo, count),
		Groups:     h.groupActions(wo.Name, actions),
		ShowTip:    !wo.IsScheduled(),
	}
	if vm.Desk != "" {
		vm.DeskURL = h.linker.Route(models.EventKindWorkOrder, wo.Name).URL
	}
	if listErr != nil {
		h.logger.Warn("job card list failed", zap.String("work_order", name), zap.Error(listErr))
		vm.TimelineError = "Could not load job cards: " + frappe.Message(listErr)
	} else {
		vm.Timeline = scheduling.Timeline(jobCards)
	}

	templates.Render(w, r, "workorder_show", vm)
}

func (h *Handler) groupActions(name string, actions []scheduling.Action) []actionGroup {
	var groups []actionGroup
	index := map[string]int{}
	for _, a := range actions {
		btn := actionButton{Action: a}
		switch a.ID {
		case scheduling.ActionAutoSchedule:
			btn.Path = Path(name) + "/auto-schedule"
		case scheduling.ActionAutoScheduleJobCards:
			btn.Path = Path(name) + "/auto-schedule-job-cards"
		case scheduling.ActionCreateTestWorkOrders:
			btn.Path = "/workorders/test/work-orders"
		case scheduling.ActionCreateTestJobCards:
			btn.Path = "/workorders/test/job-cards"
		case scheduling.ActionOpenCalendar:
			btn.Href = "/calendar"
		}
		i, ok := index[a.Group]
		if !ok {
			i = len(groups)
			index[a.Group] = i
			groups = append(groups, actionGroup{Name: a.Group})
		}
		groups[i].Actions = append(groups[i].Actions, btn)
	}
	return groups
}
