// internal/app/system/scheduling/actions.go
package scheduling

import "github.com/dalemusser/stratasched/internal/domain/models"

// Action groups as shown on the form pages.
const (
	GroupScheduling = "Scheduling"
	GroupView       = "View"
	GroupTesting    = "Testing"
)

// Action IDs.
const (
	ActionAutoSchedule         = "auto_schedule"
	ActionAutoScheduleJobCards = "auto_schedule_job_cards"
	ActionOpenCalendar         = "open_calendar"
	ActionCreateTestWorkOrders = "create_test_work_orders"
	ActionCreateTestJobCards   = "create_test_job_cards"
	ActionCheckAvailability    = "check_availability"
	ActionQuickReschedule      = "quick_reschedule"
)

// TestWorkOrderBatch is how many demo work orders the test tool creates.
const TestWorkOrderBatch = 50

const testWorkOrdersConfirmPrompt = "This will create 50 test work orders for demonstration. Continue?"

// Action is a button offered on a form page.
type Action struct {
	ID      string
	Label   string
	Group   string
	Confirm string
}

// WorkOrderActions lists the buttons for a work order page. Job card
// scheduling needs planned dates; test tools are gated by configuration.
func WorkOrderActions(wo models.WorkOrder, testTools bool) []Action {
	actions := []Action{
		{ID: ActionAutoSchedule, Label: "Auto Schedule Work Order", Group: GroupScheduling},
	}
	if wo.IsScheduled() {
		actions = append(actions, Action{ID: ActionAutoScheduleJobCards, Label: "Auto Schedule Job Cards", Group: GroupScheduling})
	}
	actions = append(actions, Action{ID: ActionOpenCalendar, Label: "Open Calendar", Group: GroupView})
	if testTools {
		actions = append(actions,
			Action{ID: ActionCreateTestWorkOrders, Label: "Create Test Work Orders (50)", Group: GroupTesting, Confirm: testWorkOrdersConfirmPrompt},
			Action{ID: ActionCreateTestJobCards, Label: "Create Test Job Cards", Group: GroupTesting},
		)
	}
	return actions
}

// JobCardActions lists the buttons for a job card page.
func JobCardActions(jc models.JobCard) []Action {
	var actions []Action
	if jc.Workstation != "" && jc.IsScheduled() {
		actions = append(actions, Action{ID: ActionCheckAvailability, Label: "Check Workstation Availability", Group: GroupScheduling})
	}
	actions = append(actions, Action{ID: ActionOpenCalendar, Label: "Open Calendar", Group: GroupView})
	if jc.Workstation != "" {
		actions = append(actions, Action{ID: ActionQuickReschedule, Label: "Quick Reschedule", Group: GroupScheduling})
	}
	return actions
}

// HasAction reports whether id is among actions.
func HasAction(actions []Action, id string) bool {
	for _, a := range actions {
		if a.ID == id {
			return true
		}
	}
	return false
}
