// internal/app/system/scheduling/indicators.go
package scheduling

import (
	"fmt"

	"github.com/dalemusser/stratasched/internal/domain/models"
)

// Indicator is a colored status pill.
type Indicator struct {
	Label string
	Color string
}

// WorkOrderIndicators summarizes a work order's scheduling state.
func WorkOrderIndicators(wo models.WorkOrder, jobCardCount int) []Indicator {
	var out []Indicator
	if wo.IsScheduled() {
		out = append(out, Indicator{Label: "Scheduled", Color: "green"})
		if wo.ExpectedDeliveryDate != nil && wo.PlannedEndDate.After(*wo.ExpectedDeliveryDate) {
			out = append(out, Indicator{Label: "Delivery Risk", Color: "red"})
		}
	} else {
		out = append(out, Indicator{Label: "Not Scheduled", Color: "orange"})
	}
	if jobCardCount > 0 {
		out = append(out, Indicator{Label: fmt.Sprintf("%d Job Cards", jobCardCount), Color: "blue"})
	}
	return out
}

// JobCardIndicators summarizes a job card's scheduling state.
func JobCardIndicators(jc models.JobCard) []Indicator {
	var out []Indicator
	if jc.IsScheduled() {
		out = append(out, Indicator{Label: "Scheduled", Color: "green"})
	} else {
		out = append(out, Indicator{Label: "Not Scheduled", Color: "orange"})
	}
	if jc.WorkOrder != "" {
		out = append(out, Indicator{Label: "WO: " + jc.WorkOrder, Color: "blue"})
	}
	return out
}
