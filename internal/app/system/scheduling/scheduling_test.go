package scheduling

import (
	"testing"
	"time"

	"github.com/dalemusser/stratasched/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clock(h, m int) time.Time {
	return time.Date(2024, 3, 4, h, m, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func TestOverlaps(t *testing.T) {
	base := Interval{clock(10, 0), clock(11, 0)}
	tests := []struct {
		name  string
		other Interval
		want  bool
	}{
		{"partial", Interval{clock(10, 30), clock(11, 30)}, true},
		{"touching after", Interval{clock(11, 0), clock(12, 0)}, false},
		{"touching before", Interval{clock(9, 0), clock(10, 0)}, false},
		{"contained", Interval{clock(10, 15), clock(10, 45)}, true},
		{"containing", Interval{clock(9, 0), clock(12, 0)}, true},
		{"disjoint", Interval{clock(13, 0), clock(14, 0)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(base, tt.other))
			assert.Equal(t, tt.want, Overlaps(tt.other, base), "symmetric")
		})
	}
}

func jobCard(name string, start, end *time.Time) models.JobCard {
	return models.JobCard{Name: name, Workstation: "Lathe-1", ExpectedStartDate: start, ExpectedEndDate: end}
}

func TestFindConflicts(t *testing.T) {
	self := jobCard("JC-1", ptr(clock(10, 0)), ptr(clock(11, 0)))
	others := []models.JobCard{
		jobCard("JC-1", ptr(clock(10, 0)), ptr(clock(11, 0))),
		jobCard("JC-2", ptr(clock(10, 30)), ptr(clock(11, 30))),
		jobCard("JC-3", ptr(clock(11, 0)), ptr(clock(12, 0))),
		jobCard("JC-4", ptr(clock(9, 0)), nil),
		jobCard("JC-5", ptr(clock(8, 0)), ptr(clock(10, 1))),
	}

	got := FindConflicts(self, others)
	require.Len(t, got, 2)
	assert.Equal(t, "JC-2", got[0].Name)
	assert.Equal(t, "JC-5", got[1].Name)

	assert.Nil(t, FindConflicts(jobCard("JC-9", nil, nil), others))
}

func TestCheckAvailability(t *testing.T) {
	self := jobCard("JC-1", ptr(clock(10, 0)), ptr(clock(11, 0)))

	a := CheckAvailability(self, nil)
	assert.True(t, a.Available())
	assert.Equal(t, "Workstation Lathe-1 is available for the scheduled time.", a.Summary())

	a = CheckAvailability(self, []models.JobCard{jobCard("JC-2", ptr(clock(10, 30)), ptr(clock(11, 30)))})
	assert.False(t, a.Available())
	assert.Contains(t, a.Summary(), "overlaps with 1 other job card(s)")
}

func TestWorkOrderActions(t *testing.T) {
	unscheduled := models.WorkOrder{Name: "WO-1"}
	acts := WorkOrderActions(unscheduled, false)
	assert.True(t, HasAction(acts, ActionAutoSchedule))
	assert.True(t, HasAction(acts, ActionOpenCalendar))
	assert.False(t, HasAction(acts, ActionAutoScheduleJobCards))
	assert.False(t, HasAction(acts, ActionCreateTestWorkOrders))

	scheduled := models.WorkOrder{Name: "WO-1", PlannedStartDate: ptr(clock(8, 0)), PlannedEndDate: ptr(clock(16, 0))}
	acts = WorkOrderActions(scheduled, true)
	assert.True(t, HasAction(acts, ActionAutoScheduleJobCards))
	assert.True(t, HasAction(acts, ActionCreateTestWorkOrders))
	assert.True(t, HasAction(acts, ActionCreateTestJobCards))
}

func TestJobCardActions(t *testing.T) {
	bare := models.JobCard{Name: "JC-1"}
	acts := JobCardActions(bare)
	assert.Equal(t, []Action{{ID: ActionOpenCalendar, Label: "Open Calendar", Group: GroupView}}, acts)

	placed := models.JobCard{Name: "JC-1", Workstation: "Lathe-1"}
	acts = JobCardActions(placed)
	assert.True(t, HasAction(acts, ActionQuickReschedule))
	assert.False(t, HasAction(acts, ActionCheckAvailability))

	full := jobCard("JC-1", ptr(clock(8, 0)), ptr(clock(9, 0)))
	assert.True(t, HasAction(JobCardActions(full), ActionCheckAvailability))
}

func TestWorkOrderIndicators(t *testing.T) {
	assert.Equal(t,
		[]Indicator{{"Not Scheduled", "orange"}},
		WorkOrderIndicators(models.WorkOrder{}, 0))

	risky := models.WorkOrder{
		PlannedStartDate:     ptr(clock(8, 0)),
		PlannedEndDate:       ptr(clock(18, 0)),
		ExpectedDeliveryDate: ptr(clock(17, 0)),
	}
	assert.Equal(t,
		[]Indicator{{"Scheduled", "green"}, {"Delivery Risk", "red"}, {"3 Job Cards", "blue"}},
		WorkOrderIndicators(risky, 3))

	risky.ExpectedDeliveryDate = ptr(clock(18, 0))
	assert.Equal(t, []Indicator{{"Scheduled", "green"}}, WorkOrderIndicators(risky, 0))
}

func TestJobCardIndicators(t *testing.T) {
	jc := models.JobCard{WorkOrder: "WO-7"}
	assert.Equal(t,
		[]Indicator{{"Not Scheduled", "orange"}, {"WO: WO-7", "blue"}},
		JobCardIndicators(jc))
}

func TestTimeline(t *testing.T) {
	cards := []models.JobCard{
		{Name: "JC-1", Operation: "Cut", Workstation: "Saw", Status: models.StatusCompleted,
			SequenceID: 1, TotalCompletedQty: 10, ForQuantity: 10, ExpectedStartDate: ptr(clock(8, 0)), ExpectedEndDate: ptr(clock(9, 0))},
		{Name: "JC-2", Operation: "Drill", Status: models.StatusWorkInProgress,
			TotalCompletedQty: 1, ForQuantity: 8},
		{Name: "JC-3", Operation: "Paint", Status: models.StatusOpen},
	}

	v := Timeline(cards)
	require.Len(t, v.Rows, 3)

	r0 := v.Rows[0]
	assert.Equal(t, "Op1", r0.Sequence)
	assert.Equal(t, "100.0%", r0.ProgressLabel)
	assert.Equal(t, "#28a745", r0.ProgressColor)
	assert.Equal(t, "#f0f9f0", r0.RowBackground)
	assert.Equal(t, "04-03-2024 08:00", r0.Start)
	assert.True(t, r0.LabelInBar)

	r1 := v.Rows[1]
	assert.Equal(t, "Op2", r1.Sequence, "falls back to position")
	assert.Equal(t, "Not Assigned", r1.Workstation)
	assert.Equal(t, "12.5%", r1.ProgressLabel)
	assert.Equal(t, "#dc3545", r1.ProgressColor)
	assert.Equal(t, "#fff8e1", r1.RowBackground)
	assert.Equal(t, "Not Scheduled", r1.Start)
	assert.False(t, r1.LabelInBar)

	assert.Equal(t, "0.0%", v.Rows[2].ProgressLabel)
	assert.Equal(t, "#fff", v.Rows[2].RowBackground)

	assert.Equal(t, 3, v.Summary.Count)
	assert.Equal(t, "37.5", v.Summary.AverageProgress)
	assert.Equal(t, 1, v.Summary.Completed)
	assert.Equal(t, 1, v.Summary.InProgress)
	assert.Equal(t, "3 operations | Average Progress: 37.5% | Completed: 1 | In Progress: 1", v.Summary.String())
}

func TestProgressColorBands(t *testing.T) {
	tests := map[float64]string{
		120: "#28a745", 100: "#28a745", 99.9: "#20c997", 75: "#20c997",
		50: "#ffc107", 25: "#fd7e14", 24.9: "#dc3545", 0: "#dc3545",
	}
	for p, want := range tests {
		assert.Equal(t, want, ProgressColor(p), "progress %.1f", p)
	}
}

func TestTimeline_Empty(t *testing.T) {
	v := Timeline(nil)
	assert.Empty(t, v.Rows)
	assert.Equal(t, "0.0", v.Summary.AverageProgress)
}

func TestFormatting(t *testing.T) {
	start, end := ptr(clock(8, 5)), ptr(clock(16, 30))
	assert.Equal(t, "04-03-2024 08:05", FormatTime(start))
	assert.Equal(t, "Not Scheduled", FormatTime(nil))
	assert.Equal(t, "04-03-2024", FormatDate(start))
	assert.Equal(t, "Not Set", FormatDate(nil))
	assert.Equal(t, "04-03-2024 08:05 to 04-03-2024 16:30", FormatRange(start, end))
	assert.Equal(t, "Not Scheduled", FormatRange(start, nil))
}
