// internal/app/system/scheduling/timeline.go
package scheduling

import (
	"fmt"
	"math"
	"time"

	"github.com/dalemusser/stratasched/internal/domain/models"
)

// DateTimeLayout is how schedule times are shown on the form pages.
const DateTimeLayout = "02-01-2006 15:04"

// DateLayout is how date-only fields are shown.
const DateLayout = "02-01-2006"

// progressLabelMin is the progress above which the label fits inside the bar.
const progressLabelMin = 20

// TimelineRow is one job card in the operations timeline.
type TimelineRow struct {
	Name          string
	Sequence      string
	Operation     string
	Workstation   string
	Status        string
	StatusPill    string
	Start         string
	End           string
	Progress      float64
	ProgressLabel string
	ProgressColor string
	LabelInBar    bool
	BarWidth      float64
	RowBackground string
}

// TimelineSummary aggregates the rows.
type TimelineSummary struct {
	Count           int
	AverageProgress string
	Completed       int
	InProgress      int
}

// TimelineView is the job-card timeline for a work order.
type TimelineView struct {
	Rows    []TimelineRow
	Summary TimelineSummary
}

// String renders the summary line.
func (s TimelineSummary) String() string {
	return fmt.Sprintf("%d operations | Average Progress: %s%% | Completed: %d | In Progress: %d",
		s.Count, s.AverageProgress, s.Completed, s.InProgress)
}

// Timeline builds the operations timeline from job cards in sequence order.
func Timeline(jobCards []models.JobCard) TimelineView {
	view := TimelineView{Rows: make([]TimelineRow, 0, len(jobCards))}
	var total float64

	for i, jc := range jobCards {
		progress := Progress(jc)
		total += progress

		seq := jc.SequenceID
		if seq == 0 {
			seq = i + 1
		}
		label := fmt.Sprintf("%.1f", progress)
		view.Rows = append(view.Rows, TimelineRow{
			Name:          jc.Name,
			Sequence:      fmt.Sprintf("Op%d", seq),
			Operation:     jc.Operation,
			Workstation:   orElse(jc.Workstation, "Not Assigned"),
			Status:        jc.Status,
			StatusPill:    models.StatusPill(jc.Status),
			Start:         FormatTime(jc.ExpectedStartDate),
			End:           FormatTime(jc.ExpectedEndDate),
			Progress:      progress,
			ProgressLabel: label + "%",
			ProgressColor: ProgressColor(progress),
			LabelInBar:    progress > progressLabelMin,
			BarWidth:      math.Min(100, progress),
			RowBackground: RowBackground(jc.Status),
		})

		switch jc.Status {
		case models.StatusCompleted:
			view.Summary.Completed++
		case models.StatusWorkInProgress:
			view.Summary.InProgress++
		}
	}

	view.Summary.Count = len(jobCards)
	avg := 0.0
	if len(jobCards) > 0 {
		avg = total / float64(len(jobCards))
	}
	view.Summary.AverageProgress = fmt.Sprintf("%.1f", avg)
	return view
}

// Progress is completed over target quantity as a percentage, 0 without a target.
func Progress(jc models.JobCard) float64 {
	if jc.ForQuantity <= 0 {
		return 0
	}
	return math.Max(0, jc.TotalCompletedQty/jc.ForQuantity*100)
}

// ProgressColor maps a progress percentage to its bar color.
func ProgressColor(p float64) string {
	switch {
	case p >= 100:
		return "#28a745"
	case p >= 75:
		return "#20c997"
	case p >= 50:
		return "#ffc107"
	case p >= 25:
		return "#fd7e14"
	default:
		return "#dc3545"
	}
}

// RowBackground tints a timeline row by status.
func RowBackground(status string) string {
	switch status {
	case models.StatusCompleted:
		return "#f0f9f0"
	case models.StatusWorkInProgress:
		return "#fff8e1"
	case models.StatusOnHold:
		return "#ffebee"
	default:
		return "#fff"
	}
}

// FormatTime renders a schedule time, or "Not Scheduled" when unset.
func FormatTime(t *time.Time) string {
	if t == nil {
		return "Not Scheduled"
	}
	return t.Format(DateTimeLayout)
}

// FormatDate renders a date-only field such as expected delivery.
func FormatDate(t *time.Time) string {
	if t == nil {
		return "Not Set"
	}
	return t.Format(DateLayout)
}

// FormatRange renders "start to end", or "Not Scheduled" unless both are set.
func FormatRange(start, end *time.Time) string {
	if start == nil || end == nil {
		return "Not Scheduled"
	}
	return FormatTime(start) + " to " + FormatTime(end)
}

func orElse(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
