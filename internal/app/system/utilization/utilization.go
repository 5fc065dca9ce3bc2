// internal/app/system/utilization/utilization.go
package utilization

import (
	"fmt"
	"time"

	"github.com/dalemusser/stratasched/internal/domain/models"
)

// DateLayout is the request format for period bounds.
const DateLayout = "2006-01-02"

// DisplayLayout is how period bounds are shown to users.
const DisplayLayout = "02-01-2006"

// Row is one formatted table line.
type Row struct {
	Workstation    string
	Type           string
	TotalJobs      int
	CompletedJobs  int
	CompletionRate string
	TotalHours     string
	AvgDuration    string
	Utilization    string
	Percent        float64
	Level          string
}

// Report is the utilization table for a period.
type Report struct {
	Start  time.Time
	End    time.Time
	Period string
	Rows   []Row
	Source []models.UtilizationRow
}

// Build formats utilization rows for display. Rows keep server order.
func Build(rows []models.UtilizationRow, start, end time.Time) Report {
	r := Report{
		Start:  start,
		End:    end,
		Period: fmt.Sprintf("Period: %s to %s", start.Format(DisplayLayout), end.Format(DisplayLayout)),
		Rows:   make([]Row, 0, len(rows)),
		Source: rows,
	}
	for _, u := range rows {
		typ := u.WorkstationType
		if typ == "" {
			typ = "N/A"
		}
		r.Rows = append(r.Rows, Row{
			Workstation:    u.DisplayName(),
			Type:           typ,
			TotalJobs:      u.TotalJobs,
			CompletedJobs:  u.CompletedJobs,
			CompletionRate: fmt.Sprintf("%.1f", u.CompletionRate()),
			TotalHours:     fmt.Sprintf("%.1f", u.TotalHours()),
			AvgDuration:    fmt.Sprintf("%.0f", u.AvgDuration),
			Utilization:    fmt.Sprintf("%.1f", u.Utilization()),
			Percent:        u.Utilization(),
			Level:          u.Level(),
		})
	}
	return r
}

// WeekOf returns the Sunday-to-Sunday week containing t, matching the
// calendar's default week view.
func WeekOf(t time.Time) (start, end time.Time) {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	start = day.AddDate(0, 0, -int(day.Weekday()))
	return start, start.AddDate(0, 0, 7)
}

// ParsePeriod reads start/end request values, defaulting to the week of now.
// An end before the start is an error.
func ParsePeriod(startStr, endStr string, now time.Time) (time.Time, time.Time, error) {
	start, end := WeekOf(now)
	if startStr != "" {
		t, err := time.Parse(DateLayout, startStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("start: %w", err)
		}
		start = t
		if endStr == "" {
			end = start.AddDate(0, 0, 7)
		}
	}
	if endStr != "" {
		t, err := time.Parse(DateLayout, endStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("end: %w", err)
		}
		end = t
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end %s is before start %s", end.Format(DateLayout), start.Format(DateLayout))
	}
	return start, end, nil
}
