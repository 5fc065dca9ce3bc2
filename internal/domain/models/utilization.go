// internal/domain/models/utilization.go
package models

import "math"

// WorkdayMinutes is the capacity one workstation offers per report period.
const WorkdayMinutes = 8 * 60

// UtilizationRow is one workstation's load over a period.
type UtilizationRow struct {
	Workstation     string  `json:"workstation"`
	WorkstationName string  `json:"workstation_name"`
	WorkstationType string  `json:"workstation_type"`
	TotalJobs       int     `json:"total_jobs"`
	CompletedJobs   int     `json:"completed_jobs"`
	TotalMinutes    float64 `json:"total_minutes"`
	AvgDuration     float64 `json:"avg_duration"`
}

// TotalHours converts the booked minutes to hours.
func (u UtilizationRow) TotalHours() float64 {
	return u.TotalMinutes / 60
}

// CompletionRate is the share of completed jobs in percent, 0 without jobs.
func (u UtilizationRow) CompletionRate() float64 {
	if u.TotalJobs <= 0 {
		return 0
	}
	return float64(u.CompletedJobs) / float64(u.TotalJobs) * 100
}

// Utilization is the booked share of one workday in percent, capped at 100.
func (u UtilizationRow) Utilization() float64 {
	if u.TotalMinutes <= 0 {
		return 0
	}
	return math.Min(100, u.TotalMinutes/WorkdayMinutes*100)
}

// Level classifies utilization for display: "danger" above 80%,
// "warning" above 60%, "success" otherwise.
func (u UtilizationRow) Level() string {
	switch v := u.Utilization(); {
	case v > 80:
		return "danger"
	case v > 60:
		return "warning"
	default:
		return "success"
	}
}

// DisplayName prefers the workstation's human name.
func (u UtilizationRow) DisplayName() string {
	if u.WorkstationName != "" {
		return u.WorkstationName
	}
	return u.Workstation
}
