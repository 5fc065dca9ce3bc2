// internal/domain/models/status.go
package models

// Job card statuses as reported by the ERP.
const (
	StatusOpen                = "Open"
	StatusWorkInProgress      = "Work In Progress"
	StatusCompleted           = "Completed"
	StatusMaterialTransferred = "Material Transferred"
	StatusOnHold              = "On Hold"
	StatusCancelled           = "Cancelled"
)

// DefaultStatusColor is used for statuses without a dedicated color.
const DefaultStatusColor = "#34495e"

var statusColors = map[string]string{
	StatusOpen:                "#3498db",
	StatusWorkInProgress:      "#f39c12",
	StatusCompleted:           "#27ae60",
	StatusMaterialTransferred: "#9b59b6",
	StatusOnHold:              "#e74c3c",
	StatusCancelled:           "#95a5a6",
}

var statusPills = map[string]string{
	StatusOpen:                "blue",
	StatusWorkInProgress:      "orange",
	StatusCompleted:           "green",
	StatusMaterialTransferred: "purple",
	StatusOnHold:              "red",
	StatusCancelled:           "gray",
}

// StatusColor returns the hex color for a job card status.
func StatusColor(status string) string {
	if c, ok := statusColors[status]; ok {
		return c
	}
	return DefaultStatusColor
}

// StatusPill returns the indicator pill color name for a job card status.
func StatusPill(status string) string {
	if c, ok := statusPills[status]; ok {
		return c
	}
	return "gray"
}

// IsClosedStatus reports whether a job card in this status is history rather
// than plan: its actual times are shown and it cannot be rescheduled.
func IsClosedStatus(status string) bool {
	return status == StatusCompleted || status == StatusCancelled
}
