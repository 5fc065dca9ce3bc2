// internal/domain/models/workstation.go
package models

// UncategorizedType is the group title for workstations without a type.
const UncategorizedType = "Uncategorized"

// Workstation is a machine or station operations run on.
type Workstation struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Type   string `json:"type,omitempty"`
	Status string `json:"status,omitempty"`
}

// WorkstationGroup is the set of workstations sharing a type.
type WorkstationGroup struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Children []Workstation `json:"children"`
}

// GroupID builds the group identifier for a workstation type.
func GroupID(workstationType string) string {
	if workstationType == "" {
		workstationType = UncategorizedType
	}
	return "type_" + workstationType
}
