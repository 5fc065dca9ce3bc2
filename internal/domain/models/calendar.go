// internal/domain/models/calendar.go
package models

import (
	"math"
	"time"
)

// EventKind discriminates the two kinds of calendar event.
type EventKind string

const (
	EventKindWorkOrder EventKind = "work_order"
	EventKindOperation EventKind = "operation"
)

// Valid reports whether k is one of the known kinds.
func (k EventKind) Valid() bool {
	return k == EventKindWorkOrder || k == EventKindOperation
}

// Label is the human name used in notifications ("Work Order", "Operation").
func (k EventKind) Label() string {
	if k == EventKindOperation {
		return "Operation"
	}
	return "Work Order"
}

// DocType is the Frappe doctype behind events of this kind.
func (k EventKind) DocType() string {
	if k == EventKindOperation {
		return "Job Card"
	}
	return "Work Order"
}

// CalendarEvent is one item rendered on the calendar.
//
// Exactly one of WorkOrder and Operation is set, matching Kind. Events are
// display snapshots: a refresh replaces the whole set rather than patching
// individual events.
type CalendarEvent struct {
	ID          string    `json:"id"`
	Kind        EventKind `json:"kind"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Title       string    `json:"title"`
	Color       string    `json:"color,omitempty"`
	BorderColor string    `json:"borderColor,omitempty"`
	ClassName   string    `json:"className,omitempty"`
	ResourceID  string    `json:"resourceId,omitempty"`
	Editable    bool      `json:"editable"`

	WorkOrder *WorkOrderProps `json:"workOrder,omitempty"`
	Operation *OperationProps `json:"operation,omitempty"`
}

// WorkstationID returns the workstation an operation runs on, or "" for work orders.
func (e CalendarEvent) WorkstationID() string {
	if e.Operation == nil {
		return ""
	}
	return e.Operation.Workstation
}

// WorkOrderProps holds the work-order specific display data.
type WorkOrderProps struct {
	Qty      float64    `json:"qty"`
	Delivery *time.Time `json:"delivery,omitempty"`
}

// OperationProps holds the job-card specific display data.
type OperationProps struct {
	JobCardName     string  `json:"jobCardName"`
	Operation       string  `json:"operation"`
	Sequence        string  `json:"sequence,omitempty"`
	Workstation     string  `json:"workstation"`
	WorkstationType string  `json:"workstationType"`
	WorkOrder       string  `json:"workOrder"`
	ProductionItem  string  `json:"productionItem"`
	Status          string  `json:"status"`
	CompletedQty    float64 `json:"completedQty"`
	ForQuantity     float64 `json:"forQuantity"`
	WorkOrderQty    float64 `json:"workOrderQty"`
	DisplayMode     string  `json:"displayMode,omitempty"`
}

// Progress returns completed/target as a whole percentage in [0, 100].
// A zero or negative target yields 0.
func (p OperationProps) Progress() int {
	return Percent(p.CompletedQty, p.ForQuantity)
}

// Percent rounds part/whole*100 to the nearest integer, clamped to [0, 100].
func Percent(part, whole float64) int {
	if whole <= 0 {
		return 0
	}
	v := math.Round(part / whole * 100)
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return int(v)
}
