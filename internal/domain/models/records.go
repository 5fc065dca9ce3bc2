// internal/domain/models/records.go
package models

import "time"

// WorkOrder is the subset of an ERP work order used by the form pages.
type WorkOrder struct {
	Name                 string
	ProductionItem       string
	Qty                  float64
	Status               string
	DocStatus            int
	PlannedStartDate     *time.Time
	PlannedEndDate       *time.Time
	ExpectedDeliveryDate *time.Time
}

// IsScheduled reports whether both planned dates are set.
func (w WorkOrder) IsScheduled() bool {
	return w.PlannedStartDate != nil && w.PlannedEndDate != nil
}

// JobCard is the subset of an ERP job card used by the form pages.
type JobCard struct {
	Name              string
	Operation         string
	Workstation       string
	WorkOrder         string
	Status            string
	DocStatus         int
	SequenceID        int
	OperationID       string
	ExpectedStartDate *time.Time
	ExpectedEndDate   *time.Time
	ActualStartDate   *time.Time
	ActualEndDate     *time.Time
	TotalCompletedQty float64
	ForQuantity       float64
}

// IsScheduled reports whether both expected dates are set.
func (j JobCard) IsScheduled() bool {
	return j.ExpectedStartDate != nil && j.ExpectedEndDate != nil
}
