// internal/app/system/frappe/wire.go
package frappe

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/dalemusser/stratasched/internal/domain/models"
)

// WireLayout is the datetime format the ERP stores and accepts.
const WireLayout = "2006-01-02 15:04:05"

var parseLayouts = []string{
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDatetime reads an ERP or browser timestamp as a naive wall-clock time
// in UTC. Any zone suffix is dropped rather than converted, matching how the
// ERP stores times without a zone.
func ParseDatetime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return wallClock(t), true
	}
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// FormatDatetime renders t in the ERP's wire layout.
func FormatDatetime(t time.Time) string {
	return wallClock(t).Format(WireLayout)
}

// Datetime is a nullable ERP timestamp. Values that are null, empty or
// unparseable decode to the zero Datetime without an error.
type Datetime struct {
	Time  time.Time
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Datetime) UnmarshalJSON(b []byte) error {
	*d = Datetime{}
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return nil
	}
	if t, ok := ParseDatetime(s); ok {
		d.Time, d.Valid = t, true
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Datetime) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(FormatDatetime(d.Time))
}

// Ptr returns the time or nil when unset.
func (d Datetime) Ptr() *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time
	return &t
}

// Event is a pre-shaped calendar record as returned by the scheduler API.
type Event struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Start           Datetime   `json:"start"`
	End             Datetime   `json:"end"`
	ResourceID      string     `json:"resourceId"`
	BackgroundColor string     `json:"backgroundColor"`
	BorderColor     string     `json:"borderColor"`
	ClassName       string     `json:"className"`
	Editable        *bool      `json:"editable"`
	ExtendedProps   EventProps `json:"extendedProps"`
}

// EventProps is the union of the per-kind fields the API may send. Type
// selects which of them are meaningful.
type EventProps struct {
	Type string `json:"type"`

	// work order
	Qty      float64  `json:"qty"`
	Delivery Datetime `json:"delivery"`

	// operation
	JobCardName     string   `json:"job_card_name"`
	Operation       string   `json:"operation"`
	Sequence        string   `json:"sequence"`
	Workstation     string   `json:"workstation"`
	WorkstationType string   `json:"workstation_type"`
	WorkOrder       string   `json:"work_order"`
	ProductionItem  string   `json:"production_item"`
	Status          string   `json:"status"`
	CompletedQty    float64  `json:"completed_qty"`
	ForQuantity     float64  `json:"for_quantity"`
	WorkOrderQty    float64  `json:"work_order_qty"`
	WorkOrderStart  Datetime `json:"wo_start"`
	WorkOrderEnd    Datetime `json:"wo_end"`
	IsEditable      *bool    `json:"is_editable"`
	DisplayMode     string   `json:"display_mode"`
}

// ResourceGroup is a workstation type with its workstations.
type ResourceGroup struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Children []Resource `json:"children"`
}

// Resource is a single workstation.
type Resource struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	ExtendedProps ResourceProps `json:"extendedProps"`
}

// ResourceProps carries workstation attributes.
type ResourceProps struct {
	Type            string `json:"type"`
	WorkstationType string `json:"workstation_type"`
	Status          string `json:"status"`
}

type utilizationWire struct {
	Workstation     string  `json:"workstation"`
	WorkstationName string  `json:"workstation_name"`
	WorkstationType string  `json:"workstation_type"`
	TotalJobs       float64 `json:"total_jobs"`
	CompletedJobs   float64 `json:"completed_jobs"`
	TotalMinutes    float64 `json:"total_minutes"`
	AvgDuration     float64 `json:"avg_duration"`
}

func (u utilizationWire) model() models.UtilizationRow {
	return models.UtilizationRow{
		Workstation:     u.Workstation,
		WorkstationName: u.WorkstationName,
		WorkstationType: u.WorkstationType,
		TotalJobs:       int(u.TotalJobs),
		CompletedJobs:   int(u.CompletedJobs),
		TotalMinutes:    u.TotalMinutes,
		AvgDuration:     u.AvgDuration,
	}
}

type workOrderDoc struct {
	Name                 string   `json:"name"`
	ProductionItem       string   `json:"production_item"`
	Qty                  float64  `json:"qty"`
	Status               string   `json:"status"`
	DocStatus            float64  `json:"docstatus"`
	PlannedStartDate     Datetime `json:"planned_start_date"`
	PlannedEndDate       Datetime `json:"planned_end_date"`
	ExpectedDeliveryDate Datetime `json:"expected_delivery_date"`
}

func (d workOrderDoc) model() models.WorkOrder {
	return models.WorkOrder{
		Name:                 d.Name,
		ProductionItem:       d.ProductionItem,
		Qty:                  d.Qty,
		Status:               d.Status,
		DocStatus:            int(d.DocStatus),
		PlannedStartDate:     d.PlannedStartDate.Ptr(),
		PlannedEndDate:       d.PlannedEndDate.Ptr(),
		ExpectedDeliveryDate: d.ExpectedDeliveryDate.Ptr(),
	}
}

type jobCardDoc struct {
	Name              string          `json:"name"`
	Operation         string          `json:"operation"`
	Workstation       string          `json:"workstation"`
	WorkOrder         string          `json:"work_order"`
	Status            string          `json:"status"`
	DocStatus         float64         `json:"docstatus"`
	SequenceID        float64         `json:"sequence_id"`
	OperationID       json.RawMessage `json:"operation_id"`
	ExpectedStartDate Datetime        `json:"expected_start_date"`
	ExpectedEndDate   Datetime        `json:"expected_end_date"`
	ActualStartDate   Datetime        `json:"actual_start_date"`
	ActualEndDate     Datetime        `json:"actual_end_date"`
	TotalCompletedQty float64         `json:"total_completed_qty"`
	ForQuantity       float64         `json:"for_quantity"`
}

func (d jobCardDoc) model() models.JobCard {
	return models.JobCard{
		Name:              d.Name,
		Operation:         d.Operation,
		Workstation:       d.Workstation,
		WorkOrder:         d.WorkOrder,
		Status:            d.Status,
		DocStatus:         int(d.DocStatus),
		SequenceID:        int(d.SequenceID),
		OperationID:       rawString(d.OperationID),
		ExpectedStartDate: d.ExpectedStartDate.Ptr(),
		ExpectedEndDate:   d.ExpectedEndDate.Ptr(),
		ActualStartDate:   d.ActualStartDate.Ptr(),
		ActualEndDate:     d.ActualEndDate.Ptr(),
		TotalCompletedQty: d.TotalCompletedQty,
		ForQuantity:       d.ForQuantity,
	}
}

// rawString reads a JSON value that may be a string or a number.
func rawString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.Trim(string(raw), `"`)
}
