// internal/app/system/frappe/records.go
package frappe

import (
	"context"

	"github.com/dalemusser/stratasched/internal/domain/models"
)

// Generic document methods exposed by the ERP core.
const (
	MethodGetDoc   = "frappe.client.get"
	MethodGetList  = "frappe.client.get_list"
	MethodGetCount = "frappe.client.get_count"
)

// ListQuery describes a frappe.client.get_list call. Limit 0 returns all rows.
type ListQuery struct {
	DocType string
	Fields  []string
	Filters map[string]any
	OrderBy string
	Limit   int
}

// GetDoc fetches one document into out.
func (c *Client) GetDoc(ctx context.Context, doctype, name string, out any) error {
	args := map[string]any{"doctype": doctype, "name": name}
	return c.Call(ctx, MethodGetDoc, args, out)
}

// GetList runs a list query into out.
func (c *Client) GetList(ctx context.Context, q ListQuery, out any) error {
	args := map[string]any{
		"doctype":           q.DocType,
		"limit_page_length": q.Limit,
	}
	if len(q.Fields) > 0 {
		args["fields"] = q.Fields
	}
	if len(q.Filters) > 0 {
		args["filters"] = q.Filters
	}
	if q.OrderBy != "" {
		args["order_by"] = q.OrderBy
	}
	return c.Call(ctx, MethodGetList, args, out)
}

// GetCount counts documents matching filters.
func (c *Client) GetCount(ctx context.Context, doctype string, filters map[string]any) (int, error) {
	args := map[string]any{"doctype": doctype}
	if len(filters) > 0 {
		args["filters"] = filters
	}
	var n float64
	if err := c.Call(ctx, MethodGetCount, args, &n); err != nil {
		return 0, err
	}
	return int(n), nil
}

// GetWorkOrder loads a work order.
func (c *Client) GetWorkOrder(ctx context.Context, name string) (models.WorkOrder, error) {
	var doc workOrderDoc
	if err := c.GetDoc(ctx, "Work Order", name, &doc); err != nil {
		return models.WorkOrder{}, err
	}
	return doc.model(), nil
}

// GetJobCard loads a job card.
func (c *Client) GetJobCard(ctx context.Context, name string) (models.JobCard, error) {
	var doc jobCardDoc
	if err := c.GetDoc(ctx, "Job Card", name, &doc); err != nil {
		return models.JobCard{}, err
	}
	return doc.model(), nil
}

var jobCardListFields = []string{
	"name", "operation", "workstation", "status", "work_order", "docstatus",
	"expected_start_date", "expected_end_date",
	"actual_start_date", "actual_end_date",
	"total_completed_qty", "for_quantity", "sequence_id", "operation_id",
}

// JobCardsForWorkOrder lists a work order's job cards in sequence order.
func (c *Client) JobCardsForWorkOrder(ctx context.Context, workOrder string) ([]models.JobCard, error) {
	return c.listJobCards(ctx, ListQuery{
		DocType: "Job Card",
		Fields:  jobCardListFields,
		Filters: map[string]any{"work_order": workOrder},
		OrderBy: "sequence_id asc, operation_id asc",
	})
}

// OtherJobCardsOnWorkstation lists the non-cancelled job cards on a
// workstation, excluding one by name.
func (c *Client) OtherJobCardsOnWorkstation(ctx context.Context, workstation, exclude string) ([]models.JobCard, error) {
	return c.listJobCards(ctx, ListQuery{
		DocType: "Job Card",
		Fields:  jobCardListFields,
		Filters: map[string]any{
			"workstation": workstation,
			"name":        []any{"!=", exclude},
			"docstatus":   []any{"<", 2},
		},
		OrderBy: "expected_start_date asc",
	})
}

// CountJobCards counts a work order's job cards.
func (c *Client) CountJobCards(ctx context.Context, workOrder string) (int, error) {
	return c.GetCount(ctx, "Job Card", map[string]any{"work_order": workOrder})
}

func (c *Client) listJobCards(ctx context.Context, q ListQuery) ([]models.JobCard, error) {
	var docs []jobCardDoc
	if err := c.GetList(ctx, q, &docs); err != nil {
		return nil, err
	}
	out := make([]models.JobCard, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}
