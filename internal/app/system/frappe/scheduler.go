// internal/app/system/frappe/scheduler.go
package frappe

import (
	"context"
	"time"

	"github.com/dalemusser/stratasched/internal/domain/models"
)

// Scheduler API method names.
const (
	MethodScheduledWorkOrders      = "get_scheduled_work_orders"
	MethodWorkstationResources     = "get_workstations_resources"
	MethodJobCardsWithWorkstations = "get_job_cards_with_workstations"
	MethodWorkstationUtilization   = "get_workstation_utilization"
	MethodUpdateWorkOrderSchedule  = "update_work_order_schedule"
	MethodUpdateJobCardSchedule    = "update_job_card_schedule"
	MethodAutoScheduleWorkOrder    = "auto_schedule_new_work_order"
	MethodAutoScheduleJobCards     = "auto_schedule_job_cards_for_work_order"
	MethodCreateBulkTestWorkOrders = "create_bulk_test_work_orders"
	MethodCreateTestJobCards       = "create_test_job_cards"
)

const dateLayout = "2006-01-02"

// ScheduledWorkOrders lists work orders shaped as calendar events.
func (c *Client) ScheduledWorkOrders(ctx context.Context) ([]Event, error) {
	var events []Event
	if err := c.Call(ctx, c.Scheduler(MethodScheduledWorkOrders), nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// WorkstationResources lists workstations grouped by type.
func (c *Client) WorkstationResources(ctx context.Context) ([]ResourceGroup, error) {
	var groups []ResourceGroup
	if err := c.Call(ctx, c.Scheduler(MethodWorkstationResources), nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// JobCardsWithWorkstations lists scheduled job cards shaped as calendar events.
func (c *Client) JobCardsWithWorkstations(ctx context.Context) ([]Event, error) {
	var events []Event
	if err := c.Call(ctx, c.Scheduler(MethodJobCardsWithWorkstations), nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// WorkstationUtilization reports per-workstation load between two dates.
func (c *Client) WorkstationUtilization(ctx context.Context, start, end time.Time) ([]models.UtilizationRow, error) {
	startStr, endStr := start.Format(dateLayout), end.Format(dateLayout)
	cacheKey := "utilization:" + startStr + ":" + endStr

	var rows []models.UtilizationRow
	if c.readCache(ctx, cacheKey, &rows) {
		return rows, nil
	}

	var wire []utilizationWire
	args := map[string]any{"start_date": startStr, "end_date": endStr}
	if err := c.Call(ctx, c.Scheduler(MethodWorkstationUtilization), args, &wire); err != nil {
		return nil, err
	}
	rows = make([]models.UtilizationRow, 0, len(wire))
	for _, w := range wire {
		rows = append(rows, w.model())
	}
	c.writeCache(ctx, cacheKey, rows)
	return rows, nil
}

// UpdateWorkOrderSchedule moves a work order's planned window.
func (c *Client) UpdateWorkOrderSchedule(ctx context.Context, name string, start, end time.Time) error {
	args := map[string]any{
		"name":      name,
		"new_start": FormatDatetime(start),
		"new_end":   FormatDatetime(end),
	}
	return c.Call(ctx, c.Scheduler(MethodUpdateWorkOrderSchedule), args, nil)
}

// UpdateJobCardSchedule moves a job card's expected window and, when
// newWorkstation is non-empty, reassigns its workstation.
func (c *Client) UpdateJobCardSchedule(ctx context.Context, name string, start, end time.Time, newWorkstation string) error {
	args := map[string]any{
		"name":      name,
		"new_start": FormatDatetime(start),
		"new_end":   FormatDatetime(end),
	}
	if newWorkstation != "" {
		args["new_workstation"] = newWorkstation
	}
	return c.Call(ctx, c.Scheduler(MethodUpdateJobCardSchedule), args, nil)
}

// AutoScheduleWorkOrder asks the server to place a work order; it returns
// the work order name the server reports.
func (c *Client) AutoScheduleWorkOrder(ctx context.Context, workOrder string) (string, error) {
	var msg string
	args := map[string]any{"work_order_name": workOrder}
	if err := c.Call(ctx, c.Scheduler(MethodAutoScheduleWorkOrder), args, &msg); err != nil {
		return "", err
	}
	return msg, nil
}

// AutoScheduleJobCards schedules a work order's job cards and returns the
// server's summary message.
func (c *Client) AutoScheduleJobCards(ctx context.Context, workOrder string) (string, error) {
	var msg string
	args := map[string]any{"work_order_name": workOrder}
	if err := c.Call(ctx, c.Scheduler(MethodAutoScheduleJobCards), args, &msg); err != nil {
		return "", err
	}
	return msg, nil
}

// CreateBulkTestWorkOrders creates count demo work orders.
func (c *Client) CreateBulkTestWorkOrders(ctx context.Context, count int) (string, error) {
	var msg string
	args := map[string]any{"count": count}
	if err := c.Call(ctx, c.Scheduler(MethodCreateBulkTestWorkOrders), args, &msg); err != nil {
		return "", err
	}
	return msg, nil
}

// CreateTestJobCards creates demo job cards for submitted work orders.
func (c *Client) CreateTestJobCards(ctx context.Context) (string, error) {
	var msg string
	if err := c.Call(ctx, c.Scheduler(MethodCreateTestJobCards), nil, &msg); err != nil {
		return "", err
	}
	return msg, nil
}
