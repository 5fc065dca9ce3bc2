// internal/app/system/calendar/adapter.go
package calendar

import (
	"crypto/md5"
	"fmt"

	"github.com/dalemusser/stratasched/internal/app/system/frappe"
	"github.com/dalemusser/stratasched/internal/domain/models"
)

const (
	workOrderColor       = "#3498db"
	workOrderBorderColor = "#2980b9"
	workOrderClassName   = "work-order-event"
	operationClassName   = "operation-event"
)

// AdaptWorkOrders converts work-order records into calendar events. Records
// without both a start and an end are left off the calendar.
func AdaptWorkOrders(raw []frappe.Event) []models.CalendarEvent {
	out := make([]models.CalendarEvent, 0, len(raw))
	for _, r := range raw {
		if !r.Start.Valid || !r.End.Valid {
			continue
		}
		ev := models.CalendarEvent{
			ID:          r.ID,
			Kind:        models.EventKindWorkOrder,
			Start:       r.Start.Time,
			End:         r.End.Time,
			Title:       r.Title,
			Color:       orDefault(r.BackgroundColor, workOrderColor),
			BorderColor: orDefault(r.BorderColor, workOrderBorderColor),
			ClassName:   orDefault(r.ClassName, workOrderClassName),
			Editable:    r.Editable == nil || *r.Editable,
			WorkOrder: &models.WorkOrderProps{
				Qty:      r.ExtendedProps.Qty,
				Delivery: r.ExtendedProps.Delivery.Ptr(),
			},
		}
		if ev.Title == "" {
			ev.Title = r.ID
		}
		out = append(out, ev)
	}
	return out
}

// AdaptOperations converts job-card records into calendar events, joining
// each against the workstation list for its workstation and type.
func AdaptOperations(raw []frappe.Event, groups []models.WorkstationGroup) []models.CalendarEvent {
	index := indexWorkstations(groups)

	out := make([]models.CalendarEvent, 0, len(raw))
	for _, r := range raw {
		if !r.Start.Valid || !r.End.Valid {
			continue
		}
		p := r.ExtendedProps

		workstation := p.Workstation
		if workstation == "" {
			workstation = r.ResourceID
		}
		wsType := p.WorkstationType
		if ws, ok := index[workstation]; ok && wsType == "" {
			wsType = ws.Type
		}

		editable := !models.IsClosedStatus(p.Status)
		if p.IsEditable != nil && !*p.IsEditable {
			editable = false
		}
		if r.Editable != nil && !*r.Editable {
			editable = false
		}

		jobCard := orDefault(p.JobCardName, r.ID)
		ev := models.CalendarEvent{
			ID:          r.ID,
			Kind:        models.EventKindOperation,
			Start:       r.Start.Time,
			End:         r.End.Time,
			Title:       r.Title,
			Color:       orDefault(r.BackgroundColor, models.StatusColor(p.Status)),
			BorderColor: orDefault(r.BorderColor, WorkOrderBorderColor(p.WorkOrder)),
			ClassName:   orDefault(r.ClassName, operationClassName),
			ResourceID:  workstation,
			Editable:    editable,
			Operation: &models.OperationProps{
				JobCardName:     jobCard,
				Operation:       p.Operation,
				Sequence:        p.Sequence,
				Workstation:     workstation,
				WorkstationType: wsType,
				WorkOrder:       p.WorkOrder,
				ProductionItem:  p.ProductionItem,
				Status:          p.Status,
				CompletedQty:    p.CompletedQty,
				ForQuantity:     p.ForQuantity,
				WorkOrderQty:    p.WorkOrderQty,
				DisplayMode:     p.DisplayMode,
			},
		}
		if ev.Title == "" {
			ev.Title = jobCard
			if p.Operation != "" {
				ev.Title += ": " + p.Operation
			}
		}
		out = append(out, ev)
	}
	return out
}

// AdaptWorkstations converts the resource tree into workstation groups.
func AdaptWorkstations(raw []frappe.ResourceGroup) []models.WorkstationGroup {
	out := make([]models.WorkstationGroup, 0, len(raw))
	for _, g := range raw {
		title := orDefault(g.Title, models.UncategorizedType)
		group := models.WorkstationGroup{
			ID:       orDefault(g.ID, models.GroupID(title)),
			Title:    title,
			Children: make([]models.Workstation, 0, len(g.Children)),
		}
		for _, c := range g.Children {
			group.Children = append(group.Children, models.Workstation{
				ID:     c.ID,
				Title:  orDefault(c.Title, c.ID),
				Type:   orDefault(c.ExtendedProps.WorkstationType, title),
				Status: c.ExtendedProps.Status,
			})
		}
		out = append(out, group)
	}
	return out
}

// WorkOrderBorderColor derives a stable color from a work order name so all
// of its operations share a border. Each channel is at least 100.
func WorkOrderBorderColor(workOrder string) string {
	sum := md5.Sum([]byte(workOrder))
	r, g, b := max(int(sum[0]), 100), max(int(sum[1]), 100), max(int(sum[2]), 100)
	return fmt.Sprintf("rgb(%d,%d,%d)", r, g, b)
}

func indexWorkstations(groups []models.WorkstationGroup) map[string]models.Workstation {
	index := make(map[string]models.Workstation)
	for _, g := range groups {
		for _, ws := range g.Children {
			if ws.Type == "" {
				ws.Type = g.Title
			}
			index[ws.ID] = ws
		}
	}
	return index
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
