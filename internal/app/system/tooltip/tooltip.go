// internal/app/system/tooltip/tooltip.go
package tooltip

import (
	"bytes"
	"html/template"
	"strconv"
	"time"

	"github.com/dalemusser/stratasched/internal/domain/models"
)

// DeliveryLayout is how delivery dates are shown to users.
const DeliveryLayout = "02-01-2006 15:04"

const notSet = "Not set"

var tmpl = template.Must(template.New("tooltip").Parse(`
{{- define "operation" -}}
<div class="sched-tip sched-tip-op" style="border-left-color: {{.Border}}">
  <div class="sched-tip-title">{{.Heading}}</div>
  <div><strong>Work Order:</strong> <span class="sched-tip-link">{{.WorkOrder}}</span></div>
  <div><strong>Workstation:</strong> {{.Workstation}} <span class="sched-tip-muted">({{.WorkstationType}})</span></div>
  <div><strong>Status:</strong> <span class="sched-tip-status" style="color: {{.StatusColor}}">{{.Status}}</span></div>
  <div><strong>Progress:</strong> {{.Completed}}/{{.Target}} ({{.Progress}}%)</div>
  <div class="sched-tip-foot">Production: {{.ProductionItem}} ({{.WorkOrderQty}} total)</div>
</div>
{{- end -}}
{{- define "work_order" -}}
<div class="sched-tip sched-tip-wo">
  <div class="sched-tip-title">Work Order: {{.Title}}</div>
  <div><strong>Quantity:</strong> {{.Qty}}</div>
  <div><strong>Delivery:</strong> {{.Delivery}}</div>
</div>
{{- end -}}
`))

type operationView struct {
	Heading         string
	Border          string
	WorkOrder       string
	Workstation     string
	WorkstationType string
	Status          string
	StatusColor     string
	Completed       string
	Target          string
	Progress        int
	ProductionItem  string
	WorkOrderQty    string
}

type workOrderView struct {
	Title    string
	Qty      string
	Delivery string
}

// Render builds the hover fragment for an event. All event text is escaped.
func Render(ev models.CalendarEvent) template.HTML {
	var (
		buf  bytes.Buffer
		err  error
		name string
		data any
	)
	if ev.Kind == models.EventKindOperation && ev.Operation != nil {
		name, data = "operation", operationData(ev)
	} else {
		name, data = "work_order", workOrderData(ev)
	}
	if err = tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return template.HTML(template.HTMLEscapeString(ev.Title))
	}
	return template.HTML(buf.String())
}

func operationData(ev models.CalendarEvent) operationView {
	p := ev.Operation
	heading := orNotSet(firstNonEmpty(p.JobCardName, ev.ID))
	if p.Operation != "" {
		heading += ": " + p.Operation
	}
	return operationView{
		Heading:         heading,
		Border:          ev.BorderColor,
		WorkOrder:       orNotSet(p.WorkOrder),
		Workstation:     orNotSet(p.Workstation),
		WorkstationType: orNotSet(p.WorkstationType),
		Status:          orNotSet(p.Status),
		StatusColor:     models.StatusColor(p.Status),
		Completed:       FormatQty(p.CompletedQty),
		Target:          FormatQty(p.ForQuantity),
		Progress:        p.Progress(),
		ProductionItem:  orNotSet(p.ProductionItem),
		WorkOrderQty:    FormatQty(p.WorkOrderQty),
	}
}

func workOrderData(ev models.CalendarEvent) workOrderView {
	v := workOrderView{Title: orNotSet(ev.Title), Qty: "0", Delivery: notSet}
	if ev.WorkOrder != nil {
		v.Qty = FormatQty(ev.WorkOrder.Qty)
		v.Delivery = FormatDelivery(ev.WorkOrder.Delivery)
	}
	return v
}

// FormatQty prints a quantity without trailing zeros.
func FormatQty(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}

// FormatDelivery prints a delivery date, or "Not set".
func FormatDelivery(t *time.Time) string {
	if t == nil || t.IsZero() {
		return notSet
	}
	return t.Format(DeliveryLayout)
}

func orNotSet(s string) string {
	if s == "" {
		return notSet
	}
	return s
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
