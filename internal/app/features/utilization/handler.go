// internal/app/features/utilization/handler.go
package utilization

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	errorsfeature "github.com/dalemusser/stratasched/internal/app/features/errors"
	"github.com/dalemusser/stratasched/internal/app/system/frappe"
	"github.com/dalemusser/stratasched/internal/app/system/spreadsheet"
	"github.com/dalemusser/stratasched/internal/app/system/timeouts"
	"github.com/dalemusser/stratasched/internal/app/system/utilization"
	"github.com/dalemusser/stratasched/internal/app/system/viewdata"
	"github.com/dalemusser/stratasched/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Gateway is the ERP call behind the report.
type Gateway interface {
	WorkstationUtilization(ctx context.Context, start, end time.Time) ([]models.UtilizationRow, error)
}

// Handler serves the workstation utilization report and its xlsx export.
type Handler struct {
	gw     Gateway
	errLog *errorsfeature.ErrorLogger
	logger *zap.Logger
	now    func() time.Time
}

// NewHandler creates a utilization Handler.
func NewHandler(gw Gateway, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		gw:     gw,
		errLog: errLog,
		logger: logger,
		now:    time.Now,
	}
}

type pageData struct {
	viewdata.BaseVM

	Start     string
	End       string
	Report    utilization.Report
	ExportURL string
	Error     string
}

// MountRoutes registers the report under /calendar. It is mounted on the
// root router next to the calendar feature rather than inside it.
//
//   - GET /calendar/utilization       - HTML report (?start=&end=, default current week)
//   - GET /calendar/utilization.xlsx  - xlsx export of the same period
func MountRoutes(r chi.Router, h *Handler) {
	r.Get("/calendar/utilization", h.Page)
	r.Get("/calendar/utilization.xlsx", h.Export)
}

func (h *Handler) period(r *http.Request) (time.Time, time.Time, error) {
	return utilization.ParsePeriod(query.Get(r, "start"), query.Get(r, "end"), h.now())
}

// Page renders the utilization table for the requested period.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	vm := pageData{BaseVM: viewdata.NewBaseVM(r, "Workstation Utilization", "/calendar")}

	start, end, err := h.period(r)
	if err != nil {
		vm.Error = "Invalid period: " + err.Error()
		vm.Start, vm.End = query.Get(r, "start"), query.Get(r, "end")
		w.WriteHeader(http.StatusBadRequest)
		templates.Render(w, r, "utilization_index", vm)
		return
	}
	vm.Start = start.Format(utilization.DateLayout)
	vm.End = end.Format(utilization.DateLayout)
	vm.ExportURL = "/calendar/utilization.xlsx?" + url.Values{"start": {vm.Start}, "end": {vm.End}}.Encode()

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.logger, "utilization report")
	defer cancel()

	rows, err := h.gw.WorkstationUtilization(ctx, start, end)
	if err != nil {
		h.errLog.Log(r, "utilization report failed", err)
		vm.Error = "Failed to load utilization: " + frappe.Message(err)
	}
	vm.Report = utilization.Build(rows, start, end)

	templates.Render(w, r, "utilization_index", vm)
}

// Export streams the report as an xlsx workbook.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	start, end, err := h.period(r)
	if err != nil {
		http.Error(w, "invalid period: "+err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.logger, "utilization export")
	defer cancel()

	rows, err := h.gw.WorkstationUtilization(ctx, start, end)
	if err != nil {
		h.errLog.Log(r, "utilization export failed", err)
		http.Error(w, "Failed to load utilization: "+frappe.Message(err), http.StatusBadGateway)
		return
	}

	// Buffer so a write failure can still produce an error status.
	var buf bytes.Buffer
	if err := spreadsheet.WriteUtilization(&buf, utilization.Build(rows, start, end)); err != nil {
		h.errLog.Log(r, "utilization xlsx failed", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("workstation_utilization_%s_%s.xlsx", start.Format("20060102"), end.Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, url.PathEscape(filename)))
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("utilization export write failed", zap.Error(err))
		return
	}
	h.logger.Info("utilization exported", zap.Int("rows", len(rows)))
}
