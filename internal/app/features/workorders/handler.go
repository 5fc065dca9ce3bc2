// internal/app/features/workorders/handler.go
package workorders

import (
	"context"
	"net/http"

	errorsfeature "github.com/dalemusser/stratasched/internal/app/features/errors"
	"github.com/dalemusser/stratasched/internal/app/system/auditlog"
	"github.com/dalemusser/stratasched/internal/app/system/calendar"
	"github.com/dalemusser/stratasched/internal/app/system/session"
	"github.com/dalemusser/stratasched/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.uber.org/zap"
)

// Gateway is the slice of the ERP client the work order pages use.
type Gateway interface {
	GetWorkOrder(ctx context.Context, name string) (models.WorkOrder, error)
	JobCardsForWorkOrder(ctx context.Context, workOrder string) ([]models.JobCard, error)
	CountJobCards(ctx context.Context, workOrder string) (int, error)
	AutoScheduleWorkOrder(ctx context.Context, workOrder string) (string, error)
	AutoScheduleJobCards(ctx context.Context, workOrder string) (string, error)
	CreateBulkTestWorkOrders(ctx context.Context, count int) (string, error)
	CreateTestJobCards(ctx context.Context) (string, error)
}

// Handler serves the work order page and its scheduling actions.
type Handler struct {
	gw        Gateway
	sessions  *session.Manager
	audit     *auditlog.Logger
	linker    calendar.Linker
	testTools bool
	pages     *errorsfeature.Handler
	errLog    *errorsfeature.ErrorLogger
	logger    *zap.Logger
}

// NewHandler creates a work order Handler. testTools enables the demo data
// buttons and routes.
func NewHandler(
	gw Gateway,
	sessions *session.Manager,
	audit *auditlog.Logger,
	linker calendar.Linker,
	testTools bool,
	errLog *errorsfeature.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		gw:        gw,
		sessions:  sessions,
		audit:     audit,
		linker:    linker,
		testTools: testTools,
		pages:     errorsfeature.NewHandler(),
		errLog:    errLog,
		logger:    logger,
	}
}

func (h *Handler) flash(w http.ResponseWriter, r *http.Request, kind, msg string) {
	if err := h.sessions.AddFlash(w, r, kind, msg); err != nil {
		h.logger.Warn("failed to save flash", zap.Error(err))
	}
}

// returnTo is the page to go back to after an action.
func returnTo(r *http.Request, fallback string) string {
	return urlutil.SafeReturn(r.FormValue("return"), "", fallback)
}
