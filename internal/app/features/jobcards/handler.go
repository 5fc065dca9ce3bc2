// internal/app/features/jobcards/handler.go
package jobcards

import (
	"context"
	"net/http"
	"time"

	errorsfeature "github.com/dalemusser/stratasched/internal/app/features/errors"
	"github.com/dalemusser/stratasched/internal/app/system/auditlog"
	"github.com/dalemusser/stratasched/internal/app/system/calendar"
	"github.com/dalemusser/stratasched/internal/app/system/frappe"
	"github.com/dalemusser/stratasched/internal/app/system/session"
	"github.com/dalemusser/stratasched/internal/domain/models"
	"go.uber.org/zap"
)

// Gateway is the slice of the ERP client the job card pages use.
type Gateway interface {
	GetJobCard(ctx context.Context, name string) (models.JobCard, error)
	OtherJobCardsOnWorkstation(ctx context.Context, workstation, exclude string) ([]models.JobCard, error)
	UpdateJobCardSchedule(ctx context.Context, name string, start, end time.Time, newWorkstation string) error
}

// Handler serves the job card page, the availability check and quick
// reschedule.
type Handler struct {
	gw       Gateway
	sessions *session.Manager
	audit    *auditlog.Logger
	linker   calendar.Linker
	pages    *errorsfeature.Handler
	errLog   *errorsfeature.ErrorLogger
	logger   *zap.Logger
}

// NewHandler creates a job card Handler.
func NewHandler(
	gw Gateway,
	sessions *session.Manager,
	audit *auditlog.Logger,
	linker calendar.Linker,
	errLog *errorsfeature.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		gw:       gw,
		sessions: sessions,
		audit:    audit,
		linker:   linker,
		pages:    errorsfeature.NewHandler(),
		errLog:   errLog,
		logger:   logger,
	}
}

// load fetches the job card named in the URL. It writes the error page and
// returns false when that fails.
func (h *Handler) load(ctx context.Context, w http.ResponseWriter, r *http.Request, name string) (models.JobCard, bool) {
	jc, err := h.gw.GetJobCard(ctx, name)
	if err == nil {
		return jc, true
	}
	if frappe.IsNotFound(err) {
		h.pages.NotFound(w, r)
		return jc, false
	}
	h.errLog.Log(r, "failed to load job card", err)
	h.pages.InternalError(w, r)
	return jc, false
}
