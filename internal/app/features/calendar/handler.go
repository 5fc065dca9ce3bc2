// internal/app/features/calendar/handler.go
package calendar

import (
	"context"
	"net/http"

	errorsfeature "github.com/dalemusser/stratasched/internal/app/features/errors"
	"github.com/dalemusser/stratasched/internal/app/system/auditlog"
	"github.com/dalemusser/stratasched/internal/app/system/calendar"
	"github.com/dalemusser/stratasched/internal/app/system/session"
	"go.uber.org/zap"
)

// Handler serves the calendar page and the JSON API its script drives.
// Each browser gets its own board, remembered in the session cookie.
type Handler struct {
	boards   *calendar.Registry
	sessions *session.Manager
	audit    *auditlog.Logger
	linker   calendar.Linker
	errLog   *errorsfeature.ErrorLogger
	logger   *zap.Logger
}

// NewHandler creates a calendar Handler.
func NewHandler(
	boards *calendar.Registry,
	sessions *session.Manager,
	audit *auditlog.Logger,
	linker calendar.Linker,
	errLog *errorsfeature.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		boards:   boards,
		sessions: sessions,
		audit:    audit,
		linker:   linker,
		errLog:   errLog,
		logger:   logger,
	}
}

// board returns the caller's board, or nil when the session has none or it
// has been closed.
func (h *Handler) board(r *http.Request) *calendar.Board {
	id := h.sessions.BoardID(r)
	if id == "" {
		return nil
	}
	b, ok := h.boards.Get(id)
	if !ok || b.Closed() {
		return nil
	}
	return b
}

// ensureBoard returns the caller's board, opening a new one (in Work Orders
// mode) when needed. A board that opened but failed its first load is still
// returned along with the load error so the page can render empty.
func (h *Handler) ensureBoard(ctx context.Context, w http.ResponseWriter, r *http.Request) (*calendar.Board, error) {
	if b := h.board(r); b != nil {
		return b, nil
	}
	b, err := h.boards.Open(ctx)
	if b == nil {
		return nil, err
	}
	if serr := h.sessions.SetBoardID(w, r, b.ID()); serr != nil {
		h.logger.Warn("failed to save board id in session", zap.Error(serr))
	}
	return b, err
}
