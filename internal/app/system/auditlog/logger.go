// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/stratasched/internal/app/store/schedulelog"
	"github.com/dalemusser/stratasched/internal/app/system/calendar"
	"github.com/dalemusser/stratasched/internal/app/system/frappe"
	"github.com/dalemusser/stratasched/internal/app/system/network"
	"github.com/dalemusser/stratasched/internal/domain/models"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Schedule controls logging for schedule changes (calendar moves,
	// form reschedules, auto-scheduling, test data).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Schedule string
}

// Logger records schedule changes.
// It logs to both MongoDB (via schedulelog.Store) and structured logs (via zap).
type Logger struct {
	store  *schedulelog.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger. store may be nil when the mode is "log" or "off".
func New(store *schedulelog.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

func userAgent(r *http.Request) string {
	if r == nil {
		return ""
	}
	return r.UserAgent()
}

// logToZap logs the change to zap with consistent structure.
func (l *Logger) logToZap(c schedulelog.Change) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("action", c.Action),
		zap.String("source", c.Source),
		zap.Bool("success", c.Success),
		zap.String("ip", c.IP),
	}
	if c.RequestID != "" {
		fields = append(fields, zap.String("request_id", c.RequestID))
	}
	if c.DocName != "" {
		fields = append(fields, zap.String("doctype", c.DocType), zap.String("name", c.DocName))
	}
	if c.BoardID != "" {
		fields = append(fields, zap.String("board_id", c.BoardID))
	}
	if c.NewStart != nil {
		fields = append(fields, zap.Time("new_start", *c.NewStart))
	}
	if c.NewEnd != nil {
		fields = append(fields, zap.Time("new_end", *c.NewEnd))
	}
	if c.Workstation != "" {
		fields = append(fields, zap.String("workstation", c.Workstation))
	}
	if c.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", c.FailureReason))
	}
	for k, v := range c.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if c.Success {
		l.zapLog.Info("schedule change", fields...)
	} else {
		l.zapLog.Warn("schedule change", fields...)
	}
}

// Log records a change based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
func (l *Logger) Log(ctx context.Context, c schedulelog.Change) {
	if l == nil {
		return
	}

	setting := l.config.Schedule
	if setting == "" {
		setting = "all"
	}
	if setting == "off" {
		return
	}
	if c.RequestID == "" {
		c.RequestID = middleware.GetReqID(ctx)
	}

	if setting == "all" || setting == "log" {
		l.logToZap(c)
	}

	if (setting == "all" || setting == "db") && l.store != nil {
		if err := l.store.Log(ctx, c); err != nil {
			l.zapLog.Error("failed to store schedule change",
				zap.Error(err),
				zap.String("action", c.Action),
			)
		}
	}
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func failure(err error) (bool, string) {
	if err == nil {
		return true, ""
	}
	return false, frappe.Message(err)
}

// --- Calendar ---

// Move logs a drag or resize on a calendar board. The new times are the
// requested ones so failed attempts still record what was tried.
func (l *Logger) Move(ctx context.Context, r *http.Request, boardID string, req calendar.MoveRequest, res calendar.MoveResult) {
	action := schedulelog.ActionDrag
	if req.Gesture == calendar.GestureResize {
		action = schedulelog.ActionResize
	}
	c := schedulelog.Change{
		DocType:   res.Kind.DocType(),
		DocName:   res.ID,
		Action:    action,
		Source:    schedulelog.SourceCalendar,
		BoardID:   boardID,
		PrevStart: timePtr(res.PrevStart),
		PrevEnd:   timePtr(res.PrevEnd),
		NewStart:  timePtr(req.Start),
		NewEnd:    timePtr(req.End),
		IP:        network.ClientIP(r),
		UserAgent: userAgent(r),
		Success:   res.OK,
	}
	if !res.OK {
		c.FailureReason = res.Reason
	}
	l.Log(ctx, c)
}

// --- Forms ---

// Reschedule logs a quick reschedule of a job card from its form.
func (l *Logger) Reschedule(ctx context.Context, r *http.Request, jobCard string, prev models.JobCard, start, end time.Time, workstation string, err error) {
	ok, reason := failure(err)
	c := schedulelog.Change{
		DocType:       models.EventKindOperation.DocType(),
		DocName:       jobCard,
		Action:        schedulelog.ActionQuickReschedule,
		Source:        schedulelog.SourceForm,
		NewStart:      timePtr(start),
		NewEnd:        timePtr(end),
		Workstation:   workstation,
		IP:            network.ClientIP(r),
		UserAgent:     userAgent(r),
		Success:       ok,
		FailureReason: reason,
	}
	c.PrevStart = prev.ExpectedStartDate
	c.PrevEnd = prev.ExpectedEndDate
	l.Log(ctx, c)
}

// AutoSchedule logs an auto-schedule request for a work order.
// action is schedulelog.ActionAutoSchedule or ActionAutoScheduleJobCards.
func (l *Logger) AutoSchedule(ctx context.Context, r *http.Request, workOrder, action, message string, err error) {
	ok, reason := failure(err)
	c := schedulelog.Change{
		DocType:       models.EventKindWorkOrder.DocType(),
		DocName:       workOrder,
		Action:        action,
		Source:        schedulelog.SourceForm,
		IP:            network.ClientIP(r),
		UserAgent:     userAgent(r),
		Success:       ok,
		FailureReason: reason,
	}
	if message != "" {
		c.Details = map[string]string{"message": message}
	}
	l.Log(ctx, c)
}

// TestData logs a test-data generation request with the server's reply.
func (l *Logger) TestData(ctx context.Context, r *http.Request, action, message string, err error) {
	ok, reason := failure(err)
	c := schedulelog.Change{
		Action:        action,
		Source:        schedulelog.SourceForm,
		IP:            network.ClientIP(r),
		UserAgent:     userAgent(r),
		Success:       ok,
		FailureReason: reason,
	}
	if message != "" {
		c.Details = map[string]string{"message": message}
	}
	l.Log(ctx, c)
}
