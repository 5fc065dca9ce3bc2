// internal/app/features/errors/errors.go
package errors

import (
	"net/http"
	"strings"

	"github.com/dalemusser/stratasched/internal/app/system/jsonutil"
	"github.com/dalemusser/stratasched/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// ErrorLogger wraps the zap logger for error logging.
type ErrorLogger struct {
	logger *zap.Logger
}

// NewErrorLogger creates a new ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{logger: logger}
}

// Log logs an error with the given message and error.
func (e *ErrorLogger) Log(r *http.Request, msg string, err error) {
	e.logger.Error(msg,
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
	)
}

// LogWithFields logs an error with additional fields.
func (e *ErrorLogger) LogWithFields(r *http.Request, msg string, err error, fields ...zap.Field) {
	allFields := append([]zap.Field{
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
	}, fields...)
	e.logger.Error(msg, allFields...)
}

// Handler provides error page handlers. Requests that accept JSON (the
// calendar script) get {"error": ...} instead of a page.
type Handler struct{}

// NewHandler creates a new error Handler.
func NewHandler() *Handler {
	return &Handler{}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.Contains(r.URL.Path, "/api/")
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, title, name string) {
	if wantsJSON(r) {
		jsonutil.Error(w, status, strings.ToLower(title))
		return
	}
	vm := viewdata.NewBaseVM(r, title, "/calendar")
	w.WriteHeader(status)
	templates.Render(w, r, name, vm)
}

// Forbidden renders the 403 forbidden page.
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusForbidden, "Access Denied", "errors_forbidden")
}

// CSRFFailure is the gorilla/csrf error handler. The page is told to reload
// so it picks up a fresh token.
func (h *Handler) CSRFFailure(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) {
		msg := "session expired; reload the page"
		if reason := csrf.FailureReason(r); reason != nil {
			msg += " (" + reason.Error() + ")"
		}
		jsonutil.Error(w, http.StatusForbidden, msg)
		return
	}
	h.Forbidden(w, r)
}

// NotFound renders the 404 not found page.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, "Not Found", "errors_not_found")
}

// MethodNotAllowed answers 405.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusMethodNotAllowed, "Method Not Allowed", "errors_not_found")
}

// InternalError renders the 500 internal server error page.
func (h *Handler) InternalError(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusInternalServerError, "Server Error", "errors_internal")
}
