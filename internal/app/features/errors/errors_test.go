package errors

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/stratasched/internal/testutil"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewHandler(t *testing.T) {
	h := NewHandler()
	if h == nil {
		t.Fatal("NewHandler() returned nil")
	}
}

func TestForbidden_Returns403(t *testing.T) {
	testutil.MustBootTemplates(t)
	h := NewHandler()

	req := httptest.NewRequest(http.MethodGet, "/forbidden", nil)
	rec := httptest.NewRecorder()

	testutil.WithCSRF(http.HandlerFunc(h.Forbidden)).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestAPIRequestsGetJSON(t *testing.T) {
	h := NewHandler()

	req := httptest.NewRequest(http.MethodGet, "/calendar/api/nope", nil)
	rec := httptest.NewRecorder()

	h.NotFound(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q, want application/json", ct)
	}
	if body := rec.Body.String(); body != "{\"error\":\"not found\"}\n" {
		t.Errorf("body = %q", body)
	}
}

func TestNotFound_Returns404(t *testing.T) {
	testutil.MustBootTemplates(t)
	h := NewHandler()

	req := httptest.NewRequest(http.MethodGet, "/notfound", nil)
	rec := httptest.NewRecorder()

	testutil.WithCSRF(http.HandlerFunc(h.NotFound)).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestInternalError_Returns500(t *testing.T) {
	testutil.MustBootTemplates(t)
	h := NewHandler()

	req := httptest.NewRequest(http.MethodGet, "/error", nil)
	rec := httptest.NewRecorder()

	testutil.WithCSRF(http.HandlerFunc(h.InternalError)).ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

func TestErrorLogger_Log(t *testing.T) {
	logger := zap.NewNop()
	errLog := NewErrorLogger(logger)

	if errLog == nil {
		t.Fatal("NewErrorLogger() returned nil")
	}

	// Should not panic
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	errLog.Log(req, "test error", nil)
}

func TestErrorLogger_LogWithFields(t *testing.T) {
	logger := zap.NewNop()
	errLog := NewErrorLogger(logger)

	// Should not panic
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	errLog.LogWithFields(req, "test error", nil, zap.String("extra", "field"))
}

func TestErrorLogger_RecordsRequest(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	errLog := NewErrorLogger(zap.New(core))

	req := httptest.NewRequest(http.MethodPost, "/calendar/api/events/JC-1/move", nil)
	errLog.Log(req, "move failed", errors.New("timeout"))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["path"] != "/calendar/api/events/JC-1/move" || fields["method"] != http.MethodPost {
		t.Errorf("fields = %v", fields)
	}
	if fields["error"] != "timeout" {
		t.Errorf("error field = %v", fields["error"])
	}
}

func TestCSRFFailure_APIGetsJSON(t *testing.T) {
	h := NewHandler()
	protected := csrf.Protect([]byte("stratasched-test-csrf-key-32byte"),
		csrf.Secure(false),
		csrf.ErrorHandler(http.HandlerFunc(h.CSRFFailure)),
	)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run without a token")
	}))

	req := httptest.NewRequest(http.MethodPost, "/calendar/api/zoom", strings.NewReader(`{"action":"in"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "session expired; reload the page") {
		t.Errorf("body = %q", rec.Body.String())
	}
}
