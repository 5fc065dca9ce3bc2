package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRegister_Idempotent(t *testing.T) {
	Register()
	Register()
}

func TestHandler_ExposesCounters(t *testing.T) {
	Register()
	ObserveRPC("get_scheduled_work_orders", 10*time.Millisecond, nil)
	ObserveRPC("update_job_card_schedule", 5*time.Millisecond, errors.New("boom"))
	IncMove("operation", "reverted")
	IncPollSkipped()
	BoardCreated()
	BoardDestroyed()
	ObserveJob("board-sweep", "ok", time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`stratasched_rpc_calls_total{method="get_scheduled_work_orders",outcome="ok"}`,
		`stratasched_rpc_calls_total{method="update_job_card_schedule",outcome="error"}`,
		`stratasched_schedule_moves_total{kind="operation",result="reverted"}`,
		"stratasched_polls_skipped_total",
		"stratasched_boards_active",
		`stratasched_job_runs_total{job="board-sweep",outcome="ok"}`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
