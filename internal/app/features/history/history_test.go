package history

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	errorsfeature "github.com/dalemusser/stratasched/internal/app/features/errors"
	"github.com/dalemusser/stratasched/internal/app/store/schedulelog"
	"github.com/dalemusser/stratasched/internal/app/system/calendar"
	"github.com/dalemusser/stratasched/internal/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func serve(t *testing.T, store *schedulelog.Store) *httptest.Server {
	t.Helper()
	testutil.MustBootTemplates(t)

	h := NewHandler(store, calendar.Linker{}, errorsfeature.NewErrorLogger(zap.NewNop()), zap.NewNop())
	r := chi.NewRouter()
	r.Mount("/history", Routes(h))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, srv *httptest.Server, path string) (int, string) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestList_NotRecorded(t *testing.T) {
	srv := serve(t, nil)

	status, body := get(t, srv, "/history")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Schedule history is not recorded.")
	assert.NotContains(t, body, `name="action"`)
}

func TestList_FiltersAndTimezone(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := schedulelog.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	start := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	for _, c := range []schedulelog.Change{
		{DocType: "Job Card", DocName: "JC-1", Action: schedulelog.ActionDrag, Source: schedulelog.SourceCalendar,
			NewStart: &start, NewEnd: &end, Workstation: "Lathe-1", Success: true},
		{DocType: "Job Card", DocName: "JC-1", Action: schedulelog.ActionResize, Source: schedulelog.SourceCalendar,
			FailureReason: "Workstation is busy"},
		{DocType: "Work Order", DocName: "WO-1", Action: schedulelog.ActionAutoSchedule, Source: schedulelog.SourceForm, Success: true},
	} {
		require.NoError(t, store.Log(ctx, c))
	}
	srv := serve(t, store)

	status, body := get(t, srv, "/history?doc=JC-1")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `href="/jobcards/JC-1"`)
	assert.Contains(t, body, "04-03-2024 08:00 to 04-03-2024 10:00")
	assert.Contains(t, body, "Workstation is busy")
	assert.NotContains(t, body, "WO-1")
	assert.Contains(t, body, "2 changes. Page 1 of 1.")

	_, body = get(t, srv, "/history?action="+schedulelog.ActionAutoSchedule)
	assert.Contains(t, body, `href="/workorders/WO-1"`)
	assert.NotContains(t, body, "JC-1")

	_, body = get(t, srv, "/history?tz=America/Chicago")
	assert.Contains(t, body, `value="America/Chicago" selected`)
}

func TestPageURL_KeepsFilters(t *testing.T) {
	q := url.Values{"doc": {"JC 1"}, "action": {"drag"}, "page": {"1"}}
	assert.Equal(t, "/history?action=drag&doc=JC+1&page=2", pageURL(q, 2))
}
