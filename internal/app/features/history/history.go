// internal/app/features/history/history.go
package history

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	errorsfeature "github.com/dalemusser/stratasched/internal/app/features/errors"
	"github.com/dalemusser/stratasched/internal/app/store/schedulelog"
	"github.com/dalemusser/stratasched/internal/app/system/calendar"
	"github.com/dalemusser/stratasched/internal/app/system/normalize"
	"github.com/dalemusser/stratasched/internal/app/system/scheduling"
	"github.com/dalemusser/stratasched/internal/app/system/timeouts"
	"github.com/dalemusser/stratasched/internal/app/system/timezones"
	"github.com/dalemusser/stratasched/internal/app/system/viewdata"
	"github.com/dalemusser/stratasched/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const pageSize = 50

// Handler lists recorded schedule changes.
type Handler struct {
	store  *schedulelog.Store
	linker calendar.Linker
	errLog *errorsfeature.ErrorLogger
	logger *zap.Logger
}

// NewHandler creates a history Handler. store is nil when changes are only
// logged, in which case the page says so.
func NewHandler(store *schedulelog.Store, linker calendar.Linker, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		store:  store,
		linker: linker,
		errLog: errLog,
		logger: logger,
	}
}

// Routes returns a router with the history page.
//
// When mounted at /history:
//   - GET /history?doc=&action=&since=&tz=&page=  - recent schedule changes
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.list)
	return r
}

// listItem is one change row for display.
type listItem struct {
	When        string
	DocName     string
	DocURL      string
	DocType     string
	Action      string
	Source      string
	Before      string
	After       string
	Workstation string
	IP          string
	Success     bool
	Reason      string
	Message     string
}

type actionOption struct {
	Value string
	Label string
}

type listData struct {
	viewdata.BaseVM

	Enabled bool
	Items   []listItem

	// Filters
	Doc      string
	Action   string
	Since    string
	Timezone string

	Actions        []actionOption
	TimezoneGroups []timezones.ZoneGroup

	// Pagination
	Page       int
	TotalPages int
	Total      int64
	HasPrev    bool
	HasNext    bool
	PrevURL    string
	NextURL    string
}

func allActions() []actionOption {
	return []actionOption{
		{Value: schedulelog.ActionDrag, Label: "Drag"},
		{Value: schedulelog.ActionResize, Label: "Resize"},
		{Value: schedulelog.ActionQuickReschedule, Label: "Quick Reschedule"},
		{Value: schedulelog.ActionAutoSchedule, Label: "Auto Schedule"},
		{Value: schedulelog.ActionAutoScheduleJobCards, Label: "Auto Schedule Job Cards"},
		{Value: schedulelog.ActionCreateTestWorkOrders, Label: "Test Work Orders"},
		{Value: schedulelog.ActionCreateTestJobCards, Label: "Test Job Cards"},
	}
}

func actionLabel(action string) string {
	for _, a := range allActions() {
		if a.Value == action {
			return a.Label
		}
	}
	return action
}

// window renders a schedule window in loc.
func window(start, end *time.Time, loc *time.Location) string {
	if start == nil && end == nil {
		return ""
	}
	in := func(t *time.Time) *time.Time {
		if t == nil {
			return nil
		}
		v := t.In(loc)
		return &v
	}
	return scheduling.FormatRange(in(start), in(end))
}

func (h *Handler) item(c schedulelog.Change, loc *time.Location) listItem {
	it := listItem{
		When:        c.CreatedAt.In(loc).Format("2006-01-02 15:04:05"),
		DocName:     c.DocName,
		DocType:     c.DocType,
		Action:      actionLabel(c.Action),
		Source:      c.Source,
		Before:      window(c.PrevStart, c.PrevEnd, loc),
		After:       window(c.NewStart, c.NewEnd, loc),
		Workstation: c.Workstation,
		IP:          c.IP,
		Success:     c.Success,
		Reason:      c.FailureReason,
		Message:     c.Details["message"],
	}
	if c.DocName != "" {
		kind := models.EventKindWorkOrder
		if c.DocType == models.EventKindOperation.DocType() {
			kind = models.EventKindOperation
		}
		it.DocURL = h.linker.Route(kind, c.DocName).URL
	}
	return it
}

// pageURL keeps the current filters and swaps the page number.
func pageURL(q url.Values, page int) string {
	v := url.Values{}
	for _, k := range []string{"doc", "action", "since", "tz"} {
		if val := q.Get(k); val != "" {
			v.Set(k, val)
		}
	}
	v.Set("page", strconv.Itoa(page))
	return "/history?" + v.Encode()
}

// list shows recent schedule changes, newest first.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	doc := normalize.DocName(q.Get("doc"))
	action := normalize.Action(q.Get("action"))
	since := normalize.QueryParam(q.Get("since"))
	tzParam := normalize.QueryParam(q.Get("tz"))

	page := 1
	if p, err := strconv.Atoi(query.Get(r, "page")); err == nil && p > 0 {
		page = p
	}

	loc := timezones.Location(tzParam)

	tzGroups, _ := timezones.Groups()
	vm := listData{
		BaseVM:         viewdata.NewBaseVM(r, "Schedule History", "/calendar"),
		Enabled:        h.store != nil,
		Doc:            doc,
		Action:         action,
		Since:          since,
		Timezone:       tzParam,
		Actions:        allActions(),
		TimezoneGroups: tzGroups,
		Page:           page,
		TotalPages:     1,
	}
	if h.store == nil {
		templates.Render(w, r, "history_list", vm)
		return
	}

	filter := schedulelog.QueryFilter{
		DocName: doc,
		Action:  action,
		Limit:   pageSize,
		Offset:  int64((page - 1) * pageSize),
	}
	if since != "" {
		if t, err := time.ParseInLocation("2006-01-02", since, loc); err == nil {
			filter.Since = &t
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.logger, "schedule history")
	defer cancel()

	changes, err := h.store.Query(ctx, filter)
	if err != nil {
		h.errLog.Log(r, "failed to query schedule changes", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	total, err := h.store.Count(ctx, filter)
	if err != nil {
		h.logger.Warn("failed to count schedule changes", zap.Error(err))
		total = int64(len(changes))
	}

	vm.Items = make([]listItem, 0, len(changes))
	for _, c := range changes {
		vm.Items = append(vm.Items, h.item(c, loc))
	}

	vm.Total = total
	vm.TotalPages = int((total + pageSize - 1) / pageSize)
	if vm.TotalPages < 1 {
		vm.TotalPages = 1
	}
	vm.HasPrev = page > 1
	vm.HasNext = page < vm.TotalPages
	if vm.HasPrev {
		vm.PrevURL = pageURL(q, page-1)
	}
	if vm.HasNext {
		vm.NextURL = pageURL(q, page+1)
	}

	templates.Render(w, r, "history_list", vm)
}
