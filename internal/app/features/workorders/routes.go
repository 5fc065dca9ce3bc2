// internal/app/features/workorders/routes.go
package workorders

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
)

// Path is the page URL of a work order.
func Path(name string) string {
	return "/workorders/" + url.PathEscape(name)
}

// Routes returns a router with the work order pages.
//
// When mounted at /workorders:
//   - GET  /workorders/{name}                          - work order page
//   - POST /workorders/{name}/auto-schedule            - auto schedule
//   - POST /workorders/{name}/auto-schedule-job-cards  - schedule job cards
//   - POST /workorders/test/work-orders                - demo work orders (test tools)
//   - POST /workorders/test/job-cards                  - demo job cards (test tools)
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Post("/test/work-orders", h.CreateTestWorkOrders)
	r.Post("/test/job-cards", h.CreateTestJobCards)

	r.Get("/{name}", h.Show)
	r.Post("/{name}/auto-schedule", h.AutoSchedule)
	r.Post("/{name}/auto-schedule-job-cards", h.AutoScheduleJobCards)
	return r
}
