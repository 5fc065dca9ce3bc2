// internal/app/features/calendar/routes.go
package calendar

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns a router with the calendar page and API.
//
// When mounted at /calendar:
//   - GET  /calendar                                  - calendar page
//   - GET  /calendar/api/state?since=<version>        - board snapshot
//   - POST /calendar/api/view                         - switch view mode
//   - POST /calendar/api/zoom                         - zoom in/out
//   - POST /calendar/api/refresh                      - manual refresh
//   - POST /calendar/api/goto                         - jump to date
//   - POST /calendar/api/close                        - destroy board
//   - POST /calendar/api/events/{id}/move             - drag/resize
//   - GET  /calendar/api/events/{id}/tooltip          - hover card
//   - GET  /calendar/api/events/{id}/route            - click target
//   - GET  /calendar/api/workstations/{id}/highlight  - sidebar highlight
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Page)

	r.Route("/api", func(api chi.Router) {
		api.Get("/state", h.State)
		api.Post("/view", h.SwitchView)
		api.Post("/zoom", h.Zoom)
		api.Post("/refresh", h.Refresh)
		api.Post("/goto", h.Goto)
		api.Post("/close", h.Close)

		api.Post("/events/{id}/move", h.Move)
		api.Get("/events/{id}/tooltip", h.Tooltip)
		api.Get("/events/{id}/route", h.Route)
		api.Get("/workstations/{id}/highlight", h.Highlight)
	})
	return r
}
