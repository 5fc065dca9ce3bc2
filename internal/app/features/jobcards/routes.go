// internal/app/features/jobcards/routes.go
package jobcards

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
)

// Path is the page URL of a job card.
func Path(name string) string {
	return "/jobcards/" + url.PathEscape(name)
}

// Routes returns a router with the job card pages.
//
// When mounted at /jobcards:
//   - GET  /jobcards/{name}               - job card page
//   - POST /jobcards/{name}/availability  - check workstation availability
//   - POST /jobcards/{name}/reschedule    - quick reschedule
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/{name}", h.Show)
	r.Post("/{name}/availability", h.Availability)
	r.Post("/{name}/reschedule", h.Reschedule)
	return r
}
