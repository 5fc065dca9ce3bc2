// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"

	"github.com/dalemusser/stratasched/internal/app/system/session"
	"github.com/dalemusser/stratasched/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := myPageData{
//	    BaseVM: viewdata.NewBaseVM(r, "Page Title", "/calendar"),
//	}
type BaseVM struct {
	SiteName string

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	// Security
	CSRFToken string // CSRF token for forms (use in hidden input field)

	// Flash messages queued by the previous request
	Flashes []session.Flash

	// Desk is the Frappe desk base URL, empty when desk links are off.
	Desk string
}

var (
	sessions *session.Manager
	deskURL  string
)

// Init sets the session manager used to pop flash messages and the desk
// base URL pages link to. Call this once at startup from bootstrap.
func Init(sm *session.Manager, desk string) {
	sessions = sm
	deskURL = desk
}

// NewBaseVM creates a fully populated BaseVM for a page.
//
// Parameters:
//   - r: the HTTP request
//   - title: the page title
//   - backDefault: default URL for the back button if none in request
func NewBaseVM(r *http.Request, title, backDefault string) BaseVM {
	vm := New(r)
	vm.Title = title
	vm.BackURL = httpnav.ResolveBackURL(r, backDefault)
	return vm
}

// New creates a BaseVM without consuming flash messages.
func New(r *http.Request) BaseVM {
	return BaseVM{
		SiteName:    models.SiteName,
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
		Desk:        deskURL,
	}
}

// WithFlashes pops the session's flash messages into vm. Call before the
// response body is written.
func WithFlashes(w http.ResponseWriter, r *http.Request, vm BaseVM) BaseVM {
	if sessions != nil {
		vm.Flashes = sessions.Flashes(w, r)
	}
	return vm
}
