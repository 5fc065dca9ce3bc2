// internal/app/system/calendar/link.go
package calendar

import (
	"net/url"
	"strings"

	"github.com/dalemusser/stratasched/internal/domain/models"
)

// Route is the destination of an event click.
type Route struct {
	Kind    models.EventKind `json:"kind"`
	DocType string           `json:"doctype"`
	Name    string           `json:"name"`
	URL     string           `json:"url"`
}

// Linker builds detail URLs. With DeskBaseURL set, links point at the ERP
// desk form; otherwise they point at this app's own record pages.
type Linker struct {
	DeskBaseURL string
}

// Route resolves the page for a record of the given kind.
func (l Linker) Route(kind models.EventKind, name string) Route {
	r := Route{Kind: kind, DocType: kind.DocType(), Name: name}
	esc := url.PathEscape(name)
	if base := strings.TrimRight(l.DeskBaseURL, "/"); base != "" {
		if kind == models.EventKindOperation {
			r.URL = base + "/app/job-card/" + esc
		} else {
			r.URL = base + "/app/work-order/" + esc
		}
		return r
	}
	if kind == models.EventKindOperation {
		r.URL = "/jobcards/" + esc
	} else {
		r.URL = "/workorders/" + esc
	}
	return r
}
