// internal/app/system/workstations/workstations.go
package workstations

import (
	"fmt"

	"github.com/dalemusser/stratasched/internal/domain/models"
)

// Group is a sidebar section: one workstation type and its stations.
type Group struct {
	ID       string
	Title    string
	Count    int
	Stations []models.Workstation
}

// Sidebar lays out the workstation groups for display, in load order.
func Sidebar(groups []models.WorkstationGroup) []Group {
	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		out = append(out, Group{
			ID:       g.ID,
			Title:    g.Title,
			Count:    len(g.Children),
			Stations: g.Children,
		})
	}
	return out
}

// Summary returns "<N> workstations across <M> types", or "" with no groups.
func Summary(groups []models.WorkstationGroup) string {
	if len(groups) == 0 {
		return ""
	}
	total := 0
	for _, g := range groups {
		total += len(g.Children)
	}
	return fmt.Sprintf("%d workstations across %d types", total, len(groups))
}

// Highlight is the set of events scheduled on one workstation.
type Highlight struct {
	WorkstationID string   `json:"workstation_id"`
	EventIDs      []string `json:"event_ids"`
	// First is the event to scroll into view; empty when nothing matched.
	First string `json:"first,omitempty"`
}

// HighlightEvents selects the operation events stamped with workstationID,
// in render order.
func HighlightEvents(events []models.CalendarEvent, workstationID string) Highlight {
	h := Highlight{WorkstationID: workstationID, EventIDs: []string{}}
	if workstationID == "" {
		return h
	}
	for _, ev := range events {
		if ev.WorkstationID() == workstationID {
			h.EventIDs = append(h.EventIDs, ev.ID)
		}
	}
	if len(h.EventIDs) > 0 {
		h.First = h.EventIDs[0]
	}
	return h
}
