package workstations

import (
	"testing"

	"github.com/dalemusser/stratasched/internal/domain/models"
)

func groups(sizes ...int) []models.WorkstationGroup {
	var out []models.WorkstationGroup
	for i, n := range sizes {
		g := models.WorkstationGroup{ID: models.GroupID(string(rune('A' + i))), Title: string(rune('A' + i))}
		for j := 0; j < n; j++ {
			g.Children = append(g.Children, models.Workstation{ID: g.Title + string(rune('0'+j))})
		}
		out = append(out, g)
	}
	return out
}

func TestSummary(t *testing.T) {
	if got := Summary(groups(2, 1, 3)); got != "6 workstations across 3 types" {
		t.Errorf("Summary = %q", got)
	}
	if got := Summary(nil); got != "" {
		t.Errorf("Summary(nil) = %q, want empty", got)
	}
}

func TestSidebar_Counts(t *testing.T) {
	sb := Sidebar(groups(2, 0, 3))
	if len(sb) != 3 {
		t.Fatalf("len = %d, want 3", len(sb))
	}
	want := []int{2, 0, 3}
	for i, g := range sb {
		if g.Count != want[i] {
			t.Errorf("group %d count = %d, want %d", i, g.Count, want[i])
		}
	}
	if sb[0].ID != "type_A" {
		t.Errorf("group id = %q", sb[0].ID)
	}
}

func TestHighlightEvents(t *testing.T) {
	op := func(id, ws string) models.CalendarEvent {
		return models.CalendarEvent{
			ID:        id,
			Kind:      models.EventKindOperation,
			Operation: &models.OperationProps{Workstation: ws},
		}
	}
	events := []models.CalendarEvent{
		op("JC-1", "Lathe"),
		op("JC-2", "Mill"),
		op("JC-3", "Lathe"),
		{ID: "WO-1", Kind: models.EventKindWorkOrder},
	}

	h := HighlightEvents(events, "Lathe")
	if len(h.EventIDs) != 2 || h.EventIDs[0] != "JC-1" || h.EventIDs[1] != "JC-3" {
		t.Errorf("EventIDs = %v", h.EventIDs)
	}
	if h.First != "JC-1" {
		t.Errorf("First = %q, want JC-1", h.First)
	}

	none := HighlightEvents(events, "Press")
	if len(none.EventIDs) != 0 || none.First != "" {
		t.Errorf("unexpected match: %+v", none)
	}
}
