package models

import (
	"math"
	"testing"
)

func TestUtilizationRow(t *testing.T) {
	tests := []struct {
		name       string
		row        UtilizationRow
		hours      float64
		completion float64
		util       float64
		level      string
	}{
		{
			name:  "empty",
			row:   UtilizationRow{},
			level: "success",
		},
		{
			name:       "half day",
			row:        UtilizationRow{TotalJobs: 4, CompletedJobs: 1, TotalMinutes: 240},
			hours:      4,
			completion: 25,
			util:       50,
			level:      "success",
		},
		{
			name:       "busy",
			row:        UtilizationRow{TotalJobs: 3, CompletedJobs: 3, TotalMinutes: 330},
			hours:      5.5,
			completion: 100,
			util:       68.75,
			level:      "warning",
		},
		{
			name:       "overbooked caps at 100",
			row:        UtilizationRow{TotalJobs: 10, CompletedJobs: 2, TotalMinutes: 900},
			hours:      15,
			completion: 20,
			util:       100,
			level:      "danger",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.row.TotalHours(); math.Abs(got-tt.hours) > 1e-9 {
				t.Errorf("TotalHours() = %v, want %v", got, tt.hours)
			}
			if got := tt.row.CompletionRate(); math.Abs(got-tt.completion) > 1e-9 {
				t.Errorf("CompletionRate() = %v, want %v", got, tt.completion)
			}
			if got := tt.row.Utilization(); math.Abs(got-tt.util) > 1e-9 {
				t.Errorf("Utilization() = %v, want %v", got, tt.util)
			}
			if got := tt.row.Level(); got != tt.level {
				t.Errorf("Level() = %q, want %q", got, tt.level)
			}
		})
	}
}

func TestUtilizationRow_DisplayName(t *testing.T) {
	if got := (UtilizationRow{Workstation: "WS-01"}).DisplayName(); got != "WS-01" {
		t.Errorf("DisplayName() = %q", got)
	}
	if got := (UtilizationRow{Workstation: "WS-01", WorkstationName: "Lathe"}).DisplayName(); got != "Lathe" {
		t.Errorf("DisplayName() = %q", got)
	}
}

func TestGroupID(t *testing.T) {
	if GroupID("Milling") != "type_Milling" {
		t.Errorf("GroupID(Milling) = %q", GroupID("Milling"))
	}
	if GroupID("") != "type_Uncategorized" {
		t.Errorf("GroupID(\"\") = %q", GroupID(""))
	}
}
