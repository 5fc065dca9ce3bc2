// internal/app/system/spreadsheet/utilization.go
package spreadsheet

import (
	"io"
	"math"

	"github.com/dalemusser/stratasched/internal/app/system/utilization"
)

// UtilizationSheet is the sheet name of the utilization export.
const UtilizationSheet = "Utilization"

var utilizationColumns = []string{
	"Workstation", "Type", "Total Jobs", "Completed", "Completion %",
	"Total Hours", "Avg Duration (min)", "Utilization %",
}

// WriteUtilization exports a utilization report as an xlsx workbook.
// Figures are written as numbers so they can be charted.
func WriteUtilization(out io.Writer, r utilization.Report) error {
	w := NewWriter()
	defer w.Close()

	if err := w.AddSheet(UtilizationSheet); err != nil {
		return err
	}
	if err := w.WriteRow(r.Period); err != nil {
		return err
	}
	if err := w.WriteHeader(utilizationColumns); err != nil {
		return err
	}
	for _, row := range r.Source {
		if err := w.WriteRow(
			row.DisplayName(),
			typeOrNA(row.WorkstationType),
			row.TotalJobs,
			row.CompletedJobs,
			round1(row.CompletionRate()),
			round1(row.TotalHours()),
			round0(row.AvgDuration),
			round1(row.Utilization()),
		); err != nil {
			return err
		}
	}
	return w.Save(out)
}

func typeOrNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round0(v float64) float64 { return math.Round(v) }
