// internal/app/system/scheduling/conflicts.go
package scheduling

import (
	"fmt"
	"time"

	"github.com/dalemusser/stratasched/internal/domain/models"
)

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals share any instant.
// Intervals that only touch do not overlap.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && a.End.After(b.Start)
}

// expected returns the planned interval of a job card, if it has one.
func expected(jc models.JobCard) (Interval, bool) {
	if !jc.IsScheduled() {
		return Interval{}, false
	}
	return Interval{Start: *jc.ExpectedStartDate, End: *jc.ExpectedEndDate}, true
}

// FindConflicts returns the job cards whose planned time overlaps self's.
// Self is skipped by name, as is any record without both dates. Order of
// others is preserved.
func FindConflicts(self models.JobCard, others []models.JobCard) []models.JobCard {
	mine, ok := expected(self)
	if !ok {
		return nil
	}
	var out []models.JobCard
	for _, o := range others {
		if o.Name == self.Name {
			continue
		}
		theirs, ok := expected(o)
		if !ok {
			continue
		}
		if Overlaps(mine, theirs) {
			out = append(out, o)
		}
	}
	return out
}

// Availability is the result of a workstation availability check.
type Availability struct {
	JobCard     string
	Workstation string
	Conflicts   []models.JobCard
}

// Available reports whether no conflicts were found.
func (a Availability) Available() bool {
	return len(a.Conflicts) == 0
}

// Summary is the one-line message shown after the check.
func (a Availability) Summary() string {
	if a.Available() {
		return fmt.Sprintf("Workstation %s is available for the scheduled time.", a.Workstation)
	}
	return fmt.Sprintf("This job card overlaps with %d other job card(s) on workstation %s.", len(a.Conflicts), a.Workstation)
}

// CheckAvailability compares a job card against the other job cards booked
// on its workstation.
func CheckAvailability(self models.JobCard, others []models.JobCard) Availability {
	return Availability{
		JobCard:     self.Name,
		Workstation: self.Workstation,
		Conflicts:   FindConflicts(self, others),
	}
}
