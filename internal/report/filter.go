package report

import (
	"strings"

	"github.com/faceattend/faceattend/internal/store"
)

// Filter narrows a ledger listing. Zero value matches everything.
type Filter struct {
	Date string // exact YYYY-MM-DD match
	Name string // substring match after normalization
}

// Apply returns the events matching the filter, preserving ledger order.
func (f Filter) Apply(events []store.AttendanceEvent) []store.AttendanceEvent {
	if f.Date == "" && f.Name == "" {
		return events
	}

	needle := NormalizeName(f.Name)
	var out []store.AttendanceEvent
	for _, event := range events {
		if f.Date != "" && event.Date != f.Date {
			continue
		}
		if needle != "" && !strings.Contains(NormalizeName(event.Name), needle) {
			continue
		}
		out = append(out, event)
	}
	return out
}
