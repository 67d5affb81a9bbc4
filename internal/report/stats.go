package report

import (
	"sort"

	"github.com/faceattend/faceattend/internal/store"
)

// DayCount is the number of attendance events on one day.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// IdentityCount is the number of days an identity was present.
type IdentityCount struct {
	Name string `json:"name"`
	Days int    `json:"days"`
}

// Stats aggregates the ledger for the dashboard.
type Stats struct {
	TotalEvents int             `json:"total_events"`
	PerDay      []DayCount      `json:"per_day"`
	PerIdentity []IdentityCount `json:"per_identity"`
}

// Aggregate computes per-day and per-identity counts over the events.
// Output is sorted for stable rendering: days ascending, identities by
// days present descending, ties by name.
func Aggregate(events []store.AttendanceEvent) Stats {
	perDay := make(map[string]int)
	perIdentity := make(map[string]int)
	for _, event := range events {
		perDay[event.Date]++
		perIdentity[event.Name]++
	}

	stats := Stats{TotalEvents: len(events)}

	for date, count := range perDay {
		stats.PerDay = append(stats.PerDay, DayCount{Date: date, Count: count})
	}
	sort.Slice(stats.PerDay, func(i, j int) bool {
		return stats.PerDay[i].Date < stats.PerDay[j].Date
	})

	for name, days := range perIdentity {
		stats.PerIdentity = append(stats.PerIdentity, IdentityCount{Name: name, Days: days})
	}
	sort.Slice(stats.PerIdentity, func(i, j int) bool {
		if stats.PerIdentity[i].Days != stats.PerIdentity[j].Days {
			return stats.PerIdentity[i].Days > stats.PerIdentity[j].Days
		}
		return stats.PerIdentity[i].Name < stats.PerIdentity[j].Name
	})

	return stats
}
