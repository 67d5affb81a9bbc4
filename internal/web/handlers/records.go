package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/faceattend/faceattend/internal/report"
	"github.com/faceattend/faceattend/internal/store"
)

// RecordsHandler serves the attendance dashboard: listing, export and stats.
type RecordsHandler struct {
	ledger store.LedgerReader
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(ledger store.LedgerReader) *RecordsHandler {
	return &RecordsHandler{ledger: ledger}
}

// RecordsResponse is a filtered ledger listing.
type RecordsResponse struct {
	Events []store.AttendanceEvent `json:"events"`
	Count  int                     `json:"count"`
}

func (h *RecordsHandler) filteredEvents(r *http.Request) ([]store.AttendanceEvent, error) {
	events, err := h.ledger.Events(r.Context())
	if err != nil {
		return nil, err
	}
	filter := report.Filter{
		Date: r.URL.Query().Get("date"),
		Name: r.URL.Query().Get("name"),
	}
	return filter.Apply(events), nil
}

// List returns ledger events, optionally filtered by ?date= and ?name=.
func (h *RecordsHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.filteredEvents(r)
	if err != nil {
		log.Printf("Failed to list attendance events: %v", err)
		respondInternal(w, err)
		return
	}
	if events == nil {
		events = []store.AttendanceEvent{}
	}
	respondJSON(w, http.StatusOK, RecordsResponse{Events: events, Count: len(events)})
}

// Export streams the filtered ledger as a CSV download.
func (h *RecordsHandler) Export(w http.ResponseWriter, r *http.Request) {
	events, err := h.filteredEvents(r)
	if err != nil {
		log.Printf("Failed to export attendance events: %v", err)
		respondInternal(w, err)
		return
	}

	filename := fmt.Sprintf("attendance-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := report.WriteCSV(w, events); err != nil {
		// Headers are already sent; nothing useful left to report to the client.
		log.Printf("Failed to write CSV export: %v", err)
	}
}

// Stats returns per-day and per-identity attendance counts.
func (h *RecordsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	events, err := h.ledger.Events(r.Context())
	if err != nil {
		log.Printf("Failed to aggregate attendance events: %v", err)
		respondInternal(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report.Aggregate(events))
}
