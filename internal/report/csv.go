package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/faceattend/faceattend/internal/store"
)

// csvHeader matches the export format of the browser dashboard.
var csvHeader = []string{"Name", "Date", "Time"}

// WriteCSV writes the events as CSV with a Name,Date,Time header.
func WriteCSV(w io.Writer, events []store.AttendanceEvent) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, event := range events {
		if err := cw.Write([]string{event.Name, event.Date, event.Time}); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}
	return nil
}
