package file

import (
	"context"
	"sync"

	"github.com/faceattend/faceattend/internal/store"
)

// Ledger is a file-backed store.LedgerWriter over an append-ordered array
// of attendance records.
type Ledger struct {
	dir string
	mu  sync.Mutex
}

// NewLedger creates a ledger rooted at dir.
func NewLedger(dir string) (*Ledger, error) {
	if err := ensureDir(dir); err != nil {
		return nil, err
	}
	return &Ledger{dir: dir}, nil
}

func (l *Ledger) loadEvents() ([]store.AttendanceEvent, error) {
	var events []store.AttendanceEvent
	if err := readJSON(l.dir, ledgerFile, &events, store.ErrLedgerCorrupt); err != nil {
		return nil, err
	}
	return events, nil
}

// Events returns the full ledger in append order.
func (l *Ledger) Events(ctx context.Context) ([]store.AttendanceEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadEvents()
}

// HasEvent checks the per-day uniqueness key.
func (l *Ledger) HasEvent(ctx context.Context, name, date string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	events, err := l.loadEvents()
	if err != nil {
		return false, err
	}
	for i := range events {
		if events[i].Name == name && events[i].Date == date {
			return true, nil
		}
	}
	return false, nil
}

// Count returns the number of ledger events.
func (l *Ledger) Count(ctx context.Context) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	events, err := l.loadEvents()
	if err != nil {
		return 0, err
	}
	return len(events), nil
}

// Append adds an event, enforcing at most one per (name, date).
func (l *Ledger) Append(ctx context.Context, event store.AttendanceEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	events, err := l.loadEvents()
	if err != nil {
		return err
	}
	for i := range events {
		if events[i].Name == event.Name && events[i].Date == event.Date {
			return store.ErrDuplicateEvent
		}
	}
	events = append(events, event)
	return writeJSON(l.dir, ledgerFile, events)
}
