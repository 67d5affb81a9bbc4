package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/faceattend/faceattend/internal/store"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

// LedgerRepository provides PostgreSQL-backed attendance ledger storage.
type LedgerRepository struct {
	pool *Pool
}

// NewLedgerRepository creates a new PostgreSQL ledger repository.
func NewLedgerRepository(pool *Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// Events returns the full ledger in append order.
func (r *LedgerRepository) Events(ctx context.Context) ([]store.AttendanceEvent, error) {
	query := `
		SELECT id, name, to_char(day, 'YYYY-MM-DD'), clock, created_at
		FROM attendance_events
		ORDER BY created_at, id
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query attendance events: %w", err)
	}
	defer rows.Close()

	var events []store.AttendanceEvent
	for rows.Next() {
		var event store.AttendanceEvent
		if err := rows.Scan(&event.ID, &event.Name, &event.Date, &event.Time, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan attendance event: %v", store.ErrLedgerCorrupt, err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance events: %w", err)
	}
	return events, nil
}

// HasEvent checks whether an event exists for (name, date).
func (r *LedgerRepository) HasEvent(ctx context.Context, name, date string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM attendance_events WHERE name = $1 AND day = $2::date)",
		name, date,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check attendance event exists: %w", err)
	}
	return exists, nil
}

// Count returns the total number of ledger events.
func (r *LedgerRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM attendance_events").Scan(&count); err != nil {
		return 0, fmt.Errorf("count attendance events: %w", err)
	}
	return count, nil
}

// Append inserts an event. The unique (name, day) constraint backs the
// recorder's dedup check; a violation surfaces as ErrDuplicateEvent.
func (r *LedgerRepository) Append(ctx context.Context, event store.AttendanceEvent) error {
	query := `
		INSERT INTO attendance_events (id, name, day, clock, created_at)
		VALUES ($1, $2, $3::date, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query, event.ID, event.Name, event.Date, event.Time, event.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return store.ErrDuplicateEvent
		}
		return fmt.Errorf("append attendance event: %w", err)
	}
	return nil
}
