package store

import "context"

// IdentityReader provides read-only access to enrolled identities
type IdentityReader interface {
	// Load returns a snapshot of all enrolled identities; empty if none persisted
	Load(ctx context.Context) ([]EnrolledIdentity, error)
	// Get retrieves an identity by name, returns nil if not enrolled
	Get(ctx context.Context, name string) (*EnrolledIdentity, error)
	// Count returns the number of enrolled identities
	Count(ctx context.Context) (int, error)
}

// IdentityWriter provides write access to enrolled identities
type IdentityWriter interface {
	IdentityReader

	// Save adds or overwrites the descriptor for name (last-write-wins).
	// The duplicate-face check is the matcher's responsibility and happens
	// before Save is called; the store enforces key uniqueness only.
	Save(ctx context.Context, name string, descriptor []float32) error
}

// NearestSearcher finds the identities closest to a descriptor.
// Diagnostic surface; the matcher remains the authoritative decision path.
type NearestSearcher interface {
	// FindNearest returns up to limit identities ordered by ascending
	// Euclidean distance, along with the distances.
	FindNearest(ctx context.Context, descriptor []float32, limit int) ([]EnrolledIdentity, []float64, error)
}

// LedgerReader provides read-only access to the attendance ledger
type LedgerReader interface {
	// Events returns the full ledger in append order
	Events(ctx context.Context) ([]AttendanceEvent, error)
	// HasEvent checks whether an event exists for (name, date)
	HasEvent(ctx context.Context, name, date string) (bool, error)
	// Count returns the total number of ledger events
	Count(ctx context.Context) (int, error)
}

// LedgerWriter provides append access to the attendance ledger
type LedgerWriter interface {
	LedgerReader

	// Append adds an event to the ledger. Returns ErrDuplicateEvent if an
	// event for the same (name, date) already exists.
	Append(ctx context.Context, event AttendanceEvent) error
}
