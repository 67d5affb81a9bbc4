package store

import "errors"

var (
	// ErrStoreCorrupt indicates the persisted identity store is unreadable.
	// Operations must abort rather than proceed with partial data.
	ErrStoreCorrupt = errors.New("identity store corrupt")

	// ErrLedgerCorrupt indicates the persisted attendance ledger is unreadable.
	ErrLedgerCorrupt = errors.New("attendance ledger corrupt")

	// ErrDuplicateEvent indicates an append would violate the
	// one-event-per-identity-per-day invariant.
	ErrDuplicateEvent = errors.New("attendance already recorded for identity and day")
)
