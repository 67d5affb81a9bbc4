// Package mock provides in-memory implementations of the store interfaces
// for testing, with injectable errors.
package mock

import (
	"context"
	"sync"

	"github.com/faceattend/faceattend/internal/matcher"
	"github.com/faceattend/faceattend/internal/store"
)

// IdentityStore is an in-memory store.IdentityWriter and store.NearestSearcher.
type IdentityStore struct {
	mu         sync.RWMutex
	identities map[string]store.EnrolledIdentity
	order      []string // insertion order, for deterministic Load

	// Error injection
	LoadError  error
	GetError   error
	CountError error
	SaveError  error
	FindError  error
}

// NewIdentityStore creates an empty mock identity store.
func NewIdentityStore() *IdentityStore {
	return &IdentityStore{
		identities: make(map[string]store.EnrolledIdentity),
	}
}

// AddIdentity seeds the store without going through Save.
func (m *IdentityStore) AddIdentity(identity store.EnrolledIdentity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.identities[identity.Name]; !ok {
		m.order = append(m.order, identity.Name)
	}
	m.identities[identity.Name] = identity
}

// Load returns all identities in insertion order.
func (m *IdentityStore) Load(ctx context.Context) ([]store.EnrolledIdentity, error) {
	if m.LoadError != nil {
		return nil, m.LoadError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	identities := make([]store.EnrolledIdentity, 0, len(m.order))
	for _, name := range m.order {
		identities = append(identities, m.identities[name])
	}
	return identities, nil
}

// Get returns the identity for a name, nil if absent.
func (m *IdentityStore) Get(ctx context.Context, name string) (*store.EnrolledIdentity, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if identity, ok := m.identities[name]; ok {
		return &identity, nil
	}
	return nil, nil
}

// Count returns the number of identities.
func (m *IdentityStore) Count(ctx context.Context) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.identities), nil
}

// Save adds or overwrites an identity.
func (m *IdentityStore) Save(ctx context.Context, name string, descriptor []float32) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	m.AddIdentity(store.EnrolledIdentity{Name: name, Descriptor: descriptor, Dim: len(descriptor)})
	return nil
}

// FindNearest does a linear scan over the stored identities.
func (m *IdentityStore) FindNearest(ctx context.Context, descriptor []float32, limit int) ([]store.EnrolledIdentity, []float64, error) {
	if m.FindError != nil {
		return nil, nil, m.FindError
	}

	identities, err := m.Load(ctx)
	if err != nil {
		return nil, nil, err
	}

	distances := make([]float64, len(identities))
	for i := range identities {
		d, err := matcher.Distance(descriptor, identities[i].Descriptor)
		if err != nil {
			return nil, nil, err
		}
		distances[i] = d
	}

	for i := range len(identities) - 1 {
		for j := i + 1; j < len(identities); j++ {
			if distances[j] < distances[i] {
				distances[i], distances[j] = distances[j], distances[i]
				identities[i], identities[j] = identities[j], identities[i]
			}
		}
	}
	if limit > 0 && len(identities) > limit {
		identities = identities[:limit]
		distances = distances[:limit]
	}
	return identities, distances, nil
}

// Ledger is an in-memory store.LedgerWriter.
type Ledger struct {
	mu     sync.RWMutex
	events []store.AttendanceEvent

	// Error injection
	EventsError   error
	HasEventError error
	CountError    error
	AppendError   error
}

// NewLedger creates an empty mock ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// AddEvent seeds the ledger without the uniqueness check.
func (m *Ledger) AddEvent(event store.AttendanceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

// Events returns the ledger in append order.
func (m *Ledger) Events(ctx context.Context) ([]store.AttendanceEvent, error) {
	if m.EventsError != nil {
		return nil, m.EventsError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]store.AttendanceEvent, len(m.events))
	copy(out, m.events)
	return out, nil
}

// HasEvent checks the (name, date) key.
func (m *Ledger) HasEvent(ctx context.Context, name, date string) (bool, error) {
	if m.HasEventError != nil {
		return false, m.HasEventError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.events {
		if m.events[i].Name == name && m.events[i].Date == date {
			return true, nil
		}
	}
	return false, nil
}

// Count returns the number of events.
func (m *Ledger) Count(ctx context.Context) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events), nil
}

// Append adds an event, enforcing per-day uniqueness.
func (m *Ledger) Append(ctx context.Context, event store.AttendanceEvent) error {
	if m.AppendError != nil {
		return m.AppendError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.events {
		if m.events[i].Name == event.Name && m.events[i].Date == event.Date {
			return store.ErrDuplicateEvent
		}
	}
	m.events = append(m.events, event)
	return nil
}
