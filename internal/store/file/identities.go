package file

import (
	"context"
	"sync"

	"github.com/faceattend/faceattend/internal/matcher"
	"github.com/faceattend/faceattend/internal/store"
)

// IdentityStore is a file-backed store.IdentityWriter and
// store.NearestSearcher. Every operation is a full read-modify-write cycle
// under one mutex, so loads always observe fully committed state.
type IdentityStore struct {
	dir string
	mu  sync.Mutex
}

// NewIdentityStore creates an identity store rooted at dir.
func NewIdentityStore(dir string) (*IdentityStore, error) {
	if err := ensureDir(dir); err != nil {
		return nil, err
	}
	return &IdentityStore{dir: dir}, nil
}

// loadDescriptors reads the raw name-to-descriptor map (the localStorage shape).
func (s *IdentityStore) loadDescriptors() (map[string][]float32, error) {
	descriptors := make(map[string][]float32)
	if err := readJSON(s.dir, identitiesFile, &descriptors, store.ErrStoreCorrupt); err != nil {
		return nil, err
	}
	return descriptors, nil
}

func (s *IdentityStore) loadLocked() ([]store.EnrolledIdentity, error) {
	descriptors, err := s.loadDescriptors()
	if err != nil {
		return nil, err
	}

	identities := make([]store.EnrolledIdentity, 0, len(descriptors))
	for name, d := range descriptors {
		identities = append(identities, store.EnrolledIdentity{
			Name:       name,
			Descriptor: d,
			Dim:        len(d),
		})
	}
	return identities, nil
}

// Load returns all enrolled identities.
func (s *IdentityStore) Load(ctx context.Context) ([]store.EnrolledIdentity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

// Get retrieves a single identity by exact name, nil if not enrolled.
func (s *IdentityStore) Get(ctx context.Context, name string) (*store.EnrolledIdentity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	descriptors, err := s.loadDescriptors()
	if err != nil {
		return nil, err
	}
	d, ok := descriptors[name]
	if !ok {
		return nil, nil
	}
	return &store.EnrolledIdentity{Name: name, Descriptor: d, Dim: len(d)}, nil
}

// Count returns the number of enrolled identities.
func (s *IdentityStore) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	descriptors, err := s.loadDescriptors()
	if err != nil {
		return 0, err
	}
	return len(descriptors), nil
}

// Save adds or overwrites the descriptor for name (last-write-wins).
func (s *IdentityStore) Save(ctx context.Context, name string, descriptor []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	descriptors, err := s.loadDescriptors()
	if err != nil {
		return err
	}
	descriptors[name] = descriptor
	return writeJSON(s.dir, identitiesFile, descriptors)
}

// FindNearest scans all identities and returns the closest by Euclidean
// distance. Linear scan; identity counts in a file-backed deployment are small.
func (s *IdentityStore) FindNearest(ctx context.Context, descriptor []float32, limit int) ([]store.EnrolledIdentity, []float64, error) {
	s.mu.Lock()
	identities, err := s.loadLocked()
	s.mu.Unlock()
	if err != nil {
		return nil, nil, err
	}

	type scored struct {
		identity store.EnrolledIdentity
		distance float64
	}
	results := make([]scored, 0, len(identities))
	for i := range identities {
		dist, err := matcher.Distance(descriptor, identities[i].Descriptor)
		if err != nil {
			return nil, nil, err
		}
		results = append(results, scored{identities[i], dist})
	}

	for i := range len(results) - 1 {
		for j := i + 1; j < len(results); j++ {
			if results[j].distance < results[i].distance {
				results[i], results[j] = results[j], results[i]
			}
		}
	}
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	out := make([]store.EnrolledIdentity, len(results))
	distances := make([]float64, len(results))
	for i, r := range results {
		out[i] = r.identity
		distances[i] = r.distance
	}
	return out, distances, nil
}
