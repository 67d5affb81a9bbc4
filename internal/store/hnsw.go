package store

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/coder/hnsw"

	"github.com/faceattend/faceattend/internal/constants"
)

// IdentityIndex wraps an HNSW graph over enrolled descriptors, keyed by
// identity name. Euclidean distance, matching the matcher's metric.
type IdentityIndex struct {
	graph      *hnsw.Graph[string]
	identities map[string]*EnrolledIdentity
	mu         sync.RWMutex
	path       string
}

// NewIdentityIndex creates a new empty identity index.
func NewIdentityIndex() *IdentityIndex {
	return &IdentityIndex{
		identities: make(map[string]*EnrolledIdentity),
	}
}

func newGraph() *hnsw.Graph[string] {
	g := hnsw.NewGraph[string]()
	g.M = constants.HNSWMaxNeighbors
	g.Ml = 1.0 / float64(constants.HNSWMaxNeighbors) // standard HNSW formula
	g.Distance = hnsw.EuclideanDistance
	return g
}

// Build rebuilds the index from a snapshot of enrolled identities.
func (x *IdentityIndex) Build(identities []EnrolledIdentity) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if len(identities) == 0 {
		x.graph = nil
		x.identities = make(map[string]*EnrolledIdentity)
		return nil
	}

	g := newGraph()
	x.identities = make(map[string]*EnrolledIdentity, len(identities))

	for i := range identities {
		id := &identities[i]
		if len(id.Descriptor) == 0 {
			continue
		}
		g.Add(hnsw.MakeNode(id.Name, id.Descriptor))
		x.identities[id.Name] = id
	}

	x.graph = g
	return nil
}

// Add inserts or replaces a single identity in the index.
func (x *IdentityIndex) Add(identity EnrolledIdentity) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if len(identity.Descriptor) == 0 {
		return
	}
	if x.graph == nil {
		x.graph = newGraph()
	}
	x.graph.Add(hnsw.MakeNode(identity.Name, identity.Descriptor))
	x.identities[identity.Name] = &identity
}

// Search finds the k identities nearest to the query descriptor.
// Returns names and Euclidean distances, nearest first.
func (x *IdentityIndex) Search(query []float32, k int) ([]string, []float64, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.graph == nil {
		return nil, nil, errors.New("index not initialized")
	}

	neighbors := x.graph.Search(query, k)

	names := make([]string, len(neighbors))
	distances := make([]float64, len(neighbors))
	for i, n := range neighbors {
		names[i] = n.Key
		if len(n.Value) > 0 {
			distances[i] = float64(hnsw.EuclideanDistance(query, n.Value))
		}
	}
	return names, distances, nil
}

// Get returns the indexed identity for a name, or nil.
func (x *IdentityIndex) Get(name string) *EnrolledIdentity {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.identities[name]
}

// Count returns the number of indexed identities.
func (x *IdentityIndex) Count() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.identities)
}

// SetPath sets the file path used by Save.
func (x *IdentityIndex) SetPath(path string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.path = path
}

// Save persists the graph to disk. A no-op without a configured path.
func (x *IdentityIndex) Save() error {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.path == "" {
		return nil
	}
	if x.graph == nil {
		_ = os.Remove(x.path)
		return nil
	}

	f, err := os.Create(x.path)
	if err != nil {
		return fmt.Errorf("creating index file: %w", err)
	}
	defer f.Close()

	if err := x.graph.Export(f); err != nil {
		return fmt.Errorf("exporting HNSW graph: %w", err)
	}
	return nil
}

// Load reads a previously saved graph from disk and adopts it as the live
// graph, so later Adds land in the same graph Search answers from. Missing
// file is not an error; the caller rebuilds from the store instead.
func (x *IdentityIndex) Load(path string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.path = path
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	saved, err := hnsw.LoadSavedGraph[string](path)
	if err != nil {
		return fmt.Errorf("loading HNSW index: %w", err)
	}
	x.graph = saved.Graph
	return nil
}

// RebuildIdentities repopulates the name lookup map after Load.
func (x *IdentityIndex) RebuildIdentities(identities []EnrolledIdentity) {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.identities = make(map[string]*EnrolledIdentity, len(identities))
	for i := range identities {
		x.identities[identities[i].Name] = &identities[i]
	}
}
