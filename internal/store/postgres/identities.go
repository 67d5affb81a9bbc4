package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/pgvector/pgvector-go"

	"github.com/faceattend/faceattend/internal/store"
)

// IdentityRepository provides PostgreSQL-backed identity storage with an
// optional in-memory HNSW index for nearest-identity lookups.
type IdentityRepository struct {
	pool        *Pool
	hnswIndex   *store.IdentityIndex
	hnswEnabled bool
	hnswMu      sync.RWMutex
}

// NewIdentityRepository creates a new PostgreSQL identity repository.
func NewIdentityRepository(pool *Pool) *IdentityRepository {
	return &IdentityRepository{pool: pool}
}

// scanIdentities reads identity rows into the domain type.
func scanIdentities(rows *sql.Rows) ([]store.EnrolledIdentity, error) {
	var identities []store.EnrolledIdentity
	for rows.Next() {
		var identity store.EnrolledIdentity
		var vec pgvector.Vector
		if err := rows.Scan(&identity.Name, &vec, &identity.Dim, &identity.CreatedAt, &identity.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan identity: %v", store.ErrStoreCorrupt, err)
		}
		identity.Descriptor = vec.Slice()
		if len(identity.Descriptor) != identity.Dim {
			return nil, fmt.Errorf("%w: identity %q has %d components, recorded dim %d",
				store.ErrStoreCorrupt, identity.Name, len(identity.Descriptor), identity.Dim)
		}
		identities = append(identities, identity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identities: %w", err)
	}
	return identities, nil
}

// Load returns a snapshot of all enrolled identities.
func (r *IdentityRepository) Load(ctx context.Context) ([]store.EnrolledIdentity, error) {
	query := `
		SELECT name, descriptor, dim, created_at, updated_at
		FROM identities
		ORDER BY created_at, name
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query identities: %w", err)
	}
	defer rows.Close()

	return scanIdentities(rows)
}

// Get retrieves an identity by name, returns nil if not enrolled.
func (r *IdentityRepository) Get(ctx context.Context, name string) (*store.EnrolledIdentity, error) {
	query := `
		SELECT name, descriptor, dim, created_at, updated_at
		FROM identities
		WHERE name = $1
	`

	var identity store.EnrolledIdentity
	var vec pgvector.Vector
	err := r.pool.QueryRow(ctx, query, name).Scan(
		&identity.Name, &vec, &identity.Dim, &identity.CreatedAt, &identity.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query identity: %w", err)
	}

	identity.Descriptor = vec.Slice()
	return &identity, nil
}

// Count returns the number of enrolled identities.
func (r *IdentityRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM identities").Scan(&count); err != nil {
		return 0, fmt.Errorf("count identities: %w", err)
	}
	return count, nil
}

// Save upserts the descriptor for name (last-write-wins) and keeps the HNSW
// index in sync when enabled.
func (r *IdentityRepository) Save(ctx context.Context, name string, descriptor []float32) error {
	query := `
		INSERT INTO identities (name, descriptor, dim)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE
		SET descriptor = EXCLUDED.descriptor, dim = EXCLUDED.dim, updated_at = NOW()
	`
	if _, err := r.pool.Exec(ctx, query, name, pgvector.NewVector(descriptor), len(descriptor)); err != nil {
		return fmt.Errorf("save identity: %w", err)
	}

	r.hnswMu.RLock()
	defer r.hnswMu.RUnlock()
	if r.hnswEnabled && r.hnswIndex != nil {
		r.hnswIndex.Add(store.EnrolledIdentity{Name: name, Descriptor: descriptor, Dim: len(descriptor)})
	}
	return nil
}

// FindNearest returns up to limit identities ordered by ascending Euclidean
// distance. Uses the HNSW index when enabled, pgvector's <-> operator otherwise.
func (r *IdentityRepository) FindNearest(ctx context.Context, descriptor []float32, limit int) ([]store.EnrolledIdentity, []float64, error) {
	r.hnswMu.RLock()
	useHNSW := r.hnswEnabled && r.hnswIndex != nil && r.hnswIndex.Count() > 0
	r.hnswMu.RUnlock()

	if useHNSW {
		return r.findNearestHNSW(descriptor, limit)
	}
	return r.findNearestSQL(ctx, descriptor, limit)
}

func (r *IdentityRepository) findNearestHNSW(descriptor []float32, limit int) ([]store.EnrolledIdentity, []float64, error) {
	names, distances, err := r.hnswIndex.Search(descriptor, limit)
	if err != nil {
		return nil, nil, fmt.Errorf("HNSW search: %w", err)
	}

	identities := make([]store.EnrolledIdentity, 0, len(names))
	kept := make([]float64, 0, len(names))
	for i, name := range names {
		if identity := r.hnswIndex.Get(name); identity != nil {
			identities = append(identities, *identity)
			kept = append(kept, distances[i])
		}
	}
	return identities, kept, nil
}

func (r *IdentityRepository) findNearestSQL(ctx context.Context, descriptor []float32, limit int) ([]store.EnrolledIdentity, []float64, error) {
	query := `
		SELECT name, descriptor, dim, created_at, updated_at, descriptor <-> $1 AS distance
		FROM identities
		ORDER BY distance
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, pgvector.NewVector(descriptor), limit)
	if err != nil {
		return nil, nil, fmt.Errorf("nearest identity query: %w", err)
	}
	defer rows.Close()

	var identities []store.EnrolledIdentity
	var distances []float64
	for rows.Next() {
		var identity store.EnrolledIdentity
		var vec pgvector.Vector
		var distance float64
		if err := rows.Scan(&identity.Name, &vec, &identity.Dim, &identity.CreatedAt, &identity.UpdatedAt, &distance); err != nil {
			return nil, nil, fmt.Errorf("scan nearest identity: %w", err)
		}
		identity.Descriptor = vec.Slice()
		identities = append(identities, identity)
		distances = append(distances, distance)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate nearest identities: %w", err)
	}
	return identities, distances, nil
}

// EnableHNSW builds (or loads from indexPath) the in-memory HNSW index.
func (r *IdentityRepository) EnableHNSW(ctx context.Context, indexPath string) error {
	identities, err := r.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading identities for HNSW build: %w", err)
	}

	index := store.NewIdentityIndex()
	if indexPath != "" {
		if err := index.Load(indexPath); err != nil {
			return err
		}
		index.RebuildIdentities(identities)
	}
	if index.Count() == 0 && len(identities) > 0 {
		if err := index.Build(identities); err != nil {
			return fmt.Errorf("building HNSW index: %w", err)
		}
		index.SetPath(indexPath)
	}

	r.hnswMu.Lock()
	defer r.hnswMu.Unlock()
	r.hnswIndex = index
	r.hnswEnabled = true
	return nil
}

// HNSWCount returns the number of indexed identities.
func (r *IdentityRepository) HNSWCount() int {
	r.hnswMu.RLock()
	defer r.hnswMu.RUnlock()
	if r.hnswIndex == nil {
		return 0
	}
	return r.hnswIndex.Count()
}

// SaveHNSWIndex persists the index to its configured path, if any.
func (r *IdentityRepository) SaveHNSWIndex() error {
	r.hnswMu.RLock()
	defer r.hnswMu.RUnlock()
	if r.hnswIndex == nil {
		return nil
	}
	return r.hnswIndex.Save()
}
