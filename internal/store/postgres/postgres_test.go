//go:build integration

package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/faceattend/faceattend/internal/config"
	"github.com/faceattend/faceattend/internal/store"
)

func setupTestContainer(t *testing.T) (*Pool, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:pg16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
		return nil, func() {}
	}
	if container == nil {
		t.Skip("Docker not available, skipping integration test")
		return nil, func() {}
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	dbURL := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	cfg := &config.DatabaseConfig{
		URL:          dbURL,
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}

	pool, err := NewPool(cfg)
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to create pool: %v", err)
	}

	if err := pool.Migrate(ctx); err != nil {
		pool.Close()
		container.Terminate(ctx)
		t.Fatalf("Failed to run migrations: %v", err)
	}

	cleanup := func() {
		pool.Close()
		container.Terminate(ctx)
	}

	return pool, cleanup
}

func testDescriptor(seed int) []float32 {
	d := make([]float32, 128)
	for i := range d {
		d[i] = float32(i+seed) / 128.0
	}
	return d
}

func TestIdentityRepository(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	repo := NewIdentityRepository(pool)

	t.Run("SaveAndGet", func(t *testing.T) {
		if err := repo.Save(ctx, "alice", testDescriptor(0)); err != nil {
			t.Fatalf("Failed to save identity: %v", err)
		}

		got, err := repo.Get(ctx, "alice")
		if err != nil {
			t.Fatalf("Failed to get identity: %v", err)
		}
		if got == nil {
			t.Fatal("Expected identity, got nil")
		}
		if got.Name != "alice" {
			t.Errorf("Expected name 'alice', got '%s'", got.Name)
		}
		if len(got.Descriptor) != 128 {
			t.Errorf("Expected 128 components, got %d", len(got.Descriptor))
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		got, err := repo.Get(ctx, "nobody")
		if err != nil {
			t.Fatalf("Failed to get identity: %v", err)
		}
		if got != nil {
			t.Errorf("Expected nil for missing identity, got %+v", got)
		}
	})

	t.Run("SaveOverwrites", func(t *testing.T) {
		if err := repo.Save(ctx, "alice", testDescriptor(7)); err != nil {
			t.Fatalf("Failed to re-save identity: %v", err)
		}

		got, err := repo.Get(ctx, "alice")
		if err != nil {
			t.Fatalf("Failed to get identity: %v", err)
		}
		if got.Descriptor[0] != 7.0/128.0 {
			t.Errorf("Expected updated descriptor, got first component %v", got.Descriptor[0])
		}

		count, err := repo.Count(ctx)
		if err != nil {
			t.Fatalf("Failed to count: %v", err)
		}
		if count != 1 {
			t.Errorf("Expected 1 identity after upsert, got %d", count)
		}
	})

	t.Run("CaseSensitiveNames", func(t *testing.T) {
		if err := repo.Save(ctx, "Alice", testDescriptor(20)); err != nil {
			t.Fatalf("Failed to save identity: %v", err)
		}

		count, err := repo.Count(ctx)
		if err != nil {
			t.Fatalf("Failed to count: %v", err)
		}
		if count != 2 {
			t.Errorf("Expected 'alice' and 'Alice' as distinct rows, got count %d", count)
		}
	})

	t.Run("Load", func(t *testing.T) {
		identities, err := repo.Load(ctx)
		if err != nil {
			t.Fatalf("Failed to load identities: %v", err)
		}
		if len(identities) != 2 {
			t.Fatalf("Expected 2 identities, got %d", len(identities))
		}
		for _, identity := range identities {
			if identity.Dim != 128 {
				t.Errorf("Identity %s: expected dim 128, got %d", identity.Name, identity.Dim)
			}
		}
	})

	t.Run("FindNearest", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			name := fmt.Sprintf("person%d", i)
			if err := repo.Save(ctx, name, testDescriptor(i*100)); err != nil {
				t.Fatalf("Failed to save %s: %v", name, err)
			}
		}

		identities, distances, err := repo.FindNearest(ctx, testDescriptor(0), 3)
		if err != nil {
			t.Fatalf("Failed to find nearest: %v", err)
		}
		if len(identities) != 3 {
			t.Fatalf("Expected 3 results, got %d", len(identities))
		}
		if len(identities) != len(distances) {
			t.Fatalf("Results and distances length mismatch: %d vs %d", len(identities), len(distances))
		}
		if identities[0].Name != "person0" {
			t.Errorf("Expected nearest 'person0', got '%s'", identities[0].Name)
		}
		if distances[0] > 1e-6 {
			t.Errorf("Expected near-zero distance for identical descriptor, got %v", distances[0])
		}
		for i := 1; i < len(distances); i++ {
			if distances[i] < distances[i-1] {
				t.Error("Distances not sorted")
			}
		}
	})

	t.Run("FindNearestWithHNSW", func(t *testing.T) {
		if err := repo.EnableHNSW(ctx, ""); err != nil {
			t.Fatalf("Failed to enable HNSW: %v", err)
		}
		if repo.HNSWCount() == 0 {
			t.Fatal("Expected HNSW index to contain identities")
		}

		identities, distances, err := repo.FindNearest(ctx, testDescriptor(0), 3)
		if err != nil {
			t.Fatalf("Failed to find nearest via HNSW: %v", err)
		}
		if len(identities) == 0 {
			t.Fatal("Expected results, got none")
		}
		if identities[0].Name != "person0" {
			t.Errorf("Expected nearest 'person0', got '%s'", identities[0].Name)
		}
		if len(identities) != len(distances) {
			t.Errorf("Results and distances length mismatch")
		}
	})
}

func TestLedgerRepository(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	repo := NewLedgerRepository(pool)

	now := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

	t.Run("AppendAndEvents", func(t *testing.T) {
		event := store.NewAttendanceEvent("alice", now)
		if err := repo.Append(ctx, event); err != nil {
			t.Fatalf("Failed to append event: %v", err)
		}

		events, err := repo.Events(ctx)
		if err != nil {
			t.Fatalf("Failed to read events: %v", err)
		}
		if len(events) != 1 {
			t.Fatalf("Expected 1 event, got %d", len(events))
		}
		if events[0].Name != "alice" {
			t.Errorf("Expected name 'alice', got '%s'", events[0].Name)
		}
		if events[0].Date != "2024-03-15" {
			t.Errorf("Expected date '2024-03-15', got '%s'", events[0].Date)
		}
		if events[0].Time != "09:30:00" {
			t.Errorf("Expected time '09:30:00', got '%s'", events[0].Time)
		}
	})

	t.Run("DuplicateSameDay", func(t *testing.T) {
		later := store.NewAttendanceEvent("alice", now.Add(2*time.Hour))
		err := repo.Append(ctx, later)
		if !errors.Is(err, store.ErrDuplicateEvent) {
			t.Fatalf("Expected ErrDuplicateEvent, got %v", err)
		}

		count, err := repo.Count(ctx)
		if err != nil {
			t.Fatalf("Failed to count: %v", err)
		}
		if count != 1 {
			t.Errorf("Expected 1 event after duplicate rejection, got %d", count)
		}
	})

	t.Run("NextDayAllowed", func(t *testing.T) {
		nextDay := store.NewAttendanceEvent("alice", now.AddDate(0, 0, 1))
		if err := repo.Append(ctx, nextDay); err != nil {
			t.Fatalf("Failed to append next-day event: %v", err)
		}

		count, err := repo.Count(ctx)
		if err != nil {
			t.Fatalf("Failed to count: %v", err)
		}
		if count != 2 {
			t.Errorf("Expected 2 events, got %d", count)
		}
	})

	t.Run("HasEvent", func(t *testing.T) {
		has, err := repo.HasEvent(ctx, "alice", "2024-03-15")
		if err != nil {
			t.Fatalf("Failed to check has event: %v", err)
		}
		if !has {
			t.Error("Expected true, got false")
		}

		has, err = repo.HasEvent(ctx, "alice", "2024-03-17")
		if err != nil {
			t.Fatalf("Failed to check has event: %v", err)
		}
		if has {
			t.Error("Expected false, got true")
		}

		has, err = repo.HasEvent(ctx, "bob", "2024-03-15")
		if err != nil {
			t.Fatalf("Failed to check has event: %v", err)
		}
		if has {
			t.Error("Expected false for unknown name, got true")
		}
	})
}

func TestMigrations(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()

	applied, err := pool.MigrationsApplied(ctx)
	if err != nil {
		t.Fatalf("Failed to get applied migrations: %v", err)
	}

	expectedMigrations := []string{
		"001_init.sql",
	}

	if len(applied) != len(expectedMigrations) {
		t.Errorf("Expected %d migrations, got %d", len(expectedMigrations), len(applied))
	}

	for i, expected := range expectedMigrations {
		if i < len(applied) && applied[i] != expected {
			t.Errorf("Migration %d: expected '%s', got '%s'", i, expected, applied[i])
		}
	}
}
