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

	"github.com/codyswanson/vcselect/internal/config"
	"github.com/codyswanson/vcselect/internal/mesh"
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

func TestSwatchRepository(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	repo := NewSwatchRepository(pool)

	red := mesh.Color{R: 1, A: 1}
	blue := mesh.Color{B: 1, A: 1}

	t.Run("SaveAndGet", func(t *testing.T) {
		saved, err := repo.Save(ctx, "Hull Trim", red)
		if err != nil {
			t.Fatalf("Failed to save swatch: %v", err)
		}
		if saved.Name != "hull trim" {
			t.Errorf("expected normalized name 'hull trim', got %q", saved.Name)
		}
		if saved.Label != "Hull Trim" {
			t.Errorf("expected label 'Hull Trim', got %q", saved.Label)
		}

		got, err := repo.Get(ctx, "hull-trim")
		if err != nil {
			t.Fatalf("Failed to get swatch: %v", err)
		}
		if mesh.Distance(got.Color, red) > 1e-6 {
			t.Errorf("color drifted through storage: %v", got.Color)
		}
	})

	t.Run("SaveOverwrites", func(t *testing.T) {
		if _, err := repo.Save(ctx, "trim2", red); err != nil {
			t.Fatalf("Failed to save swatch: %v", err)
		}
		if _, err := repo.Save(ctx, "trim2", blue); err != nil {
			t.Fatalf("Failed to overwrite swatch: %v", err)
		}

		got, err := repo.Get(ctx, "trim2")
		if err != nil {
			t.Fatalf("Failed to get swatch: %v", err)
		}
		if mesh.Distance(got.Color, blue) > 1e-6 {
			t.Errorf("expected overwritten blue, got %v", got.Color)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		_, err := repo.Get(ctx, "no such swatch")
		if !errors.Is(err, ErrSwatchNotFound) {
			t.Errorf("expected ErrSwatchNotFound, got %v", err)
		}
	})

	t.Run("ListAndCount", func(t *testing.T) {
		swatches, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("Failed to list swatches: %v", err)
		}
		count, err := repo.Count(ctx)
		if err != nil {
			t.Fatalf("Failed to count swatches: %v", err)
		}
		if len(swatches) != count {
			t.Errorf("list returned %d swatches but count is %d", len(swatches), count)
		}
	})

	t.Run("Nearest", func(t *testing.T) {
		if _, err := repo.Save(ctx, "near-red", mesh.Color{R: 0.95, A: 1}); err != nil {
			t.Fatalf("Failed to save swatch: %v", err)
		}
		if _, err := repo.Save(ctx, "near-blue", mesh.Color{B: 0.95, A: 1}); err != nil {
			t.Fatalf("Failed to save swatch: %v", err)
		}

		results, err := repo.Nearest(ctx, red, 1)
		if err != nil {
			t.Fatalf("Failed to query nearest: %v", err)
		}
		if len(results) != 1 {
			t.Fatalf("expected 1 result, got %d", len(results))
		}
		if results[0].Color.R < 0.9 {
			t.Errorf("expected a red-ish nearest swatch, got %v", results[0].Color)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if _, err := repo.Save(ctx, "doomed", red); err != nil {
			t.Fatalf("Failed to save swatch: %v", err)
		}
		if err := repo.Delete(ctx, "doomed"); err != nil {
			t.Fatalf("Failed to delete swatch: %v", err)
		}
		if err := repo.Delete(ctx, "doomed"); !errors.Is(err, ErrSwatchNotFound) {
			t.Errorf("expected ErrSwatchNotFound on second delete, got %v", err)
		}
	})

	t.Run("GetByNames", func(t *testing.T) {
		if _, err := repo.Save(ctx, "batch-a", red); err != nil {
			t.Fatalf("Failed to save swatch: %v", err)
		}
		if _, err := repo.Save(ctx, "batch-b", blue); err != nil {
			t.Fatalf("Failed to save swatch: %v", err)
		}

		swatches, err := repo.GetByNames(ctx, []string{"Batch-A", "batch b", "missing"})
		if err != nil {
			t.Fatalf("Failed to get swatches by names: %v", err)
		}
		if len(swatches) != 2 {
			t.Errorf("expected 2 swatches, got %d", len(swatches))
		}
	})
}
