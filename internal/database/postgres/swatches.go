package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/codyswanson/vcselect/internal/database"
	"github.com/codyswanson/vcselect/internal/mesh"
)

// ErrSwatchNotFound is returned when a named swatch does not exist.
var ErrSwatchNotFound = errors.New("swatch not found")

// SwatchRepository provides PostgreSQL-backed swatch storage. Colors are
// stored as 4-dim pgvector values so nearest-swatch queries run in SQL.
type SwatchRepository struct {
	pool *Pool
}

// NewSwatchRepository creates a new swatch repository.
func NewSwatchRepository(pool *Pool) *SwatchRepository {
	return &SwatchRepository{pool: pool}
}

// Save stores a swatch under a name, overwriting any existing color with the
// same normalized name.
func (r *SwatchRepository) Save(ctx context.Context, name string, color mesh.Color) (*database.StoredSwatch, error) {
	normalized, err := database.NormalizeSwatchName(name)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO swatches (name, label, color)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET label = EXCLUDED.label, color = EXCLUDED.color
		RETURNING id, name, label, color, created_at
	`

	row := r.pool.QueryRow(ctx, query, normalized, name, pgvector.NewVector(color.Vector()))
	swatch, err := scanSwatch(row)
	if err != nil {
		return nil, fmt.Errorf("save swatch %q: %w", name, err)
	}
	return swatch, nil
}

// Get retrieves a swatch by name, normalizing it first.
func (r *SwatchRepository) Get(ctx context.Context, name string) (*database.StoredSwatch, error) {
	normalized, err := database.NormalizeSwatchName(name)
	if err != nil {
		return nil, err
	}

	query := `SELECT id, name, label, color, created_at FROM swatches WHERE name = $1`

	swatch, err := scanSwatch(r.pool.QueryRow(ctx, query, normalized))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrSwatchNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("query swatch %q: %w", name, err)
	}
	return swatch, nil
}

// List returns all swatches ordered by name.
func (r *SwatchRepository) List(ctx context.Context) ([]database.StoredSwatch, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, label, color, created_at FROM swatches ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list swatches: %w", err)
	}
	defer rows.Close()

	var swatches []database.StoredSwatch
	for rows.Next() {
		swatch, err := scanSwatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan swatch: %w", err)
		}
		swatches = append(swatches, *swatch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate swatches: %w", err)
	}
	return swatches, nil
}

// GetByNames returns the swatches matching any of the given normalized names.
func (r *SwatchRepository) GetByNames(ctx context.Context, names []string) ([]database.StoredSwatch, error) {
	if len(names) == 0 {
		return nil, nil
	}

	normalized := make([]string, 0, len(names))
	for _, n := range names {
		v, err := database.NormalizeSwatchName(n)
		if err != nil {
			return nil, err
		}
		normalized = append(normalized, v)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, name, label, color, created_at FROM swatches WHERE name = ANY($1) ORDER BY name`,
		pq.Array(normalized))
	if err != nil {
		return nil, fmt.Errorf("query swatches by names: %w", err)
	}
	defer rows.Close()

	var swatches []database.StoredSwatch
	for rows.Next() {
		swatch, err := scanSwatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan swatch: %w", err)
		}
		swatches = append(swatches, *swatch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate swatches: %w", err)
	}
	return swatches, nil
}

// Delete removes a swatch by name. Deleting a missing swatch returns
// ErrSwatchNotFound.
func (r *SwatchRepository) Delete(ctx context.Context, name string) error {
	normalized, err := database.NormalizeSwatchName(name)
	if err != nil {
		return err
	}

	result, err := r.pool.Exec(ctx, `DELETE FROM swatches WHERE name = $1`, normalized)
	if err != nil {
		return fmt.Errorf("delete swatch %q: %w", name, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete swatch %q: %w", name, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %q", ErrSwatchNotFound, name)
	}
	return nil
}

// Nearest returns up to k swatches ordered by vector distance to the color.
func (r *SwatchRepository) Nearest(ctx context.Context, color mesh.Color, k int) ([]database.StoredSwatch, error) {
	if k <= 0 {
		return nil, nil
	}

	// pgvector L2 ordering; exact Chebyshev distances are recomputed by the
	// caller when it needs them, the ordering is close enough for a 4-dim
	// color ramp.
	query := `
		SELECT id, name, label, color, created_at
		FROM swatches
		ORDER BY color <-> $1
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, pgvector.NewVector(color.Vector()), k)
	if err != nil {
		return nil, fmt.Errorf("query nearest swatches: %w", err)
	}
	defer rows.Close()

	var swatches []database.StoredSwatch
	for rows.Next() {
		swatch, err := scanSwatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan swatch: %w", err)
		}
		swatches = append(swatches, *swatch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate swatches: %w", err)
	}
	return swatches, nil
}

// Count returns the total number of stored swatches.
func (r *SwatchRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM swatches").Scan(&count); err != nil {
		return 0, fmt.Errorf("count swatches: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSwatch(row rowScanner) (*database.StoredSwatch, error) {
	var swatch database.StoredSwatch
	var vec pgvector.Vector

	if err := row.Scan(&swatch.ID, &swatch.Name, &swatch.Label, &vec, &swatch.CreatedAt); err != nil {
		return nil, err
	}
	swatch.Color = mesh.ColorFromVector(vec.Slice())
	return &swatch, nil
}
