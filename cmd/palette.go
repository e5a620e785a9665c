package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codyswanson/vcselect/internal/config"
	"github.com/codyswanson/vcselect/internal/database/postgres"
)

var paletteCmd = &cobra.Command{
	Use:   "palette",
	Short: "Manage the persistent swatch palette",
	Long: `Manage named reference colors (swatches) stored in PostgreSQL.
Saved swatches can be used as the reference for 'select --swatch'.

Requires the DATABASE_URL environment variable.`,
}

func init() {
	rootCmd.AddCommand(paletteCmd)
}

// connectSwatches opens the palette store. The caller must Close the pool.
func connectSwatches(cfg *config.Config) (*postgres.Pool, *postgres.SwatchRepository, error) {
	if cfg.Database.URL == "" {
		return nil, nil, errors.New("DATABASE_URL environment variable is required")
	}
	pool, err := postgres.Connect(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to palette store: %w", err)
	}
	return pool, postgres.NewSwatchRepository(pool), nil
}
