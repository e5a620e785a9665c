package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/codyswanson/vcselect/internal/config"
	"github.com/codyswanson/vcselect/internal/database/postgres"
	"github.com/codyswanson/vcselect/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the vcselect web server. It exposes mesh upload, sampling,
color-match selection and palette management over an HTTP API.

The palette endpoints need the DATABASE_URL environment variable; the
server runs without them otherwise.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (overrides WEB_PORT)")
	serveCmd.Flags().String("host", "", "Host to bind to (overrides WEB_HOST)")
}

// connectPaletteStore opens the palette store when configured. A missing
// DATABASE_URL is fine; palette routes then answer 503.
func connectPaletteStore(cfg *config.Config) (*postgres.Pool, *postgres.SwatchRepository, error) {
	if cfg.Database.URL == "" {
		fmt.Println("DATABASE_URL not set, palette endpoints disabled")
		return nil, nil, nil
	}

	fmt.Println("Connecting to PostgreSQL palette store...")
	pool, err := postgres.Connect(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to palette store: %w", err)
	}
	fmt.Println("Palette store ready")
	return pool, postgres.NewSwatchRepository(pool), nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	if port := mustGetInt(cmd, "port"); port > 0 {
		cfg.Web.Port = port
	}
	if host := mustGetString(cmd, "host"); host != "" {
		cfg.Web.Host = host
	}

	pool, swatches, err := connectPaletteStore(cfg)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
	}

	server := web.NewServer(cfg, swatches)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting vcselect on http://%s:%d\n", cfg.Web.Host, cfg.Web.Port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
