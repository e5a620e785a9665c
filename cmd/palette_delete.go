package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codyswanson/vcselect/internal/config"
)

var paletteDeleteCmd = &cobra.Command{
	Use:   "delete [name]",
	Short: "Delete a saved swatch",
	Args:  cobra.ExactArgs(1),
	RunE:  runPaletteDelete,
}

func init() {
	paletteCmd.AddCommand(paletteDeleteCmd)
}

func runPaletteDelete(cmd *cobra.Command, args []string) error {
	pool, swatches, err := connectSwatches(config.Load())
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := swatches.Delete(context.Background(), args[0]); err != nil {
		return fmt.Errorf("deleting swatch: %w", err)
	}

	fmt.Printf("Deleted swatch %q\n", args[0])
	return nil
}
