package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/codyswanson/vcselect/internal/config"
	"github.com/codyswanson/vcselect/internal/mesh"
)

var paletteNearestCmd = &cobra.Command{
	Use:   "nearest",
	Short: "Find the saved swatches closest to a color",
	Long: `Finds the saved swatches nearest to a query color, ordered by vector
distance in the database.

Examples:
  vcselect palette nearest --color "#cc3322"
  vcselect palette nearest --color red -k 3 --json`,
	Args: cobra.NoArgs,
	RunE: runPaletteNearest,
}

func init() {
	paletteCmd.AddCommand(paletteNearestCmd)

	paletteNearestCmd.Flags().String("color", "", "Query color as hex or a built-in color name (required)")
	paletteNearestCmd.Flags().IntP("k", "k", 5, "Number of swatches to return")
	paletteNearestCmd.Flags().Bool("json", false, "Output as JSON")
	paletteNearestCmd.MarkFlagRequired("color") //nolint:errcheck
}

func runPaletteNearest(cmd *cobra.Command, args []string) error {
	jsonOutput := mustGetBool(cmd, "json")
	k := mustGetInt(cmd, "k")
	cfg := config.Load()

	colorFlag := mustGetString(cmd, "color")
	if hex, ok := cfg.NamedColor(colorFlag); ok {
		colorFlag = hex
	}
	query, err := mesh.ParseHex(colorFlag)
	if err != nil {
		return fmt.Errorf("invalid color: %w", err)
	}

	pool, swatches, err := connectSwatches(cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	results, err := swatches.Nearest(context.Background(), query, k)
	if err != nil {
		return fmt.Errorf("searching swatches: %w", err)
	}

	if jsonOutput {
		entries := make([]PaletteEntry, 0, len(results))
		for _, s := range results {
			entries = append(entries, PaletteEntry{
				Name:  s.Name,
				Label: s.Label,
				Color: s.Color.Hex(),
			})
		}
		if err := json.NewEncoder(os.Stdout).Encode(map[string]any{
			"query":    query.Hex(),
			"swatches": entries,
		}); err != nil {
			return fmt.Errorf("encoding JSON output: %w", err)
		}
		return nil
	}

	if len(results) == 0 {
		fmt.Println("No swatches saved")
		return nil
	}

	fmt.Printf("Swatches nearest to %s:\n\n", query.Hex())
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCOLOR")
	fmt.Fprintln(w, "----\t-----")
	for _, s := range results {
		fmt.Fprintf(w, "%s\t%s\n", s.Name, s.Color.Hex())
	}
	w.Flush()

	return nil
}
