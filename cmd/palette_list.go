package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/codyswanson/vcselect/internal/config"
)

var paletteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all saved swatches",
	Args:  cobra.NoArgs,
	RunE:  runPaletteList,
}

func init() {
	paletteCmd.AddCommand(paletteListCmd)

	paletteListCmd.Flags().Bool("json", false, "Output as JSON")
}

// PaletteEntry is one swatch in the list command's JSON output.
type PaletteEntry struct {
	Name      string `json:"name"`
	Label     string `json:"label"`
	Color     string `json:"color"`
	CreatedAt string `json:"created_at"`
}

func runPaletteList(cmd *cobra.Command, args []string) error {
	jsonOutput := mustGetBool(cmd, "json")

	pool, swatches, err := connectSwatches(config.Load())
	if err != nil {
		return err
	}
	defer pool.Close()

	all, err := swatches.List(context.Background())
	if err != nil {
		return fmt.Errorf("listing swatches: %w", err)
	}

	if jsonOutput {
		entries := make([]PaletteEntry, 0, len(all))
		for _, s := range all {
			entries = append(entries, PaletteEntry{
				Name:      s.Name,
				Label:     s.Label,
				Color:     s.Color.Hex(),
				CreatedAt: s.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		if err := json.NewEncoder(os.Stdout).Encode(entries); err != nil {
			return fmt.Errorf("encoding JSON output: %w", err)
		}
		return nil
	}

	if len(all) == 0 {
		fmt.Println("No swatches saved")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCOLOR\tCREATED")
	fmt.Fprintln(w, "----\t-----\t-------")
	for _, s := range all {
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.Name, s.Color.Hex(), s.CreatedAt.Format("2006-01-02 15:04"))
	}
	w.Flush()

	return nil
}
