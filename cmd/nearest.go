package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/codyswanson/vcselect/internal/colorindex"
	"github.com/codyswanson/vcselect/internal/config"
	"github.com/codyswanson/vcselect/internal/mesh"
	"github.com/codyswanson/vcselect/internal/selector"
)

var nearestCmd = &cobra.Command{
	Use:   "nearest [mesh.ply]",
	Short: "Find the faces closest to a color",
	Long: `Finds the faces whose color is nearest to a query color, without
changing the selection. Useful for picking a threshold: the listed
distances are exactly what 'select --threshold' compares against.

Examples:
  # The 5 faces closest to pure red
  vcselect nearest model.ply --color "#ff0000"

  # Faces closest to face 42's color
  vcselect nearest model.ply --sample-face 42

  # More results, as JSON
  vcselect nearest model.ply --color orange -k 20 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runNearest,
}

func init() {
	rootCmd.AddCommand(nearestCmd)

	nearestCmd.Flags().String("color", "", "Query color as hex or a built-in color name")
	nearestCmd.Flags().Int("sample-face", -1, "Query with this face's color instead of --color")
	nearestCmd.Flags().String("reduction", "", "How to collapse a face's corner colors: first or average (defaults from config)")
	nearestCmd.Flags().IntP("k", "k", 5, "Number of faces to return")
	nearestCmd.Flags().Bool("json", false, "Output as JSON")
}

// NearestOutput is the JSON output of the nearest command.
type NearestOutput struct {
	File    string              `json:"file"`
	Query   string              `json:"query"`
	Results []colorindex.Result `json:"results"`
}

func runNearest(cmd *cobra.Command, args []string) error {
	jsonOutput := mustGetBool(cmd, "json")
	k := mustGetInt(cmd, "k")
	cfg := config.Load()

	reduction, err := resolveReduction(cmd, cfg)
	if err != nil {
		return err
	}

	colorFlag := mustGetString(cmd, "color")
	sampleFace := mustGetInt(cmd, "sample-face")
	if (colorFlag == "") == (sampleFace < 0) {
		return errors.New("exactly one of --color or --sample-face is required")
	}

	m, err := mesh.ReadPLYFile(args[0])
	if err != nil {
		return fmt.Errorf("reading mesh: %w", err)
	}

	var query mesh.Color
	if colorFlag != "" {
		if hex, ok := cfg.NamedColor(colorFlag); ok {
			colorFlag = hex
		}
		query, err = mesh.ParseHex(colorFlag)
		if err != nil {
			return fmt.Errorf("invalid color: %w", err)
		}
	} else {
		if sampleFace >= len(m.Faces) {
			return fmt.Errorf("face index %d out of range (mesh has %d faces)", sampleFace, len(m.Faces))
		}
		if !m.HasColorLayer() {
			return &selector.MissingColorDataError{}
		}
		query = selector.SampleFace(m.Faces[sampleFace], reduction)
	}

	idx := colorindex.New()
	if err := idx.Build(m, reduction); err != nil {
		return err
	}

	results, err := idx.Nearest(query, k)
	if err != nil {
		return err
	}

	if jsonOutput {
		out := NearestOutput{File: args[0], Query: query.Hex(), Results: results}
		if err := json.NewEncoder(os.Stdout).Encode(out); err != nil {
			return fmt.Errorf("encoding JSON output: %w", err)
		}
		return nil
	}

	if len(results) == 0 {
		fmt.Println("No faces found")
		return nil
	}

	fmt.Printf("Faces nearest to %s:\n\n", query.Hex())
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FACE\tCOLOR\tDISTANCE")
	fmt.Fprintln(w, "----\t-----\t--------")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%s\t%.4f\n", r.FaceIndex, r.Color, r.Distance)
	}
	w.Flush()

	return nil
}
