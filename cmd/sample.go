package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codyswanson/vcselect/internal/config"
	"github.com/codyswanson/vcselect/internal/mesh"
	"github.com/codyswanson/vcselect/internal/selector"
)

var sampleCmd = &cobra.Command{
	Use:   "sample [mesh.ply]",
	Short: "Read the reference color from the selected face",
	Long: `Reads the color of the mesh's single selected face and prints it.
The mesh must have exactly one face selected (a 'selected' per-face
property in the PLY file).

Examples:
  # Print the selected face's first-corner color
  vcselect sample model.ply

  # Sample face 42 regardless of the file's selection
  vcselect sample model.ply --face 42

  # Average all corner colors instead
  vcselect sample model.ply --reduction average

  # Feed the color into a select run
  vcselect select model.ply --color $(vcselect sample model.ply --json | jq -r .color)`,
	Args: cobra.ExactArgs(1),
	RunE: runSample,
}

func init() {
	rootCmd.AddCommand(sampleCmd)

	sampleCmd.Flags().Int("face", -1, "Sample this face index instead of the file's selection")
	sampleCmd.Flags().String("reduction", "", "How to collapse a face's corner colors: first or average (defaults from config)")
	sampleCmd.Flags().Bool("json", false, "Output as JSON")
}

// SampleOutput is the JSON output of the sample command.
type SampleOutput struct {
	Color     string     `json:"color"`
	RGBA      [4]float32 `json:"rgba"`
	Face      int        `json:"face"`
	Reduction string     `json:"reduction"`
}

func runSample(cmd *cobra.Command, args []string) error {
	jsonOutput := mustGetBool(cmd, "json")

	reduction, err := resolveReduction(cmd, config.Load())
	if err != nil {
		return err
	}

	m, err := mesh.ReadPLYFile(args[0])
	if err != nil {
		return fmt.Errorf("reading mesh: %w", err)
	}

	if face := mustGetInt(cmd, "face"); face >= 0 {
		if face >= len(m.Faces) {
			return fmt.Errorf("face index %d out of range (mesh has %d faces)", face, len(m.Faces))
		}
		m.SelectOnly(face)
	}

	c, err := selector.Sample(m, reduction)
	if err != nil {
		return err
	}
	// Sample only succeeds with exactly one selected face.
	faceIdx := m.SelectedIndices()[0]

	if jsonOutput {
		out := SampleOutput{
			Color:     c.Hex(),
			RGBA:      [4]float32{c.R, c.G, c.B, c.A},
			Face:      faceIdx,
			Reduction: string(reduction),
		}
		if err := json.NewEncoder(os.Stdout).Encode(out); err != nil {
			return fmt.Errorf("encoding JSON output: %w", err)
		}
		return nil
	}

	fmt.Printf("Face: %d\n", faceIdx)
	fmt.Printf("Color: %s\n", c.Hex())
	fmt.Printf("RGBA: %.4f %.4f %.4f %.4f\n", c.R, c.G, c.B, c.A)

	return nil
}
