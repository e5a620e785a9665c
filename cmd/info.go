package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codyswanson/vcselect/internal/mesh"
)

var infoCmd = &cobra.Command{
	Use:   "info [mesh.ply]",
	Short: "Show mesh statistics",
	Long:  `Displays vertex, face, color layer and selection information for a PLY mesh.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().Bool("json", false, "Output as JSON")
}

// MeshInfo is the JSON output of the info command.
type MeshInfo struct {
	File          string `json:"file"`
	Vertices      int    `json:"vertices"`
	Faces         int    `json:"faces"`
	HasColorLayer bool   `json:"has_color_layer"`
	Selected      int    `json:"selected"`
}

func runInfo(cmd *cobra.Command, args []string) error {
	jsonOutput := mustGetBool(cmd, "json")

	m, err := mesh.ReadPLYFile(args[0])
	if err != nil {
		return fmt.Errorf("reading mesh: %w", err)
	}

	info := MeshInfo{
		File:          args[0],
		Vertices:      len(m.Vertices),
		Faces:         len(m.Faces),
		HasColorLayer: m.HasColorLayer(),
		Selected:      m.SelectedCount(),
	}

	if jsonOutput {
		if err := json.NewEncoder(os.Stdout).Encode(info); err != nil {
			return fmt.Errorf("encoding JSON output: %w", err)
		}
		return nil
	}

	fmt.Printf("File: %s\n", info.File)
	fmt.Printf("Vertices: %d\n", info.Vertices)
	fmt.Printf("Faces: %d\n", info.Faces)
	fmt.Printf("Color layer: %v\n", info.HasColorLayer)
	fmt.Printf("Selected faces: %d\n", info.Selected)

	return nil
}
