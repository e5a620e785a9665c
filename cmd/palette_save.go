package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codyswanson/vcselect/internal/config"
	"github.com/codyswanson/vcselect/internal/mesh"
	"github.com/codyswanson/vcselect/internal/selector"
)

var paletteSaveCmd = &cobra.Command{
	Use:   "save [name]",
	Short: "Save a swatch",
	Long: `Saves a named reference color. The color comes from --color, or is
sampled from the selected face of --from-mesh. Saving an existing name
overwrites its color.

Examples:
  vcselect palette save "hull red" --color "#c0392b"
  vcselect palette save "deck" --from-mesh model.ply`,
	Args: cobra.ExactArgs(1),
	RunE: runPaletteSave,
}

func init() {
	paletteCmd.AddCommand(paletteSaveCmd)

	paletteSaveCmd.Flags().String("color", "", "Swatch color as hex or a built-in color name")
	paletteSaveCmd.Flags().String("from-mesh", "", "Sample the color from this mesh's selected face")
	paletteSaveCmd.Flags().String("reduction", "", "How to collapse a face's corner colors: first or average (defaults from config)")
}

func runPaletteSave(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	colorFlag := mustGetString(cmd, "color")
	fromMesh := mustGetString(cmd, "from-mesh")
	if (colorFlag == "") == (fromMesh == "") {
		return errors.New("exactly one of --color or --from-mesh is required")
	}

	var c mesh.Color
	if colorFlag != "" {
		if hex, ok := cfg.NamedColor(colorFlag); ok {
			colorFlag = hex
		}
		parsed, err := mesh.ParseHex(colorFlag)
		if err != nil {
			return fmt.Errorf("invalid color: %w", err)
		}
		c = parsed
	} else {
		reduction, err := resolveReduction(cmd, cfg)
		if err != nil {
			return err
		}
		m, err := mesh.ReadPLYFile(fromMesh)
		if err != nil {
			return fmt.Errorf("reading mesh: %w", err)
		}
		c, err = selector.Sample(m, reduction)
		if err != nil {
			return err
		}
	}

	pool, swatches, err := connectSwatches(cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	swatch, err := swatches.Save(context.Background(), args[0], c)
	if err != nil {
		return fmt.Errorf("saving swatch: %w", err)
	}

	fmt.Printf("Saved swatch %q as %s\n", swatch.Name, swatch.Color.Hex())
	return nil
}
