package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/codyswanson/vcselect/internal/config"
	"github.com/codyswanson/vcselect/internal/database/postgres"
	"github.com/codyswanson/vcselect/internal/mesh"
	"github.com/codyswanson/vcselect/internal/selector"
)

var selectCmd = &cobra.Command{
	Use:   "select [mesh.ply]",
	Short: "Select faces whose color matches a reference",
	Long: `Selects every face of the mesh whose vertex colors lie within a
threshold of a reference color, then writes the mesh back with the new
selection. Distances compare each RGBA channel separately; a face is
within the threshold when its largest channel difference is.

The reference color comes from exactly one of:
  --from-selected  the color of the file's single selected face
  --sample-face    the color of an explicit face index
  --color          an explicit hex value (#rrggbb or #rrggbbaa) or a
                   built-in color name (white, black, red, ...)
  --swatch         a saved palette swatch (needs DATABASE_URL)

Examples:
  # Grow the selection to all faces matching the selected face's color
  vcselect select model.ply --from-selected

  # Select everything matching face 42's color
  vcselect select model.ply --sample-face 42

  # Select everything close to pure red, appending to the selection
  vcselect select model.ply --color "#ff0000" --threshold 0.05 --mode add

  # Match a saved swatch, write to a new file
  vcselect select model.ply --swatch "hull red" --out selected.ply`,
	Args: cobra.ExactArgs(1),
	RunE: runSelect,
}

func init() {
	rootCmd.AddCommand(selectCmd)

	selectCmd.Flags().Bool("from-selected", false, "Sample the reference from the file's selected face")
	selectCmd.Flags().Int("sample-face", -1, "Sample the reference from this face index")
	selectCmd.Flags().String("color", "", "Reference color as hex or a built-in color name")
	selectCmd.Flags().String("swatch", "", "Reference color from a saved palette swatch")
	selectCmd.Flags().String("reduction", "", "How to collapse a face's corner colors: first or average (defaults from config)")
	selectCmd.Flags().Float64("threshold", -1, "Maximum per-channel color difference (defaults from config)")
	selectCmd.Flags().String("match", "", "Match policy: all (every corner) or any (at least one corner)")
	selectCmd.Flags().String("mode", "", "Selection mode: replace or add")
	selectCmd.Flags().String("out", "", "Output file (defaults to rewriting the input)")
	selectCmd.Flags().Bool("json", false, "Output as JSON")
}

// SelectOutput is the JSON output of the select command.
type SelectOutput struct {
	File       string  `json:"file"`
	Reference  string  `json:"reference"`
	Threshold  float64 `json:"threshold"`
	MatchMode  string  `json:"match_mode"`
	SelectMode string  `json:"select_mode"`
	Matched    int     `json:"matched"`
	Selected   int     `json:"selected"`
}

// resolveSelectReference resolves the reference color from the
// --from-selected, --sample-face, --color and --swatch flags. Exactly one
// of them must be set.
func resolveSelectReference(cmd *cobra.Command, cfg *config.Config, m *mesh.Mesh, reduction selector.SampleReduction) (mesh.Color, error) {
	fromSelected := mustGetBool(cmd, "from-selected")
	sampleFace := mustGetInt(cmd, "sample-face")
	colorFlag := mustGetString(cmd, "color")
	swatchFlag := mustGetString(cmd, "swatch")

	set := 0
	for _, on := range []bool{fromSelected, sampleFace >= 0, colorFlag != "", swatchFlag != ""} {
		if on {
			set++
		}
	}
	if set != 1 {
		return mesh.Color{}, errors.New("exactly one of --from-selected, --sample-face, --color or --swatch is required")
	}

	switch {
	case fromSelected:
		return selector.Sample(m, reduction)

	case sampleFace >= 0:
		if sampleFace >= len(m.Faces) {
			return mesh.Color{}, fmt.Errorf("face index %d out of range (mesh has %d faces)", sampleFace, len(m.Faces))
		}
		if !m.HasColorLayer() {
			return mesh.Color{}, &selector.MissingColorDataError{}
		}
		return selector.SampleFace(m.Faces[sampleFace], reduction), nil

	case colorFlag != "":
		if hex, ok := cfg.NamedColor(colorFlag); ok {
			colorFlag = hex
		}
		c, err := mesh.ParseHex(colorFlag)
		if err != nil {
			return mesh.Color{}, fmt.Errorf("invalid color: %w", err)
		}
		return c, nil

	default:
		if cfg.Database.URL == "" {
			return mesh.Color{}, errors.New("--swatch requires the DATABASE_URL environment variable")
		}
		pool, err := postgres.Connect(&cfg.Database)
		if err != nil {
			return mesh.Color{}, fmt.Errorf("connecting to palette store: %w", err)
		}
		defer pool.Close()

		swatch, err := postgres.NewSwatchRepository(pool).Get(context.Background(), swatchFlag)
		if err != nil {
			return mesh.Color{}, fmt.Errorf("loading swatch %q: %w", swatchFlag, err)
		}
		return swatch.Color, nil
	}
}

// newMatchProgressBar builds the progress bar for a select run.
func newMatchProgressBar(count int, jsonOutput bool) *progressbar.ProgressBar {
	if jsonOutput {
		return progressbar.DefaultSilent(int64(count))
	}
	return progressbar.NewOptions(count,
		progressbar.OptionSetDescription("Matching faces"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("faces"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)
}

func runSelect(cmd *cobra.Command, args []string) error {
	jsonOutput := mustGetBool(cmd, "json")
	cfg := config.Load()
	defaults := cfg.Defaults.Select

	reduction, err := resolveReduction(cmd, cfg)
	if err != nil {
		return err
	}

	threshold := mustGetFloat64(cmd, "threshold")
	if threshold < 0 {
		threshold = defaults.Threshold
	}

	matchMode := mustGetString(cmd, "match")
	if matchMode == "" {
		matchMode = defaults.MatchMode
	}
	matchPolicy, err := selector.ParseMatchPolicy(matchMode)
	if err != nil {
		return err
	}

	selectMode := mustGetString(cmd, "mode")
	if selectMode == "" {
		selectMode = defaults.SelectMode
	}
	selectPolicy, err := selector.ParseSelectPolicy(selectMode)
	if err != nil {
		return err
	}

	m, err := mesh.ReadPLYFile(args[0])
	if err != nil {
		return fmt.Errorf("reading mesh: %w", err)
	}

	reference, err := resolveSelectReference(cmd, cfg, m, reduction)
	if err != nil {
		return err
	}

	if !jsonOutput {
		fmt.Printf("Matching %d faces against %s (threshold: %.4f)\n", len(m.Faces), reference.Hex(), threshold)
	}

	bar := newMatchProgressBar(len(m.Faces), jsonOutput)
	matches, err := selector.Match(m, reference, threshold, matchPolicy, selector.MatchOptions{
		OnProgress: func(done, total int) {
			bar.Set(done) //nolint:errcheck
		},
	})
	if err != nil {
		return err
	}
	bar.Finish() //nolint:errcheck
	if !jsonOutput {
		fmt.Println()
	}

	selector.Apply(m, matches, selectPolicy)

	out := mustGetString(cmd, "out")
	if out == "" {
		out = args[0]
	}
	if err := mesh.WritePLYFile(m, out); err != nil {
		return fmt.Errorf("writing mesh: %w", err)
	}

	if jsonOutput {
		result := SelectOutput{
			File:       out,
			Reference:  reference.Hex(),
			Threshold:  threshold,
			MatchMode:  string(matchPolicy),
			SelectMode: string(selectPolicy),
			Matched:    len(matches),
			Selected:   m.SelectedCount(),
		}
		if err := json.NewEncoder(os.Stdout).Encode(result); err != nil {
			return fmt.Errorf("encoding JSON output: %w", err)
		}
		return nil
	}

	fmt.Printf("Matched: %d\n", len(matches))
	fmt.Printf("Selected: %d\n", m.SelectedCount())
	fmt.Printf("Written to %s\n", out)

	return nil
}
