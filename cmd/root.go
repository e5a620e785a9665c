package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vcselect",
	Short: "Select mesh faces by vertex color",
	Long: `vcselect reads PLY meshes with per-vertex colors and selects faces
whose color matches a reference within a threshold. Sample the reference
from an already-selected face, pass it as a hex value, or pull it from a
saved palette swatch.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
