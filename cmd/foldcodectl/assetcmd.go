package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"foldcode/internal/asset"
)

var assetCmd = &cobra.Command{
	Use:   "asset",
	Short: "Inspect and produce model assets",
}

var assetInfoCmd = &cobra.Command{
	Use:   "info <asset file>",
	Short: "Print the dimensions and constants of an asset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := asset.LoadFile(args[0])
		if err != nil {
			return err
		}
		stat, err := os.Stat(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("asset %s (%s)\n", args[0], humanize.Bytes(uint64(stat.Size())))
		fmt.Printf("  version    %d\n", a.Version)
		fmt.Printf("  precision  float%d\n", a.Precision*8)
		fmt.Printf("  features   %d\n", a.FeatureCount())
		fmt.Printf("  embedding  %d\n", a.EmbeddingDim())
		fmt.Printf("  states     %d (+1 invalid)\n", a.StateCount())
		fmt.Printf("  layers     %d\n", len(a.Network.Layers()))
		for i, layer := range a.Network.Layers() {
			fmt.Printf("    %d: %dx%d %s\n", i, layer.Rows, layer.Cols, layer.Activation)
		}
		fmt.Printf("  virtual center alpha=%g beta=%g d=%g\n", a.Params.Alpha, a.Params.Beta, a.Params.D)
		fmt.Printf("  sequence penalty w=%g clip=%g\n", a.Params.PenaltyWeight, a.Params.PenaltyClip)
		return nil
	},
}

var assetDemoCmd = &cobra.Command{
	Use:   "demo <output file>",
	Short: "Write the built-in demo asset",
	Long: `Writes the self-consistent demo asset. Its states exercise the full
pipeline but carry no trained meaning; use a published asset for real
structure search.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Create(args[0])
		if err != nil {
			return err
		}
		if err := asset.Write(f, asset.Demo()); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Printf("wrote demo asset to %s\n", args[0])
		return nil
	},
}

func init() {
	assetCmd.AddCommand(assetInfoCmd)
	assetCmd.AddCommand(assetDemoCmd)
	rootCmd.AddCommand(assetCmd)
}
