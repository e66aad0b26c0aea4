package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "foldcodectl",
	Short:        "foldcodectl — encode protein backbones into the 3Di structural alphabet",
	SilenceUsage: true, // don't print usage on operational errors
	Long: `foldcodectl converts backbone coordinate files into one-letter-per-residue
structural state strings using a frozen model asset, and keeps the
encoded entries in a local store (memory, sqlite, or leveldb).`,
}

// Execute is called by main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
