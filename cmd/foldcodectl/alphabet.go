package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"foldcode/internal/alphabet"
)

var alphabetCmd = &cobra.Command{
	Use:   "alphabet",
	Short: "Print the state-to-letter table",
	RunE: func(cmd *cobra.Command, args []string) error {
		for s := 0; s < alphabet.Size; s++ {
			fmt.Printf("%2d %c\n", s, alphabet.Letter(byte(s)))
		}
		fmt.Printf("%2d %c (invalid)\n", alphabet.Size, alphabet.InvalidLetter)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(alphabetCmd)
}
