package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/address-cli/internal/extract"
)

var checkCmd = &cobra.Command{
	Use:   "check <address>",
	Short: "Validate a single address for completeness",
	Long: `Check whether an address string carries the components the resolver
requires: a ZIP code, a state abbreviation, and a recognizable city segment.
Exits non-zero when the address is incomplete.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !extract.IsComplete(args[0]) {
			return fmt.Errorf("incomplete address: %q", args[0])
		}
		fmt.Println("complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
