package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var resetCmd = &cobra.Command{
	Use:   "reset <output>",
	Short: "Delete a checkpoint so the next run starts fresh",
	Long: `Delete the output/checkpoint file. Processed rows are terminal within a
checkpoint lineage, not_found results included; removing the file is the
only way to make a run reattempt them.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := os.Remove(args[0]); err != nil {
			if os.IsNotExist(err) {
				fmt.Printf("no checkpoint at %s\n", args[0])
				return nil
			}
			return err
		}
		zap.L().Info("checkpoint removed", zap.String("path", args[0]))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
}
