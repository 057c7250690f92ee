package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/oxidecomputer/rfd-pipeline/internal/render"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Remove stale render work-set directories left under the temp root",
	RunE: func(_ *cobra.Command, _ []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
		render.SweepStaleWorkSets(logger)
		return nil
	},
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	rootCmd.AddCommand(sweepCmd)
}
