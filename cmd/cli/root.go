package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rfd-pipeline",
	Short: "rfd-pipeline is a CLI tool for the RFD document pipeline",
	Long:  `A command-line interface for inspecting and manually driving the RFD document pipeline.`,
}

func Execute() error {
	return rootCmd.Execute()
}
