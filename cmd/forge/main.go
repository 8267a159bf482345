package main

import (
	"os"

	"github.com/spf13/cobra"

	"forge/internal/cli/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "forge",
		Short:         "Client for the forge pipeline server",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.RegisterCommands(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
