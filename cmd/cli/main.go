package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mlahtinen/gumshoe/cmd/cli/result"
	"github.com/mlahtinen/gumshoe/cmd/cli/scenario"
)

func init() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	rootCmd.AddGroup(scenario.Group)
	rootCmd.AddCommand(scenario.Seed)
	rootCmd.AddGroup(result.Group)
	rootCmd.AddCommand(result.Report)
}

var rootCmd = &cobra.Command{
	Use:  "gumshoe-cli",
	Long: `Command line utilities for the Gumshoe game backend`,
	Run: func(cmd *cobra.Command, args []string) {
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
