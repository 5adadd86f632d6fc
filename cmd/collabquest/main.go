// cmd/collabquest/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "collabquest",
	Short: "Teammate matching and skill verification service",
	Long: "collabquest scores skill compatibility between users, ranks potential partners " +
		"and verifies claimed skills with generated quizzes.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file (defaults to ./configs/config.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(workersCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
