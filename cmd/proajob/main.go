// Package main provides the proajob command: the REST API server, the catalog
// seeder and the terminal forms that talk to the API.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "proajob",
	Short: "ProaJob job board",
	Long:  "ProaJob publishes job offers with required degree titles and evaluation criteria, and collects the academic formation of applicants.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
