// Package main provides the cv_formatter CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "cv_formatter",
	Short: "Résumé structure recovery and formatting",
	Long: "cv_formatter recovers the structure of résumés extracted from PDF, DOCX or text " +
		"and lays them out in a uniform branded A4 format, via CLI or REST API.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default ./cv_formatter.{yaml,json})")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed progress information")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
