package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "chunkctl",
		Short: "chunkctl - code chunking engine CLI",
		Long: `chunkctl splits source files into semantically coherent chunks for
search indexing, using grammar-aware extraction with universal text
fallbacks.

Run 'chunkctl chunk <path>' to chunk a file or directory.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file path")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")

	rootCmd.AddCommand(
		chunkCmd(),
		languagesCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
