package main

import (
	"github.com/spf13/cobra"

	"github.com/invoxhq/invox/internal/api"
	"github.com/invoxhq/invox/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "invox",
	Short: "Invoice line-item extraction with LLM-powered parsing",
	Long: `Invox extracts structured line items from supplier invoice PDFs
using a spatial text grid and LLM-powered parsing.

The pipeline includes:
  - Positioned text extraction with spatial grid reconstruction
  - LLM extraction with schema validation and math integrity checks
  - Content-addressed result caching (re-uploads are free)
  - Retail pricing suggestions for imported rows`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.invox/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "invox home directory (default: ~/.invox)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}
