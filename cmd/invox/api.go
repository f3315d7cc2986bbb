package main

import (
	"github.com/spf13/cobra"

	"github.com/invoxhq/invox/internal/server/endpoints"
)

var serverURL string

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Commands that call the running server",
	Long: `API commands call the running Invox server via HTTP.

These commands require a running server (invox serve).
Use --server to specify a custom server URL.

Examples:
  invox api health                        # Check server health
  invox api extract invoice.pdf           # Extract line items from a PDF
  invox api invoices preview-pricing r.json
  invox api metrics                       # Show usage metrics`,
}

var invoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "Invoice pricing commands",
}

var pricingCmd = &cobra.Command{
	Use:   "pricing",
	Short: "Pricing configuration commands",
}

// getServerURL returns the server URL at runtime (after flag parsing).
func getServerURL() string {
	return serverURL
}

func init() {
	// Add --server flag to api command (persistent so all subcommands inherit it)
	apiCmd.PersistentFlags().StringVar(
		&serverURL, "server", "http://localhost:8080", "Server URL",
	)

	// Health endpoints at top level of api
	apiCmd.AddCommand((&endpoints.HealthEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.ReadyEndpoint{}).Command(getServerURL))

	// Extraction at top level
	apiCmd.AddCommand((&endpoints.ExtractEndpoint{}).Command(getServerURL))

	// Invoices as subcommand group
	invoicesCmd.AddCommand((&endpoints.PreviewPricingEndpoint{}).Command(getServerURL))
	invoicesCmd.AddCommand((&endpoints.ImportInvoiceEndpoint{}).Command(getServerURL))

	// Pricing as subcommand group
	pricingCmd.AddCommand((&endpoints.PricingConstantsEndpoint{}).Command(getServerURL))

	// Observability at top level
	apiCmd.AddCommand((&endpoints.MetricsSummaryEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.ConfigEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.SwaggerEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.SwaggerUIEndpoint{}).Command(getServerURL))

	apiCmd.AddCommand(invoicesCmd)
	apiCmd.AddCommand(pricingCmd)
	rootCmd.AddCommand(apiCmd)

	// Shortcut for the most common call: `invox extract` == `invox api extract`.
	extractCmd := (&endpoints.ExtractEndpoint{}).Command(getServerURL)
	extractCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")
	rootCmd.AddCommand(extractCmd)
}
